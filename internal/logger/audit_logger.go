// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for betting decisions.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetPlacement logs a bet placement event.
func (al *AuditLogger) LogBetPlacement(recordID, raceID string, betType, combination string, stake int, odds, ev, edge float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"record_id":   recordID,
		"race_id":     raceID,
		"bet_type":    betType,
		"combination": combination,
		"stake":       stake,
		"odds":        odds,
		"ev":          ev,
		"edge":        edge,
		"timestamp":   timestamp.Unix(),
	}).Info("Bet placement recorded")
}

// LogExclusion logs a race that produced no bet, with the first reason.
func (al *AuditLogger) LogExclusion(raceID, reason string) {
	al.WithFields(logrus.Fields{
		"race_id": raceID,
		"reason":  reason,
	}).Info("Race passed over")
}

// LogSafetyStop logs a triggered safety stop with the state snapshot.
func (al *AuditLogger) LogSafetyStop(reason string, lossStreak int, bankroll float64) {
	al.WithFields(logrus.Fields{
		"reason":      reason,
		"loss_streak": lossStreak,
		"bankroll":    bankroll,
	}).Warn("Safety stop triggered")
}

// LogSettlement logs a settled bet outcome.
func (al *AuditLogger) LogSettlement(recordID string, hit bool, payout, bankroll float64, lossStreak int) {
	al.WithFields(logrus.Fields{
		"record_id":   recordID,
		"hit":         hit,
		"payout":      payout,
		"bankroll":    bankroll,
		"loss_streak": lossStreak,
	}).Info("Bet settled")
}
