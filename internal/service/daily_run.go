// Package service wires the upstream datasource into the decision engine
// and handles day-level orchestration: running the batch, refreshing odds,
// and settling records against published results.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/betlog"
	"github.com/yourusername/kyotei-edge/internal/datasource"
	"github.com/yourusername/kyotei-edge/internal/engine"
	"github.com/yourusername/kyotei-edge/internal/models"
)

// RaceResult is the published outcome for one race. Payouts are quoted per
// 100-yen unit, keyed by combination.
type RaceResult struct {
	RaceID          string             `json:"race_id"`
	WinningTrifecta string             `json:"winning_trifecta"`
	WinningExacta   string             `json:"winning_exacta"`
	Payouts         map[string]float64 `json:"payouts"`
}

// DailyRunService drives the betting engine over a day's race cards.
type DailyRunService struct {
	cards  datasource.RaceCardSource
	odds   datasource.OddsSource
	engine *engine.Engine
	store  *betlog.Store
	logger *logrus.Logger

	mu          sync.Mutex
	lastRaceIDs []string
}

// NewDailyRunService creates the daily run service
func NewDailyRunService(
	cards datasource.RaceCardSource,
	odds datasource.OddsSource,
	eng *engine.Engine,
	store *betlog.Store,
	logger *logrus.Logger,
) *DailyRunService {
	if logger == nil {
		logger = logrus.New()
	}
	return &DailyRunService{
		cards:  cards,
		odds:   odds,
		engine: eng,
		store:  store,
		logger: logger,
	}
}

// RunForDate fetches the day's race cards and runs the full decision batch
func (s *DailyRunService) RunForDate(ctx context.Context, date time.Time) error {
	day := date.Format("2006-01-02")

	cardData, err := s.cards.FetchRaceCards(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to fetch race cards: %w", err)
	}
	if len(cardData) == 0 {
		s.logger.WithField("date", day).Info("No race cards for date")
		return nil
	}

	raceCards := make([]engine.RaceCard, 0, len(cardData))
	raceIDs := make([]string, 0, len(cardData))
	for i := range cardData {
		raceCards = append(raceCards, engine.RaceCard{
			RaceNumber: cardData[i].RaceNumber,
			Race:       &cardData[i].Race,
			Prediction: &cardData[i].Prediction,
			Odds:       cardData[i].Odds,
		})
		raceIDs = append(raceIDs, cardData[i].Race.RaceID)
	}

	s.mu.Lock()
	s.lastRaceIDs = raceIDs
	s.mu.Unlock()

	result, err := s.engine.RunBatch(ctx, day, raceCards)
	if err != nil {
		return fmt.Errorf("batch run failed for %s: %w", day, err)
	}

	s.logger.WithFields(logrus.Fields{
		"date":        day,
		"races":       len(raceCards),
		"bets":        result.Summary.BetsPlaced,
		"total_stake": result.Summary.TotalStake,
	}).Info("Daily batch completed")

	return nil
}

// ResetDaily clears the engine's daily counters
func (s *DailyRunService) ResetDaily() {
	s.engine.ResetDaily()
}

// RefreshOdds re-fetches odds for the races of the last batch, warming the
// cache for any table whose TTL has lapsed
func (s *DailyRunService) RefreshOdds(ctx context.Context) error {
	s.mu.Lock()
	raceIDs := make([]string, len(s.lastRaceIDs))
	copy(raceIDs, s.lastRaceIDs)
	s.mu.Unlock()

	var lastErr error
	for _, raceID := range raceIDs {
		if _, err := s.odds.FetchOdds(ctx, raceID); err != nil {
			s.logger.WithError(err).WithField("race_id", raceID).Warn("Odds refresh failed for race")
			lastErr = err
		}
	}
	return lastErr
}

// SettleDay resolves the day's unsettled records against published results
// and rewrites the day file. Records whose race has no result yet are left
// untouched. Returns the number of records settled.
func (s *DailyRunService) SettleDay(ctx context.Context, date string, results map[string]RaceResult) (int, error) {
	records, err := s.store.LoadDay(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load records for %s: %w", date, err)
	}

	settled := 0
	for _, record := range records {
		if record.IsSettled() {
			continue
		}
		result, ok := results[record.RaceID]
		if !ok {
			continue
		}

		winning := result.WinningTrifecta
		if record.BetType == models.BetTypeExacta {
			winning = result.WinningExacta
		}

		hit := winning != "" && record.Combination == winning
		payout := 0.0
		if hit {
			payout = result.Payouts[record.Combination] * float64(record.Stake) / 100.0
		}

		s.engine.SettleRecord(record, hit, payout)
		settled++
	}

	if settled > 0 {
		if err := s.store.RewriteDay(ctx, date, records); err != nil {
			return settled, fmt.Errorf("failed to rewrite records for %s: %w", date, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"date":    date,
		"settled": settled,
		"total":   len(records),
	}).Info("Settlement pass completed")

	return settled, nil
}
