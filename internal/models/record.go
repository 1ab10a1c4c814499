package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetRecord is the fully-resolved, logger-facing row for one placed bet.
// Result fields stay nil until the race is settled.
type BetRecord struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	Date            string           `db:"date" json:"date"` // YYYY-MM-DD
	VenueCode       int              `db:"venue_code" json:"venue_code"`
	RaceNumber      int              `db:"race_number" json:"race_number"`
	RaceID          string           `db:"race_id" json:"race_id"`
	BetType         BetType          `db:"bet_type" json:"bet_type"`
	Combination     string           `db:"combination" json:"combination"`
	Odds            float64          `db:"odds" json:"odds"`
	Stake           int              `db:"stake" json:"stake"`
	EV              float64          `db:"ev" json:"ev"`
	Edge            float64          `db:"edge" json:"edge"`
	ConfidenceGrade ConfidenceGrade  `db:"confidence_grade" json:"confidence_grade"`
	Method          Method           `db:"method" json:"method"`
	Reason          string           `db:"reason" json:"reason"`
	LogicVersion    string           `db:"logic_version" json:"logic_version"`
	Hit             *bool            `db:"hit" json:"hit,omitempty"`
	Payout          *decimal.Decimal `db:"payout" json:"payout,omitempty"`
	ROI             *decimal.Decimal `db:"roi" json:"roi,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	SettledAt       *time.Time       `db:"settled_at" json:"settled_at,omitempty"`
}

// NewBetRecord builds a record from a bought decision and its race context
func NewBetRecord(date string, race *RaceContext, raceNumber int, decision *BetDecision) *BetRecord {
	return &BetRecord{
		ID:              uuid.New(),
		Date:            date,
		VenueCode:       race.VenueCode,
		RaceNumber:      raceNumber,
		RaceID:          race.RaceID,
		BetType:         decision.BetType,
		Combination:     decision.Combination,
		Odds:            decision.Odds,
		Stake:           decision.StakeAmount,
		EV:              decision.EV,
		Edge:            decision.Edge,
		ConfidenceGrade: decision.ConfidenceGrade,
		Method:          decision.Method,
		Reason:          decision.Reason,
		LogicVersion:    decision.LogicVersion,
		CreatedAt:       time.Now().UTC(),
	}
}

// Settle resolves the record with the race outcome.
// Payout is the gross amount returned for the stake (0 on a miss).
func (r *BetRecord) Settle(hit bool, payout decimal.Decimal, settledAt time.Time) {
	r.Hit = &hit
	r.Payout = &payout
	if r.Stake > 0 {
		stake := decimal.NewFromInt(int64(r.Stake))
		roi := payout.Sub(stake).Div(stake)
		r.ROI = &roi
	}
	r.SettledAt = &settledAt
}

// IsSettled reports whether the outcome has been resolved
func (r *BetRecord) IsSettled() bool {
	return r.Hit != nil && r.SettledAt != nil
}

// NetReturn returns payout minus stake, zero for unsettled records
func (r *BetRecord) NetReturn() decimal.Decimal {
	if r.Payout == nil {
		return decimal.Zero
	}
	return r.Payout.Sub(decimal.NewFromInt(int64(r.Stake)))
}
