// Package datasource defines the upstream collaborators that materialize
// race cards, predictions, and odds before the decision pipeline runs.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// Datasource errors
var (
	ErrRaceNotFound = errors.New("race not found")
	ErrOddsMissing  = errors.New("odds unavailable")
)

// RaceCardData bundles the materialized inputs for one race as fetched from
// the upstream providers
type RaceCardData struct {
	RaceNumber int               `json:"race_number"`
	Race       models.RaceContext `json:"race"`
	Prediction models.Prediction  `json:"prediction"`
	Odds       models.OddsTable   `json:"odds"`
}

// RaceCardSource fetches the full card list for a day
type RaceCardSource interface {
	FetchRaceCards(ctx context.Context, date string) ([]RaceCardData, error)
}

// OddsSource fetches the current odds table for a race
type OddsSource interface {
	FetchOdds(ctx context.Context, raceID string) (models.OddsTable, error)
}

// PredictionSource fetches the ranked predictions for a race
type PredictionSource interface {
	FetchPrediction(ctx context.Context, raceID string) (*models.Prediction, error)
}
