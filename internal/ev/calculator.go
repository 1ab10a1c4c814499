// Package ev converts model probabilities and market odds into
// decision-grade expected-value and edge numbers.
package ev

import (
	"math"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/models"
)

// HitRateTable maps bet type and confidence grade to the historical hit rate
// used as the model probability for that bucket.
type HitRateTable map[models.BetType]map[models.ConfidenceGrade]float64

// DefaultHitRates holds the measured per-grade hit rates from past seasons.
// Grades A and B are normally excluded upstream but keep entries so the
// calculator stays total over its inputs.
func DefaultHitRates() HitRateTable {
	return HitRateTable{
		models.BetTypeTrifecta: {
			models.GradeA: 0.22,
			models.GradeB: 0.16,
			models.GradeC: 0.09,
			models.GradeD: 0.065,
			models.GradeE: 0.04,
		},
		models.BetTypeExacta: {
			models.GradeA: 0.38,
			models.GradeB: 0.30,
			models.GradeC: 0.21,
			models.GradeD: 0.17,
			models.GradeE: 0.11,
		},
	}
}

// Calculator derives EV and edge metrics from odds and grade hit rates.
// All methods are pure; invalid inputs yield 0/∞ sentinels, never panics.
type Calculator struct {
	takeoutRate   float64
	evThreshold   float64
	maxEV         float64
	useEdgeFilter bool
	hitRates      HitRateTable
}

// NewCalculator creates a calculator from configuration
func NewCalculator(cfg *config.EVConfig, features *config.FeaturesConfig, hitRates HitRateTable) *Calculator {
	if hitRates == nil {
		hitRates = DefaultHitRates()
	}
	return &Calculator{
		takeoutRate:   cfg.TakeoutRate,
		evThreshold:   cfg.EVThreshold,
		maxEV:         cfg.MaxEV,
		useEdgeFilter: features.UseEdgeFilter,
		hitRates:      hitRates,
	}
}

// MarketProbFromOdds converts decimal odds into the market-implied
// probability net of the operator takeout. Returns 0 for odds <= 0.
func (c *Calculator) MarketProbFromOdds(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return (1 - c.takeoutRate) / odds
}

// CalcEdge returns the ratio by which the model probability exceeds the
// market-implied probability. Returns 0 when the market probability is zero.
func (c *Calculator) CalcEdge(modelProb, marketProb float64) float64 {
	if marketProb <= 0 {
		return 0
	}
	return modelProb/marketProb - 1
}

// CalcEV returns the expected return per unit staked
func (c *Calculator) CalcEV(modelProb, odds float64) float64 {
	return modelProb * odds
}

// CalcBreakevenOdds returns the odds at which the bet breaks even.
// Returns +Inf for non-positive probabilities.
func (c *Calculator) CalcBreakevenOdds(modelProb float64) float64 {
	if modelProb <= 0 {
		return math.Inf(1)
	}
	return 1 / modelProb
}

// HitRate returns the historical hit rate for a grade and bet type,
// zero when no bucket exists.
func (c *Calculator) HitRate(grade models.ConfidenceGrade, betType models.BetType) float64 {
	byGrade, ok := c.hitRates[betType]
	if !ok {
		return 0
	}
	return byGrade[grade]
}

// CalcEvWithEdge computes the full EVResult for a grade/odds/bet-type
// combination using the historical hit rate as the model probability.
func (c *Calculator) CalcEvWithEdge(grade models.ConfidenceGrade, odds float64, betType models.BetType) models.EVResult {
	modelProb := c.HitRate(grade, betType)
	marketProb := c.MarketProbFromOdds(odds)
	ev := c.CalcEV(modelProb, odds)
	edge := c.CalcEdge(modelProb, marketProb)

	isValue := ev >= c.evThreshold
	if c.useEdgeFilter {
		isValue = isValue && edge > 0
	}

	return models.EVResult{
		EV:            ev,
		Edge:          edge,
		ModelProb:     modelProb,
		MarketProb:    marketProb,
		IsValueBet:    isValue,
		BreakevenOdds: c.CalcBreakevenOdds(modelProb),
	}
}

// IsValidEv rejects EV values above the configured sanity ceiling, which
// guards against corrupted odds data. Out-of-range EV means "do not trust
// this bet", not an error.
func (c *Calculator) IsValidEv(ev float64) bool {
	if math.IsNaN(ev) || math.IsInf(ev, 0) {
		return false
	}
	return ev >= 0 && ev <= c.maxEV
}

// EvThreshold exposes the configured break-even threshold
func (c *Calculator) EvThreshold() float64 {
	return c.evThreshold
}
