// Package kelly implements fractional-Kelly position sizing bounded by a
// bankroll ratio cap.
package kelly

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/config"
)

// Calculator sizes stakes with the Kelly criterion scaled by a fixed
// fractional multiplier. All methods are pure.
type Calculator struct {
	fraction    float64
	maxBetRatio float64
	minEdge     float64
	stakeUnit   int
	logger      *logrus.Logger
}

// NewCalculator creates a Kelly calculator from configuration
func NewCalculator(cfg *config.KellyConfig, stakeUnit int, logger *logrus.Logger) *Calculator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Calculator{
		fraction:    cfg.Fraction,
		maxBetRatio: cfg.MaxBetRatio,
		minEdge:     cfg.MinEdge,
		stakeUnit:   stakeUnit,
		logger:      logger,
	}
}

// Fraction returns the full Kelly fraction f = (b*p - q) / b with
// b = odds - 1. Returns 0 for odds <= 1 or probabilities outside (0,1).
func (c *Calculator) Fraction(prob, odds float64) float64 {
	if odds <= 1 || prob <= 0 || prob >= 1 {
		return 0
	}
	b := odds - 1
	q := 1 - prob
	f := (b*prob - q) / b
	if f < 0 {
		return 0
	}
	return f
}

// Edge returns the raw expected-profit edge p*odds - 1
func (c *Calculator) Edge(prob, odds float64) float64 {
	return prob*odds - 1
}

// Stake sizes a bet: reject below the minimum edge, scale the full Kelly
// fraction by the fractional multiplier, cap at the maximum bankroll ratio,
// then floor to the stake unit. A result below one unit is rejected.
func (c *Calculator) Stake(prob, odds, bankroll float64) int {
	if bankroll <= 0 {
		return 0
	}

	edge := c.Edge(prob, odds)
	if edge < c.minEdge {
		c.logger.WithFields(logrus.Fields{
			"prob":     prob,
			"odds":     odds,
			"edge":     edge,
			"min_edge": c.minEdge,
		}).Debug("Edge below minimum, no bet recommended")
		return 0
	}

	f := c.Fraction(prob, odds) * c.fraction
	if f > c.maxBetRatio {
		f = c.maxBetRatio
	}
	if f <= 0 {
		return 0
	}

	stake := int(bankroll*f) / c.stakeUnit * c.stakeUnit
	if stake < c.stakeUnit {
		return 0
	}

	c.logger.WithFields(logrus.Fields{
		"bankroll": bankroll,
		"prob":     prob,
		"odds":     odds,
		"fraction": f,
		"stake":    stake,
	}).Debug("Kelly stake calculated")

	return stake
}
