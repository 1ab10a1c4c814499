// Package engine orchestrates the betting-decision pipeline over a day's
// race cards and owns the process-wide safety state.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/ev"
	"github.com/yourusername/kyotei-edge/internal/kelly"
	"github.com/yourusername/kyotei-edge/internal/logger"
	"github.com/yourusername/kyotei-edge/internal/metrics"
	"github.com/yourusername/kyotei-edge/internal/models"
	"github.com/yourusername/kyotei-edge/internal/selector"
)

// RaceCard bundles the materialized inputs for one race
type RaceCard struct {
	RaceNumber int
	Race       *models.RaceContext
	Prediction *models.Prediction
	Odds       models.OddsTable
}

// RecordWriter receives the fully-resolved bet records the engine emits
type RecordWriter interface {
	Append(ctx context.Context, record *models.BetRecord) error
}

// BatchResult is the outcome of one daily run
type BatchResult struct {
	Plans   []*models.RaceBetPlan
	Records []*models.BetRecord
	Summary models.DailyBetSummary
}

// Engine runs FilterEngine, BetSelector, and the optional Kelly override
// across race cards sequentially. Safety state is single-writer, guarded by
// the engine's mutex for hosts that settle from another goroutine.
type Engine struct {
	selector   *selector.Selector
	kelly      *kelly.Calculator
	calculator *ev.Calculator
	safety     *config.SafetyConfig
	features   *config.FeaturesConfig
	recorder   RecordWriter
	audit      *logger.AuditLogger
	logger     *logrus.Logger

	mu    sync.Mutex
	state models.EngineState
}

// NewEngine creates a strategy engine with its bankroll at the configured
// initial value
func NewEngine(
	sel *selector.Selector,
	kellyCalc *kelly.Calculator,
	calculator *ev.Calculator,
	safety *config.SafetyConfig,
	features *config.FeaturesConfig,
	recorder RecordWriter,
	log *logrus.Logger,
) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		selector:   sel,
		kelly:      kellyCalc,
		calculator: calculator,
		safety:     safety,
		features:   features,
		recorder:   recorder,
		audit:      logger.NewAuditLogger(log),
		logger:     log,
		state: models.EngineState{
			Bankroll: safety.InitialBankroll,
		},
	}
}

// RunBatch processes a day's race cards in order. The safety-stop gate is
// checked once up front and fails closed: a tripped gate returns an empty
// plan list with a warning, regardless of how favorable the races look.
func (e *Engine) RunBatch(ctx context.Context, date string, cards []RaceCard) (*BatchResult, error) {
	start := time.Now()

	e.mu.Lock()
	state := e.state
	e.mu.Unlock()

	result := &BatchResult{
		Summary: models.DailyBetSummary{Date: date},
	}

	if warn := e.safetyStop(state); warn != "" {
		result.Summary.Warnings = append(result.Summary.Warnings, warn)
		e.audit.LogSafetyStop(warn, state.LossStreak, state.Bankroll)
		metrics.SafetyStopsTotal.Inc()
		return result, nil
	}

	var evSum, edgeSum float64

	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.mu.Lock()
		capReached := e.state.DailyBetCount >= e.safety.MaxDailyBets
		e.mu.Unlock()
		if capReached {
			warn := fmt.Sprintf("daily bet cap %d reached, skipping remaining races", e.safety.MaxDailyBets)
			result.Summary.Warnings = append(result.Summary.Warnings, warn)
			e.logger.Warn(warn)
			break
		}

		result.Summary.RacesEvaluated++
		metrics.RacesEvaluatedTotal.Inc()

		plan := e.selector.SelectBets(card.Race, card.Prediction, card.Odds)
		if e.features.UseKelly {
			e.applyKelly(plan)
		}
		plan.RecalcTotal()

		result.Plans = append(result.Plans, plan)

		if plan.TotalStake <= 0 {
			if plan.Trifecta != nil {
				e.audit.LogExclusion(card.Race.RaceID, plan.Trifecta.Reason)
			}
			continue
		}

		result.Summary.TargetRaces++
		e.mu.Lock()
		e.state.DailyBetCount++
		metrics.DailyBetCount.Set(float64(e.state.DailyBetCount))
		e.mu.Unlock()

		for _, decision := range plan.BoughtDecisions() {
			record := models.NewBetRecord(date, card.Race, card.RaceNumber, decision)
			if e.recorder != nil {
				if err := e.recorder.Append(ctx, record); err != nil {
					e.logger.WithError(err).WithField("race_id", card.Race.RaceID).Error("Failed to persist bet record")
				}
			}
			result.Records = append(result.Records, record)

			result.Summary.BetsPlaced++
			result.Summary.TotalStake += decision.StakeAmount
			evSum += decision.EV
			edgeSum += decision.Edge
			switch decision.BetType {
			case models.BetTypeTrifecta:
				result.Summary.TrifectaBets++
			case models.BetTypeExacta:
				result.Summary.ExactaBets++
			}

			metrics.BetsPlacedTotal.WithLabelValues(string(decision.BetType)).Inc()
			metrics.StakeTotal.Add(float64(decision.StakeAmount))
			metrics.BetEV.Observe(decision.EV)
			e.audit.LogBetPlacement(record.ID.String(), record.RaceID, string(record.BetType),
				record.Combination, record.Stake, record.Odds, record.EV, record.Edge, record.CreatedAt)
		}
	}

	if result.Summary.BetsPlaced > 0 {
		result.Summary.AvgEV = evSum / float64(result.Summary.BetsPlaced)
		result.Summary.AvgEdge = edgeSum / float64(result.Summary.BetsPlaced)
	}

	metrics.BatchDuration.Observe(time.Since(start).Seconds())
	e.logger.WithField("summary", result.Summary.String()).Info("Batch run complete")
	return result, nil
}

// safetyStop returns a warning message when the fail-closed gate trips
func (e *Engine) safetyStop(state models.EngineState) string {
	if state.LossStreak >= e.safety.MaxLossStreak {
		return fmt.Sprintf("loss streak %d reached limit %d", state.LossStreak, e.safety.MaxLossStreak)
	}
	if state.Bankroll < e.safety.MinBankroll {
		return fmt.Sprintf("bankroll %.0f below minimum %.0f", state.Bankroll, e.safety.MinBankroll)
	}
	return ""
}

// applyKelly replaces condition-table stakes with fractional-Kelly stakes.
// A zero Kelly stake demotes the decision to a no-buy.
func (e *Engine) applyKelly(plan *models.RaceBetPlan) {
	e.mu.Lock()
	bankroll := e.state.Bankroll
	e.mu.Unlock()

	for _, decision := range plan.BoughtDecisions() {
		prob := e.calculator.HitRate(decision.ConfidenceGrade, decision.BetType)
		stake := e.kelly.Stake(prob, decision.Odds, bankroll)
		if stake <= 0 {
			decision.ShouldBuy = false
			decision.StakeAmount = 0
			decision.Reason = decision.Reason + "; rejected by kelly sizing"
			continue
		}
		decision.StakeAmount = stake
	}
}

// UpdateResult mutates the safety state after one race settles: a hit
// resets the loss streak and adds the net payout, a miss extends the streak.
func (e *Engine) UpdateResult(hit bool, stake int, payout float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Bankroll += payout - float64(stake)
	if hit {
		e.state.LossStreak = 0
		metrics.BetsSettledTotal.WithLabelValues("hit").Inc()
	} else {
		e.state.LossStreak++
		metrics.BetsSettledTotal.WithLabelValues("miss").Inc()
	}

	metrics.CurrentBankroll.Set(e.state.Bankroll)
	metrics.LossStreak.Set(float64(e.state.LossStreak))
}

// SettleRecord resolves a bet record against the race outcome and updates
// the safety state
func (e *Engine) SettleRecord(record *models.BetRecord, hit bool, payout float64) {
	record.Settle(hit, decimal.NewFromFloat(payout), time.Now().UTC())
	e.UpdateResult(hit, record.Stake, payout)

	e.mu.Lock()
	state := e.state
	e.mu.Unlock()
	e.audit.LogSettlement(record.ID.String(), hit, payout, state.Bankroll, state.LossStreak)
}

// ResetDaily clears the daily bet count at a day boundary
func (e *Engine) ResetDaily() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.DailyBetCount = 0
	metrics.DailyBetCount.Set(0)
	e.logger.Info("Daily bet count reset")
}

// State returns a snapshot of the safety state
func (e *Engine) State() models.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetBankroll overrides the bankroll, for hosts restoring persisted state
func (e *Engine) SetBankroll(bankroll float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Bankroll = bankroll
	metrics.CurrentBankroll.Set(bankroll)
}
