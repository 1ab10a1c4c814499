package selector

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/ev"
	"github.com/yourusername/kyotei-edge/internal/filter"
	"github.com/yourusername/kyotei-edge/internal/models"
)

// Selector produces a RaceBetPlan for one race from its context, ranked
// predictions, and odds table. Stateless; every call computes fresh.
type Selector struct {
	filter     *filter.Engine
	calculator *ev.Calculator
	conditions *ConditionTable
	allocator  *Allocator
	features   *config.FeaturesConfig
	filterCfg  *config.FilterConfig
	logger     *logrus.Logger
}

// NewSelector creates a bet selector
func NewSelector(
	filterEngine *filter.Engine,
	calculator *ev.Calculator,
	conditions *ConditionTable,
	allocator *Allocator,
	features *config.FeaturesConfig,
	filterCfg *config.FilterConfig,
	logger *logrus.Logger,
) *Selector {
	if conditions == nil {
		conditions = DefaultConditions()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Selector{
		filter:     filterEngine,
		calculator: calculator,
		conditions: conditions,
		allocator:  allocator,
		features:   features,
		filterCfg:  filterCfg,
		logger:     logger,
	}
}

// SelectBets evaluates both bet types for a race and applies dynamic
// allocation. Missing odds and unmatched conditions yield no-buy decisions,
// never errors.
func (s *Selector) SelectBets(race *models.RaceContext, pred *models.Prediction, odds models.OddsTable) *models.RaceBetPlan {
	plan := &models.RaceBetPlan{RaceID: race.RaceID}

	filterIn := filter.Input{Race: race, Odds: s.candidateOdds(race, pred, odds)}
	res := s.filter.IsTargetRace(filterIn)
	if !res.IsTarget {
		plan.Trifecta = models.NoBuy(models.BetTypeTrifecta, race.ConfidenceGrade, res.ExclusionReason)
		plan.Exacta = models.NoBuy(models.BetTypeExacta, race.ConfidenceGrade, res.ExclusionReason)
		return plan
	}

	plan.Trifecta = s.evaluateTrifecta(race, pred, odds)
	plan.Exacta = s.evaluateExacta(race, pred, odds)

	s.allocate(race, plan)
	plan.RecalcTotal()

	s.logger.WithFields(logrus.Fields{
		"race_id":     race.RaceID,
		"total_stake": plan.TotalStake,
		"trifecta":    plan.Trifecta.ShouldBuy,
		"exacta":      plan.Exacta.ShouldBuy,
	}).Debug("Race bet plan computed")

	return plan
}

// candidateOdds resolves the baseline trifecta odds for the filter's
// venue-odds rule, zero when unavailable.
func (s *Selector) candidateOdds(race *models.RaceContext, pred *models.Prediction, odds models.OddsTable) float64 {
	key, ok := pred.Combination(models.MethodBaseline, models.BetTypeTrifecta)
	if !ok {
		return 0
	}
	value, ok := odds.Lookup(key)
	if !ok {
		return 0
	}
	return value
}

// evaluateTrifecta scans the grade's ordered condition list; the first
// condition surviving the class, odds-window, and edge checks wins.
func (s *Selector) evaluateTrifecta(race *models.RaceContext, pred *models.Prediction, odds models.OddsTable) *models.BetDecision {
	grade := race.ConfidenceGrade
	conditions := s.conditions.TrifectaFor(grade)
	if len(conditions) == 0 {
		return models.NoBuy(models.BetTypeTrifecta, grade, fmt.Sprintf("no trifecta conditions for grade %s", grade))
	}

	class, hasClass := race.FavoriteLaneClass()

	for i := range conditions {
		cond := &conditions[i]

		if !hasClass || !cond.ClassEligible(class) {
			continue
		}

		key, ok := pred.Combination(cond.Method, models.BetTypeTrifecta)
		if !ok {
			continue
		}
		oddsValue, ok := odds.Lookup(key)
		if !ok {
			continue
		}

		window := cond.OddsWindow
		if s.features.UseVenueOdds {
			window = s.filterCfg.VenueWindow(race.VenueType())
		}
		if !window.Contains(oddsValue) {
			continue
		}

		result := s.calculator.CalcEvWithEdge(grade, oddsValue, models.BetTypeTrifecta)
		if !s.calculator.IsValidEv(result.EV) {
			s.logger.WithFields(logrus.Fields{
				"race_id": race.RaceID,
				"ev":      result.EV,
				"odds":    oddsValue,
			}).Warn("EV outside sanity range, skipping condition")
			continue
		}
		if s.features.UseEdgeFilter && result.Edge < 0 {
			continue
		}

		return &models.BetDecision{
			ShouldBuy:       true,
			BetType:         models.BetTypeTrifecta,
			Combination:     key,
			Odds:            oddsValue,
			StakeAmount:     cond.StakeAmount,
			EV:              result.EV,
			Edge:            result.Edge,
			ConfidenceGrade: grade,
			Method:          cond.Method,
			Reason:          cond.Label,
			LogicVersion:    models.LogicVersion,
		}
	}

	return models.NoBuy(models.BetTypeTrifecta, grade, "no condition matched")
}

// evaluateExacta applies the strictly narrower exacta gate: only grade D
// races with an A1 favorite are eligible, a single condition supplies the
// EV comparison and fixed stake. The exacta EV is computed from the real
// exacta odds; a missing combination is a no-buy.
func (s *Selector) evaluateExacta(race *models.RaceContext, pred *models.Prediction, odds models.OddsTable) *models.BetDecision {
	grade := race.ConfidenceGrade
	cond := s.conditions.Exacta
	if cond == nil {
		return models.NoBuy(models.BetTypeExacta, grade, "no exacta condition configured")
	}

	if grade != cond.ConfidenceGrade {
		return models.NoBuy(models.BetTypeExacta, grade, fmt.Sprintf("exacta requires grade %s", cond.ConfidenceGrade))
	}
	class, ok := race.FavoriteLaneClass()
	if !ok || !cond.ClassEligible(class) {
		return models.NoBuy(models.BetTypeExacta, grade, "exacta requires an A1 favorite")
	}

	key, ok := pred.Combination(cond.Method, models.BetTypeExacta)
	if !ok {
		return models.NoBuy(models.BetTypeExacta, grade, "prediction too short for exacta")
	}
	oddsValue, ok := odds.Lookup(key)
	if !ok {
		return models.NoBuy(models.BetTypeExacta, grade, "no odds for exacta combination")
	}
	if !cond.OddsWindow.Contains(oddsValue) {
		return models.NoBuy(models.BetTypeExacta, grade, fmt.Sprintf("exacta odds %.1f outside window", oddsValue))
	}

	result := s.calculator.CalcEvWithEdge(grade, oddsValue, models.BetTypeExacta)
	if !s.calculator.IsValidEv(result.EV) {
		return models.NoBuy(models.BetTypeExacta, grade, fmt.Sprintf("EV %.2f outside sanity range", result.EV))
	}
	if result.EV < s.calculator.EvThreshold() {
		return models.NoBuy(models.BetTypeExacta, grade, fmt.Sprintf("EV %.2f below threshold", result.EV))
	}
	if s.features.UseEdgeFilter && result.Edge < 0 {
		return models.NoBuy(models.BetTypeExacta, grade, "negative edge")
	}

	return &models.BetDecision{
		ShouldBuy:       true,
		BetType:         models.BetTypeExacta,
		Combination:     key,
		Odds:            oddsValue,
		StakeAmount:     cond.StakeAmount,
		EV:              result.EV,
		Edge:            result.Edge,
		ConfidenceGrade: grade,
		Method:          cond.Method,
		Reason:          cond.Label,
		LogicVersion:    models.LogicVersion,
	}
}

// allocate rebalances the two legs when dynamic allocation is enabled and
// both were bought independently.
func (s *Selector) allocate(race *models.RaceContext, plan *models.RaceBetPlan) {
	if !s.features.UseDynamicAlloc {
		return
	}

	edge := 0.0
	if plan.Trifecta != nil && plan.Trifecta.ShouldBuy {
		edge = plan.Trifecta.Edge
	}

	upset := false
	if class, ok := race.FavoriteLaneClass(); ok {
		allowed := false
		for _, c := range s.filterCfg.AllowedClassSet() {
			if c == class {
				allowed = true
				break
			}
		}
		upset = !allowed
	}

	ratio := s.allocator.CalcAllocation(AllocationContext{
		ConfidenceGrade: race.ConfidenceGrade,
		Edge:            edge,
		IsUpsetLikely:   upset,
		VenueType:       race.VenueType(),
	})
	plan.AllocationRatio = ratio

	if plan.Trifecta == nil || plan.Exacta == nil || !plan.Trifecta.ShouldBuy || !plan.Exacta.ShouldBuy {
		return
	}

	tri, exa := s.allocator.ApplyAllocation(plan.Trifecta.StakeAmount, plan.Exacta.StakeAmount, ratio)
	plan.Trifecta.StakeAmount = tri
	plan.Exacta.StakeAmount = exa
}
