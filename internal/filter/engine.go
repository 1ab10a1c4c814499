package filter

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/metrics"
	"github.com/yourusername/kyotei-edge/internal/models"
)

// Result is the outcome of running the rule chain over one race
type Result struct {
	IsTarget        bool     `json:"is_target"`
	ExclusionReason string   `json:"exclusion_reason,omitempty"`
	AppliedRules    []string `json:"applied_rules"`
}

// Engine evaluates an ordered, short-circuiting chain of exclusion rules.
// Rule order is significant: the first matching rule supplies the reason.
type Engine struct {
	rules  []Rule
	logger *logrus.Logger
}

// NewEngine builds the rule chain from configuration. The confidence-grade
// and racer-class rules always apply; the remaining rules are gated by the
// use_exclusion_rules flag (and their own sub-flags).
func NewEngine(cfg *config.FilterConfig, features *config.FeaturesConfig, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}

	excluded := make(map[models.ConfidenceGrade]bool)
	for _, g := range cfg.ExcludedGradeSet() {
		excluded[g] = true
	}
	allowed := make(map[models.RacerClass]bool)
	for _, c := range cfg.AllowedClassSet() {
		allowed[c] = true
	}

	rules := []Rule{
		&gradeRule{excluded: excluded},
		&classRule{allowed: allowed},
	}

	if features.UseExclusionRules {
		rules = append(rules,
			&windGapRule{maxGap: cfg.MaxWindGap},
			&entryConfidenceRule{min: cfg.MinEntryConfidence},
		)
		if features.UseEdgeFilter {
			rules = append(rules, &edgeRule{})
		}
		if features.UseVenueOdds {
			rules = append(rules, &venueOddsRule{window: cfg.VenueWindow})
		}
	}

	return &Engine{rules: rules, logger: logger}
}

// IsTargetRace runs the chain over a race. Pure function of the input and
// the engine's static configuration.
func (e *Engine) IsTargetRace(in Input) Result {
	applied := make([]string, 0, len(e.rules))

	for _, rule := range e.rules {
		applied = append(applied, rule.Name())
		if rule.Excludes(in) {
			reason := rule.Message(in)
			metrics.RacesExcludedTotal.WithLabelValues(rule.Name()).Inc()
			e.logger.WithFields(logrus.Fields{
				"race_id": in.Race.RaceID,
				"rule":    rule.Name(),
				"reason":  reason,
			}).Debug("Race excluded by filter rule")
			return Result{
				IsTarget:        false,
				ExclusionReason: reason,
				AppliedRules:    applied,
			}
		}
	}

	return Result{IsTarget: true, AppliedRules: applied}
}

// RuleNames returns the configured rule names in evaluation order
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, rule := range e.rules {
		names[i] = rule.Name()
	}
	return names
}
