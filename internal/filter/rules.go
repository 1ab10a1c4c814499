// Package filter decides race eligibility through an ordered chain of
// exclusion rules evaluated before any EV computation.
package filter

import (
	"fmt"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// Input carries everything a rule may inspect. Odds is the candidate
// combination's odds when already known, zero otherwise; rules that need it
// skip themselves when it is absent.
type Input struct {
	Race *models.RaceContext
	Odds float64
}

// Rule is a single exclusion predicate with a human-readable reason.
// Excludes returning true terminates the chain.
type Rule interface {
	Name() string
	Excludes(in Input) bool
	Message(in Input) string
}

// gradeRule rejects races whose confidence grade is in the excluded set
type gradeRule struct {
	excluded map[models.ConfidenceGrade]bool
}

func (r *gradeRule) Name() string { return "confidence_grade" }

func (r *gradeRule) Excludes(in Input) bool {
	return r.excluded[in.Race.ConfidenceGrade]
}

func (r *gradeRule) Message(in Input) string {
	return fmt.Sprintf("confidence grade %s excluded", in.Race.ConfidenceGrade)
}

// classRule rejects races whose favorite-lane racer class is outside the
// allowed set. Skipped when the race card has no lane-1 entry.
type classRule struct {
	allowed map[models.RacerClass]bool
}

func (r *classRule) Name() string { return "favorite_lane_class" }

func (r *classRule) Excludes(in Input) bool {
	class, ok := in.Race.FavoriteLaneClass()
	if !ok {
		return false
	}
	return !r.allowed[class]
}

func (r *classRule) Message(in Input) string {
	class, _ := in.Race.FavoriteLaneClass()
	return fmt.Sprintf("favorite-lane racer class %s not allowed", class)
}

// windGapRule rejects races where the forecast-vs-actual wind gap exceeds a
// threshold. Skipped unless both values are present.
type windGapRule struct {
	maxGap float64
}

func (r *windGapRule) Name() string { return "wind_gap" }

func (r *windGapRule) Excludes(in Input) bool {
	gap, ok := in.Race.WindGap()
	if !ok {
		return false
	}
	return gap > r.maxGap
}

func (r *windGapRule) Message(in Input) string {
	gap, _ := in.Race.WindGap()
	return fmt.Sprintf("wind forecast gap %.1f exceeds %.1f", gap, r.maxGap)
}

// entryConfidenceRule rejects races with entry confidence below a minimum.
// Skipped when the value is absent.
type entryConfidenceRule struct {
	min float64
}

func (r *entryConfidenceRule) Name() string { return "entry_confidence" }

func (r *entryConfidenceRule) Excludes(in Input) bool {
	if in.Race.EntryConfidence == nil {
		return false
	}
	return *in.Race.EntryConfidence < r.min
}

func (r *entryConfidenceRule) Message(in Input) string {
	return fmt.Sprintf("entry confidence %.2f below minimum %.2f", *in.Race.EntryConfidence, r.min)
}

// edgeRule rejects races carrying a negative pre-computed edge.
// Skipped when no edge is present on the context.
type edgeRule struct{}

func (r *edgeRule) Name() string { return "negative_edge" }

func (r *edgeRule) Excludes(in Input) bool {
	if in.Race.Edge == nil {
		return false
	}
	return *in.Race.Edge < 0
}

func (r *edgeRule) Message(in Input) string {
	return fmt.Sprintf("edge %.3f below zero", *in.Race.Edge)
}

// venueOddsRule rejects races whose candidate odds fall outside the window
// for the venue's volatility type. Skipped when odds are unknown.
type venueOddsRule struct {
	window func(models.VenueType) models.OddsWindow
}

func (r *venueOddsRule) Name() string { return "venue_odds_range" }

func (r *venueOddsRule) Excludes(in Input) bool {
	if in.Odds <= 0 {
		return false
	}
	return !r.window(in.Race.VenueType()).Contains(in.Odds)
}

func (r *venueOddsRule) Message(in Input) string {
	w := r.window(in.Race.VenueType())
	return fmt.Sprintf("odds %.1f outside venue window [%.1f, %.1f)", in.Odds, w.Min, w.Max)
}
