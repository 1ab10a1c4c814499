package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func testFilterConfig() *config.FilterConfig {
	return &config.FilterConfig{
		ExcludedGrades:     []string{"A", "B"},
		AllowedClasses:     []string{"A1", "A2"},
		MaxWindGap:         3.0,
		MinEntryConfidence: 0.6,
		StaticOddsWindow:   models.OddsWindow{Min: 10, Max: 100},
	}
}

func allFeatures() *config.FeaturesConfig {
	return &config.FeaturesConfig{
		UseEdgeFilter:     true,
		UseVenueOdds:      true,
		UseExclusionRules: true,
	}
}

func testRace(grade models.ConfidenceGrade, class models.RacerClass) *models.RaceContext {
	return &models.RaceContext{
		RaceID:          "20260829-01-07",
		VenueCode:       1,
		ConfidenceGrade: grade,
		Entries: []models.RaceEntry{
			{LaneNumber: 1, RacerClass: class},
			{LaneNumber: 2, RacerClass: models.ClassB1},
		},
	}
}

func TestGradeExclusionShortCircuits(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	// Everything else about this race would also fail, but the grade rule
	// runs first and supplies the reason.
	race := testRace(models.GradeA, models.ClassB2)
	race.WindForecast = floatPtr(1.0)
	race.WindActual = floatPtr(6.0)
	race.EntryConfidence = floatPtr(0.1)

	res := engine.IsTargetRace(Input{Race: race, Odds: 5.0})
	assert.False(t, res.IsTarget)
	assert.Equal(t, "confidence grade A excluded", res.ExclusionReason)
	assert.Equal(t, []string{"confidence_grade"}, res.AppliedRules)
}

func TestRuleChainOrder(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	expected := []string{
		"confidence_grade",
		"favorite_lane_class",
		"wind_gap",
		"entry_confidence",
		"negative_edge",
		"venue_odds_range",
	}
	assert.Equal(t, expected, engine.RuleNames())
}

func TestEvaluationIsDeterministic(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	race := testRace(models.GradeC, models.ClassA1)
	race.WindForecast = floatPtr(2.0)
	race.WindActual = floatPtr(3.0)
	race.EntryConfidence = floatPtr(0.8)
	in := Input{Race: race, Odds: 25.0}

	first := engine.IsTargetRace(in)
	second := engine.IsTargetRace(in)
	assert.Equal(t, first, second)
	assert.True(t, first.IsTarget)
}

func TestClassRule(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	res := engine.IsTargetRace(Input{Race: testRace(models.GradeC, models.ClassB1)})
	assert.False(t, res.IsTarget)
	assert.Contains(t, res.ExclusionReason, "racer class B1")

	// No lane-1 entry: rule skips rather than excludes
	race := testRace(models.GradeC, models.ClassA1)
	race.Entries = []models.RaceEntry{{LaneNumber: 3, RacerClass: models.ClassB2}}
	res = engine.IsTargetRace(Input{Race: race})
	assert.True(t, res.IsTarget)
}

func TestWindGapRule(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	tests := []struct {
		name     string
		forecast *float64
		actual   *float64
		isTarget bool
	}{
		{"Gap above threshold", floatPtr(1.0), floatPtr(4.5), false},
		{"Gap at threshold", floatPtr(1.0), floatPtr(4.0), true},
		{"Negative gap above threshold", floatPtr(5.0), floatPtr(1.0), false},
		{"Forecast missing", nil, floatPtr(4.5), true},
		{"Actual missing", floatPtr(1.0), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			race := testRace(models.GradeC, models.ClassA1)
			race.WindForecast = tt.forecast
			race.WindActual = tt.actual
			res := engine.IsTargetRace(Input{Race: race})
			assert.Equal(t, tt.isTarget, res.IsTarget)
		})
	}
}

func TestEntryConfidenceRule(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	race := testRace(models.GradeC, models.ClassA1)
	race.EntryConfidence = floatPtr(0.5)
	res := engine.IsTargetRace(Input{Race: race})
	assert.False(t, res.IsTarget)
	assert.Contains(t, res.ExclusionReason, "entry confidence")

	race.EntryConfidence = floatPtr(0.6)
	assert.True(t, engine.IsTargetRace(Input{Race: race}).IsTarget)

	race.EntryConfidence = nil
	assert.True(t, engine.IsTargetRace(Input{Race: race}).IsTarget)
}

func TestNegativeEdgeRule(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	race := testRace(models.GradeC, models.ClassA1)
	race.Edge = floatPtr(-0.05)
	res := engine.IsTargetRace(Input{Race: race})
	assert.False(t, res.IsTarget)
	assert.Contains(t, res.ExclusionReason, "edge")

	race.Edge = floatPtr(0.1)
	assert.True(t, engine.IsTargetRace(Input{Race: race}).IsTarget)

	race.Edge = nil
	assert.True(t, engine.IsTargetRace(Input{Race: race}).IsTarget)
}

func TestVenueOddsRule(t *testing.T) {
	engine := NewEngine(testFilterConfig(), allFeatures(), nil)

	race := testRace(models.GradeC, models.ClassA1)

	// Below the static window
	res := engine.IsTargetRace(Input{Race: race, Odds: 5.0})
	assert.False(t, res.IsTarget)
	assert.Contains(t, res.ExclusionReason, "outside venue window")

	// Window is half-open: the max is excluded, the min is not
	assert.True(t, engine.IsTargetRace(Input{Race: race, Odds: 10.0}).IsTarget)
	assert.False(t, engine.IsTargetRace(Input{Race: race, Odds: 100.0}).IsTarget)

	// Unknown odds: rule skips
	assert.True(t, engine.IsTargetRace(Input{Race: race, Odds: 0}).IsTarget)
}

func TestVenueSpecificWindow(t *testing.T) {
	cfg := testFilterConfig()
	cfg.VenueOddsWindows = map[string]models.OddsWindow{
		"rough": {Min: 20, Max: 60},
	}
	engine := NewEngine(cfg, allFeatures(), nil)

	// Venue 2 (Toda) is rough: 15.0 falls outside its narrower window
	race := testRace(models.GradeC, models.ClassA1)
	race.VenueCode = 2
	assert.False(t, engine.IsTargetRace(Input{Race: race, Odds: 15.0}).IsTarget)

	// A stable venue falls back to the static window
	race.VenueCode = 1
	assert.True(t, engine.IsTargetRace(Input{Race: race, Odds: 15.0}).IsTarget)
}

func TestDisabledFlagsShortenChain(t *testing.T) {
	features := &config.FeaturesConfig{UseExclusionRules: false}
	engine := NewEngine(testFilterConfig(), features, nil)

	assert.Equal(t, []string{"confidence_grade", "favorite_lane_class"}, engine.RuleNames())

	// With the optional rules off, a huge wind gap no longer excludes
	race := testRace(models.GradeC, models.ClassA1)
	race.WindForecast = floatPtr(0.0)
	race.WindActual = floatPtr(9.0)
	assert.True(t, engine.IsTargetRace(Input{Race: race}).IsTarget)
}
