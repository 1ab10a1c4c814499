package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/ev"
	"github.com/yourusername/kyotei-edge/internal/filter"
	"github.com/yourusername/kyotei-edge/internal/kelly"
	"github.com/yourusername/kyotei-edge/internal/models"
	"github.com/yourusername/kyotei-edge/internal/selector"
)

// MockRecordWriter mocks the record sink
type MockRecordWriter struct {
	mock.Mock
}

func (m *MockRecordWriter) Append(ctx context.Context, record *models.BetRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func testSafetyConfig() *config.SafetyConfig {
	return &config.SafetyConfig{
		MaxLossStreak:   5,
		MinBankroll:     10000,
		MaxDailyBets:    10,
		InitialBankroll: 100000,
	}
}

func newTestEngine(features *config.FeaturesConfig, safety *config.SafetyConfig, recorder RecordWriter) *Engine {
	filterCfg := &config.FilterConfig{
		ExcludedGrades:     []string{"A", "B"},
		AllowedClasses:     []string{"A1", "A2"},
		MaxWindGap:         3.0,
		MinEntryConfidence: 0.6,
		StaticOddsWindow:   models.OddsWindow{Min: 10, Max: 100},
	}
	evCfg := &config.EVConfig{TakeoutRate: 0.25, EVThreshold: 1.0, MaxEV: 10.0}
	allocCfg := &config.AllocationConfig{BaseRatio: 0.7, HighEdgeRatio: 0.85, UpsetRatio: 0.5, HighEdgeMin: 0.20}
	kellyCfg := &config.KellyConfig{Fraction: 0.25, MaxBetRatio: 0.05, MinEdge: 0.05}

	calculator := ev.NewCalculator(evCfg, features, nil)
	sel := selector.NewSelector(
		filter.NewEngine(filterCfg, features, nil),
		calculator,
		selector.DefaultConditions(),
		selector.NewAllocator(allocCfg, 100),
		features,
		filterCfg,
		nil,
	)

	return NewEngine(sel, kelly.NewCalculator(kellyCfg, 100, nil), calculator, safety, features, recorder, nil)
}

func buyableCard(raceNumber int) RaceCard {
	return RaceCard{
		RaceNumber: raceNumber,
		Race: &models.RaceContext{
			RaceID:          fmt.Sprintf("20260829-12-%02d", raceNumber),
			VenueCode:       1,
			ConfidenceGrade: models.GradeD,
			Entries: []models.RaceEntry{
				{LaneNumber: 1, RacerClass: models.ClassA1},
				{LaneNumber: 2, RacerClass: models.ClassB1},
			},
		},
		Prediction: &models.Prediction{
			ConfidenceGrade: models.GradeD,
			Baseline:        []int{4, 3, 5},
			Alternate:       []int{3, 4, 1},
		},
		Odds: models.OddsTable{"4-3-5": 35.0},
	}
}

func TestSafetyStopOnLossStreak(t *testing.T) {
	writer := new(MockRecordWriter)
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), writer)

	for i := 0; i < 5; i++ {
		eng.UpdateResult(false, 0, 0)
	}

	result, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{buyableCard(1)})
	require.NoError(t, err)

	assert.Empty(t, result.Plans)
	assert.Empty(t, result.Records)
	require.Len(t, result.Summary.Warnings, 1)
	assert.Contains(t, result.Summary.Warnings[0], "loss streak")
	writer.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSafetyStopOnLowBankroll(t *testing.T) {
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), nil)
	eng.SetBankroll(5000)

	result, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{buyableCard(1)})
	require.NoError(t, err)

	assert.Empty(t, result.Plans)
	require.Len(t, result.Summary.Warnings, 1)
	assert.Contains(t, result.Summary.Warnings[0], "bankroll")
}

func TestRunBatchPlacesBetsAndRecords(t *testing.T) {
	writer := new(MockRecordWriter)
	writer.On("Append", mock.Anything, mock.Anything).Return(nil)
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), writer)

	result, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{buyableCard(5)})
	require.NoError(t, err)

	require.Len(t, result.Plans, 1)
	require.Len(t, result.Records, 1)

	record := result.Records[0]
	assert.Equal(t, "2026-08-29", record.Date)
	assert.Equal(t, 5, record.RaceNumber)
	assert.Equal(t, models.BetTypeTrifecta, record.BetType)
	assert.Equal(t, "4-3-5", record.Combination)
	assert.Equal(t, 300, record.Stake)
	assert.Equal(t, models.LogicVersion, record.LogicVersion)
	assert.False(t, record.IsSettled())

	assert.Equal(t, 1, result.Summary.BetsPlaced)
	assert.Equal(t, 1, result.Summary.TrifectaBets)
	assert.Equal(t, 300, result.Summary.TotalStake)
	assert.InDelta(t, 2.275, result.Summary.AvgEV, 1e-9)

	assert.Equal(t, 1, eng.State().DailyBetCount)
	writer.AssertExpectations(t)
}

func TestTotalStakeMatchesBoughtDecisions(t *testing.T) {
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), nil)

	cards := []RaceCard{buyableCard(1), buyableCard(2)}
	result, err := eng.RunBatch(context.Background(), "2026-08-29", cards)
	require.NoError(t, err)

	for _, plan := range result.Plans {
		sum := 0
		for _, d := range plan.BoughtDecisions() {
			sum += d.StakeAmount
		}
		assert.Equal(t, sum, plan.TotalStake)
	}
}

func TestDailyBetCapSkipsRemainingRaces(t *testing.T) {
	safety := testSafetyConfig()
	safety.MaxDailyBets = 1
	eng := newTestEngine(&config.FeaturesConfig{}, safety, nil)

	cards := []RaceCard{buyableCard(1), buyableCard(2), buyableCard(3)}
	result, err := eng.RunBatch(context.Background(), "2026-08-29", cards)
	require.NoError(t, err)

	assert.Len(t, result.Plans, 1)
	assert.Equal(t, 1, result.Summary.BetsPlaced)
	require.Len(t, result.Summary.Warnings, 1)
	assert.Contains(t, result.Summary.Warnings[0], "daily bet cap")
}

func TestKellySizingOverridesStake(t *testing.T) {
	eng := newTestEngine(&config.FeaturesConfig{UseKelly: true}, testSafetyConfig(), nil)

	result, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{buyableCard(1)})
	require.NoError(t, err)

	require.Len(t, result.Plans, 1)
	plan := result.Plans[0]
	require.True(t, plan.Trifecta.ShouldBuy)
	// Fractional Kelly on bankroll 100000 at p=0.065/odds 35, floored to
	// the stake unit
	assert.Equal(t, 900, plan.Trifecta.StakeAmount)
	assert.Equal(t, 900, plan.TotalStake)
}

func TestKellyZeroStakeDemotesToNoBuy(t *testing.T) {
	safety := testSafetyConfig()
	safety.MinBankroll = 1000
	safety.InitialBankroll = 5000
	eng := newTestEngine(&config.FeaturesConfig{UseKelly: true}, safety, nil)

	result, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{buyableCard(1)})
	require.NoError(t, err)

	require.Len(t, result.Plans, 1)
	plan := result.Plans[0]
	assert.False(t, plan.Trifecta.ShouldBuy)
	assert.Contains(t, plan.Trifecta.Reason, "rejected by kelly sizing")
	assert.Equal(t, 0, plan.TotalStake)
	assert.Empty(t, result.Records)
}

func TestUpdateResultAdjustsState(t *testing.T) {
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), nil)

	eng.UpdateResult(false, 300, 0)
	state := eng.State()
	assert.InDelta(t, 99700.0, state.Bankroll, 1e-9)
	assert.Equal(t, 1, state.LossStreak)

	eng.UpdateResult(true, 300, 1200)
	state = eng.State()
	assert.InDelta(t, 100600.0, state.Bankroll, 1e-9)
	assert.Equal(t, 0, state.LossStreak)
}

func TestSettleRecordResolvesAndUpdates(t *testing.T) {
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), nil)

	result, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{buyableCard(1)})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	record := result.Records[0]
	eng.SettleRecord(record, true, 10500)

	assert.True(t, record.IsSettled())
	require.NotNil(t, record.Hit)
	assert.True(t, *record.Hit)
	assert.InDelta(t, 10500.0, record.Payout.InexactFloat64(), 1e-6)
	assert.InDelta(t, 100000-300+10500, eng.State().Bankroll, 1e-9)
	assert.Equal(t, 0, eng.State().LossStreak)
}

func TestResetDailyClearsCount(t *testing.T) {
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), nil)

	_, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{buyableCard(1)})
	require.NoError(t, err)
	require.Equal(t, 1, eng.State().DailyBetCount)

	eng.ResetDaily()
	assert.Equal(t, 0, eng.State().DailyBetCount)
}

func TestMultiWriterFansOut(t *testing.T) {
	first := new(MockRecordWriter)
	second := new(MockRecordWriter)
	first.On("Append", mock.Anything, mock.Anything).Return(nil)
	second.On("Append", mock.Anything, mock.Anything).Return(nil)

	mw := MultiWriter{first, second}
	record := &models.BetRecord{}
	require.NoError(t, mw.Append(context.Background(), record))

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestExcludedRaceProducesNoBuyPlan(t *testing.T) {
	eng := newTestEngine(&config.FeaturesConfig{}, testSafetyConfig(), nil)

	card := buyableCard(1)
	card.Race.ConfidenceGrade = models.GradeB
	card.Prediction.ConfidenceGrade = models.GradeB

	result, err := eng.RunBatch(context.Background(), "2026-08-29", []RaceCard{card})
	require.NoError(t, err)

	require.Len(t, result.Plans, 1)
	assert.False(t, result.Plans[0].Trifecta.ShouldBuy)
	assert.Contains(t, result.Plans[0].Trifecta.Reason, "confidence grade B excluded")
	assert.Empty(t, result.Records)
	assert.Equal(t, 0, eng.State().DailyBetCount)
}
