package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/kyotei-edge/internal/betlog"
	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/datasource"
	"github.com/yourusername/kyotei-edge/internal/engine"
	"github.com/yourusername/kyotei-edge/internal/ev"
	"github.com/yourusername/kyotei-edge/internal/filter"
	"github.com/yourusername/kyotei-edge/internal/kelly"
	"github.com/yourusername/kyotei-edge/internal/models"
	"github.com/yourusername/kyotei-edge/internal/selector"
)

// MockRaceCardSource mocks the race card provider
type MockRaceCardSource struct {
	mock.Mock
}

func (m *MockRaceCardSource) FetchRaceCards(ctx context.Context, date string) ([]datasource.RaceCardData, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]datasource.RaceCardData), args.Error(1)
}

// MockOddsSource mocks the odds provider
type MockOddsSource struct {
	mock.Mock
}

func (m *MockOddsSource) FetchOdds(ctx context.Context, raceID string) (models.OddsTable, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.OddsTable), args.Error(1)
}

func newTestEngine(store *betlog.Store) *engine.Engine {
	features := &config.FeaturesConfig{}
	filterCfg := &config.FilterConfig{
		ExcludedGrades:   []string{"A", "B"},
		AllowedClasses:   []string{"A1", "A2"},
		MaxWindGap:       3.0,
		StaticOddsWindow: models.OddsWindow{Min: 10, Max: 100},
	}
	evCfg := &config.EVConfig{TakeoutRate: 0.25, EVThreshold: 1.0, MaxEV: 10.0}
	allocCfg := &config.AllocationConfig{BaseRatio: 0.7, HighEdgeRatio: 0.85, UpsetRatio: 0.5, HighEdgeMin: 0.20}
	safety := &config.SafetyConfig{MaxLossStreak: 5, MinBankroll: 10000, MaxDailyBets: 10, InitialBankroll: 100000}

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
	return engine.NewEngine(sel, kelly.NewCalculator(&config.KellyConfig{Fraction: 0.25, MaxBetRatio: 0.05, MinEdge: 0.05}, 100, nil),
		calculator, safety, features, store, nil)
}

func buyableCardData() datasource.RaceCardData {
	return datasource.RaceCardData{
		RaceNumber: 5,
		Race: models.RaceContext{
			RaceID:          "20260829-12-05",
			VenueCode:       1,
			ConfidenceGrade: models.GradeD,
			Entries: []models.RaceEntry{
				{LaneNumber: 1, RacerClass: models.ClassA1},
				{LaneNumber: 2, RacerClass: models.ClassB1},
			},
		},
		Prediction: models.Prediction{
			ConfidenceGrade: models.GradeD,
			Baseline:        []int{4, 3, 5},
			Alternate:       []int{3, 4, 1},
		},
		Odds: models.OddsTable{"4-3-5": 35.0},
	}
}

func TestRunForDatePersistsRecords(t *testing.T) {
	store, err := betlog.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	eng := newTestEngine(store)

	cards := new(MockRaceCardSource)
	cards.On("FetchRaceCards", mock.Anything, "2026-08-29").Return([]datasource.RaceCardData{buyableCardData()}, nil)

	svc := NewDailyRunService(cards, new(MockOddsSource), eng, store, nil)
	date, _ := time.Parse("2006-01-02", "2026-08-29")
	require.NoError(t, svc.RunForDate(context.Background(), date))

	records, err := store.LoadDay(context.Background(), "2026-08-29")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "4-3-5", records[0].Combination)
	assert.Equal(t, 300, records[0].Stake)
	cards.AssertExpectations(t)
}

func TestRunForDateEmptyDay(t *testing.T) {
	store, err := betlog.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	cards := new(MockRaceCardSource)
	cards.On("FetchRaceCards", mock.Anything, mock.Anything).Return([]datasource.RaceCardData{}, nil)

	svc := NewDailyRunService(cards, new(MockOddsSource), newTestEngine(store), store, nil)
	require.NoError(t, svc.RunForDate(context.Background(), time.Now()))
}

func TestRefreshOddsCoversLastBatch(t *testing.T) {
	store, err := betlog.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	eng := newTestEngine(store)

	cards := new(MockRaceCardSource)
	cards.On("FetchRaceCards", mock.Anything, mock.Anything).Return([]datasource.RaceCardData{buyableCardData()}, nil)
	odds := new(MockOddsSource)
	odds.On("FetchOdds", mock.Anything, "20260829-12-05").Return(models.OddsTable{"4-3-5": 33.0}, nil)

	svc := NewDailyRunService(cards, odds, eng, store, nil)
	date, _ := time.Parse("2006-01-02", "2026-08-29")
	require.NoError(t, svc.RunForDate(context.Background(), date))
	require.NoError(t, svc.RefreshOdds(context.Background()))

	odds.AssertExpectations(t)
}

func TestSettleDayResolvesRecords(t *testing.T) {
	store, err := betlog.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	eng := newTestEngine(store)

	cards := new(MockRaceCardSource)
	cards.On("FetchRaceCards", mock.Anything, mock.Anything).Return([]datasource.RaceCardData{buyableCardData()}, nil)

	svc := NewDailyRunService(cards, new(MockOddsSource), eng, store, nil)
	date, _ := time.Parse("2006-01-02", "2026-08-29")
	require.NoError(t, svc.RunForDate(context.Background(), date))

	results := map[string]RaceResult{
		"20260829-12-05": {
			RaceID:          "20260829-12-05",
			WinningTrifecta: "4-3-5",
			WinningExacta:   "4-3",
			Payouts:         map[string]float64{"4-3-5": 3500},
		},
	}

	settled, err := svc.SettleDay(context.Background(), "2026-08-29", results)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	records, err := store.LoadDay(context.Background(), "2026-08-29")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].IsSettled())
	assert.True(t, *records[0].Hit)
	// 3500 per 100-yen unit on a 300 stake
	assert.InDelta(t, 10500.0, records[0].Payout.InexactFloat64(), 1e-6)

	// Bankroll reflects the win: 100000 - 300 + 10500
	assert.InDelta(t, 110200.0, eng.State().Bankroll, 1e-9)
}

func TestSettleDaySkipsMissingResults(t *testing.T) {
	store, err := betlog.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	eng := newTestEngine(store)

	cards := new(MockRaceCardSource)
	cards.On("FetchRaceCards", mock.Anything, mock.Anything).Return([]datasource.RaceCardData{buyableCardData()}, nil)

	svc := NewDailyRunService(cards, new(MockOddsSource), eng, store, nil)
	date, _ := time.Parse("2006-01-02", "2026-08-29")
	require.NoError(t, svc.RunForDate(context.Background(), date))

	settled, err := svc.SettleDay(context.Background(), "2026-08-29", map[string]RaceResult{})
	require.NoError(t, err)
	assert.Equal(t, 0, settled)

	records, err := store.LoadDay(context.Background(), "2026-08-29")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsSettled())
}

func TestSettleDayMiss(t *testing.T) {
	store, err := betlog.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	eng := newTestEngine(store)

	cards := new(MockRaceCardSource)
	cards.On("FetchRaceCards", mock.Anything, mock.Anything).Return([]datasource.RaceCardData{buyableCardData()}, nil)

	svc := NewDailyRunService(cards, new(MockOddsSource), eng, store, nil)
	date, _ := time.Parse("2006-01-02", "2026-08-29")
	require.NoError(t, svc.RunForDate(context.Background(), date))

	results := map[string]RaceResult{
		"20260829-12-05": {
			RaceID:          "20260829-12-05",
			WinningTrifecta: "1-2-3",
			Payouts:         map[string]float64{"1-2-3": 900},
		},
	}

	settled, err := svc.SettleDay(context.Background(), "2026-08-29", results)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	records, err := store.LoadDay(context.Background(), "2026-08-29")
	require.NoError(t, err)
	require.True(t, records[0].IsSettled())
	assert.False(t, *records[0].Hit)
	assert.InDelta(t, 99700.0, eng.State().Bankroll, 1e-9)
	assert.Equal(t, 1, eng.State().LossStreak)
}
