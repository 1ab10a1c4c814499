// Package metrics provides the centralized Prometheus metrics registry for
// the betting-decision pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyotei_edge",
		Name:      "races_evaluated_total",
		Help:      "Total number of races run through the decision pipeline",
	})
	RacesExcludedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyotei_edge",
		Name:      "races_excluded_total",
		Help:      "Total number of races excluded, labelled by filter rule",
	}, []string{"rule"})
	BetsPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyotei_edge",
		Name:      "bets_placed_total",
		Help:      "Total number of bets placed, labelled by bet type",
	}, []string{"bet_type"})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kyotei_edge",
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled, labelled by outcome",
	}, []string{"outcome"})
	StakeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyotei_edge",
		Name:      "stake_total",
		Help:      "Cumulative stake placed in currency units",
	})
	SafetyStopsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kyotei_edge",
		Name:      "safety_stops_total",
		Help:      "Total number of batches skipped by the safety-stop gate",
	})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kyotei_edge",
		Name:      "current_bankroll",
		Help:      "Current bankroll in currency units",
	})
	LossStreak = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kyotei_edge",
		Name:      "loss_streak",
		Help:      "Current consecutive-loss count",
	})
	DailyBetCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "kyotei_edge",
		Name:      "daily_bet_count",
		Help:      "Bets placed since the last daily reset",
	})
)

// Histogram metrics
var (
	BetEV = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kyotei_edge",
		Name:      "bet_ev",
		Help:      "Expected value of placed bets",
		Buckets:   []float64{0.5, 0.8, 1.0, 1.2, 1.5, 2.0, 3.0, 5.0},
	})
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kyotei_edge",
		Name:      "batch_duration_seconds",
		Help:      "Duration of daily batch runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RacesEvaluatedTotal)
		registry.MustRegister(RacesExcludedTotal)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(StakeTotal)
		registry.MustRegister(SafetyStopsTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(LossStreak)
		registry.MustRegister(DailyBetCount)

		registry.MustRegister(BetEV)
		registry.MustRegister(BatchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
