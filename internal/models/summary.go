package models

import "fmt"

// DailyBetSummary aggregates one batch run. Derived, read-only once produced.
type DailyBetSummary struct {
	Date           string   `json:"date"`
	RacesEvaluated int      `json:"races_evaluated"`
	TargetRaces    int      `json:"target_races"`
	BetsPlaced     int      `json:"bets_placed"`
	TrifectaBets   int      `json:"trifecta_bets"`
	ExactaBets     int      `json:"exacta_bets"`
	TotalStake     int      `json:"total_stake"`
	AvgEV          float64  `json:"avg_ev"`
	AvgEdge        float64  `json:"avg_edge"`
	Warnings       []string `json:"warnings,omitempty"`
}

// String renders a one-line log summary
func (s *DailyBetSummary) String() string {
	return fmt.Sprintf("date=%s races=%d targets=%d bets=%d (tri=%d exa=%d) stake=%d avg_ev=%.3f avg_edge=%.3f warnings=%d",
		s.Date, s.RacesEvaluated, s.TargetRaces, s.BetsPlaced, s.TrifectaBets, s.ExactaBets,
		s.TotalStake, s.AvgEV, s.AvgEdge, len(s.Warnings))
}

// EngineState is the process-wide safety state owned by one strategy engine.
// Single-writer: mutated only through the owning engine.
type EngineState struct {
	Bankroll      float64 `json:"bankroll"`
	LossStreak    int     `json:"loss_streak"`
	DailyBetCount int     `json:"daily_bet_count"`
}
