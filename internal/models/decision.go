package models

// LogicVersion identifies the decision-logic revision stamped onto every
// decision and record, so historical rows remain comparable after changes.
const LogicVersion = "v2.3"

// BetDecision is the outcome of evaluating one bet type for one race.
// A decision is produced even when no bet is placed; Reason documents why.
type BetDecision struct {
	ShouldBuy       bool            `json:"should_buy"`
	BetType         BetType         `json:"bet_type"`
	Combination     string          `json:"combination,omitempty"`
	Odds            float64         `json:"odds,omitempty"`
	StakeAmount     int             `json:"stake_amount"`
	EV              float64         `json:"ev"`
	Edge            float64         `json:"edge"`
	ConfidenceGrade ConfidenceGrade `json:"confidence_grade"`
	Method          Method          `json:"method,omitempty"`
	Reason          string          `json:"reason"`
	LogicVersion    string          `json:"logic_version"`
}

// NoBuy constructs a non-buy decision carrying a reason
func NoBuy(betType BetType, grade ConfidenceGrade, reason string) *BetDecision {
	return &BetDecision{
		BetType:         betType,
		ConfidenceGrade: grade,
		Reason:          reason,
		LogicVersion:    LogicVersion,
	}
}

// RaceBetPlan aggregates the per-bet-type decisions for one race.
// TotalStake always equals the sum of stakes of decisions actually bought.
type RaceBetPlan struct {
	RaceID          string       `json:"race_id"`
	Trifecta        *BetDecision `json:"trifecta,omitempty"`
	Exacta          *BetDecision `json:"exacta,omitempty"`
	TotalStake      int          `json:"total_stake"`
	AllocationRatio float64      `json:"allocation_ratio"`
}

// BoughtDecisions returns the decisions with ShouldBuy set, in bet-type order
func (p *RaceBetPlan) BoughtDecisions() []*BetDecision {
	var bought []*BetDecision
	if p.Trifecta != nil && p.Trifecta.ShouldBuy {
		bought = append(bought, p.Trifecta)
	}
	if p.Exacta != nil && p.Exacta.ShouldBuy {
		bought = append(bought, p.Exacta)
	}
	return bought
}

// RecalcTotal recomputes TotalStake from the bought decisions
func (p *RaceBetPlan) RecalcTotal() {
	total := 0
	for _, d := range p.BoughtDecisions() {
		total += d.StakeAmount
	}
	p.TotalStake = total
}
