package models

// BetCondition is a single rule in a per-grade condition table.
// Tables are ordered; the first condition that survives all checks wins.
type BetCondition struct {
	ConfidenceGrade ConfidenceGrade `json:"confidence_grade"`
	Method          Method          `json:"method"`
	OddsWindow      OddsWindow      `json:"odds_window"`
	EligibleClasses []RacerClass    `json:"eligible_classes"`
	StakeAmount     int             `json:"stake_amount"`
	ExpectedROI     float64         `json:"expected_roi"` // informational, not used in EV
	Label           string          `json:"label"`
}

// ClassEligible reports whether the favorite-lane class satisfies the condition
func (c *BetCondition) ClassEligible(class RacerClass) bool {
	for _, eligible := range c.EligibleClasses {
		if eligible == class {
			return true
		}
	}
	return false
}

// EVResult carries the decision-grade numbers derived from (probability, odds)
type EVResult struct {
	EV            float64 `json:"ev"`
	Edge          float64 `json:"edge"`
	ModelProb     float64 `json:"model_prob"`
	MarketProb    float64 `json:"market_prob"`
	IsValueBet    bool    `json:"is_value_bet"`
	BreakevenOdds float64 `json:"breakeven_odds"`
}
