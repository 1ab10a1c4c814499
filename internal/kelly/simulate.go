package kelly

// SettledBet is one resolved wager in a growth simulation
type SettledBet struct {
	Stake  float64 `json:"stake"`
	Payout float64 `json:"payout"` // gross return, 0 on a miss
	Hit    bool    `json:"hit"`
}

// GrowthReport summarizes a simulated bankroll trajectory
type GrowthReport struct {
	InitialBankroll float64 `json:"initial_bankroll"`
	FinalBankroll   float64 `json:"final_bankroll"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	HitRate         float64 `json:"hit_rate"`
	ROI             float64 `json:"roi"`
	BetCount        int     `json:"bet_count"`
}

// SimulateGrowth folds a sequence of settled bets into a growth report.
// Pure function: no state beyond the explicit accumulator.
func SimulateGrowth(initialBankroll float64, bets []SettledBet) GrowthReport {
	report := GrowthReport{
		InitialBankroll: initialBankroll,
		FinalBankroll:   initialBankroll,
		BetCount:        len(bets),
	}
	if len(bets) == 0 {
		return report
	}

	bankroll := initialBankroll
	peak := initialBankroll
	hits := 0
	totalStaked := 0.0
	totalReturned := 0.0

	for _, bet := range bets {
		bankroll += bet.Payout - bet.Stake
		totalStaked += bet.Stake
		totalReturned += bet.Payout
		if bet.Hit {
			hits++
		}
		if bankroll > peak {
			peak = bankroll
		}
		if peak > 0 {
			drawdown := (peak - bankroll) / peak
			if drawdown > report.MaxDrawdown {
				report.MaxDrawdown = drawdown
			}
		}
	}

	report.FinalBankroll = bankroll
	report.HitRate = float64(hits) / float64(len(bets))
	if totalStaked > 0 {
		report.ROI = (totalReturned - totalStaked) / totalStaked
	}
	return report
}
