package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Prediction holds the two ranked finish-order predictions for a race.
// Each sequence is a permutation of lane numbers ordered by predicted rank;
// at least the top three lanes must be present.
type Prediction struct {
	ConfidenceGrade ConfidenceGrade `json:"confidence_grade" validate:"required"`
	Baseline        []int           `json:"baseline" validate:"required,min=3,max=6"`
	Alternate       []int           `json:"alternate" validate:"required,min=3,max=6"`
}

// Ranked returns the ranked sequence for the given method
func (p *Prediction) Ranked(method Method) []int {
	if method == MethodAlternate {
		return p.Alternate
	}
	return p.Baseline
}

// Combination renders the top-N lanes of a method's ranking as an odds key.
// Returns false when the ranking has fewer than n lanes.
func (p *Prediction) Combination(method Method, betType BetType) (string, bool) {
	ranked := p.Ranked(method)
	n := betType.Legs()
	if len(ranked) < n {
		return "", false
	}
	return CombinationKey(ranked[:n]...), true
}

// CombinationKey renders lane numbers as an odds-table key ("1-2-3", "1-2")
func CombinationKey(lanes ...int) string {
	parts := make([]string, len(lanes))
	for i, lane := range lanes {
		parts[i] = strconv.Itoa(lane)
	}
	return strings.Join(parts, "-")
}

// Validate checks the prediction sequences are plausible lane permutations
func (p *Prediction) Validate() error {
	for _, ranked := range [][]int{p.Baseline, p.Alternate} {
		seen := make(map[int]bool, len(ranked))
		for _, lane := range ranked {
			if lane < 1 || lane > 6 {
				return fmt.Errorf("%w: lane %d", ErrInvalidPrediction, lane)
			}
			if seen[lane] {
				return fmt.Errorf("%w: duplicate lane %d", ErrInvalidPrediction, lane)
			}
			seen[lane] = true
		}
	}
	return nil
}
