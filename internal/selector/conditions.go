// Package selector turns an eligible race's predictions and odds into a
// RaceBetPlan through ordered per-grade condition tables.
package selector

import (
	"github.com/yourusername/kyotei-edge/internal/models"
)

// ConditionTable holds the ordered trifecta condition lists per confidence
// grade plus the single exacta gate condition. First match wins; list order
// is significant.
type ConditionTable struct {
	Trifecta map[models.ConfidenceGrade][]models.BetCondition
	Exacta   *models.BetCondition
}

// DefaultConditions returns the production condition tables. Stakes are in
// currency units and must be multiples of the stake unit.
func DefaultConditions() *ConditionTable {
	return &ConditionTable{
		Trifecta: map[models.ConfidenceGrade][]models.BetCondition{
			models.GradeC: {
				{
					ConfidenceGrade: models.GradeC,
					Method:          models.MethodBaseline,
					OddsWindow:      models.OddsWindow{Min: 10, Max: 30},
					EligibleClasses: []models.RacerClass{models.ClassA1, models.ClassA2},
					StakeAmount:     400,
					ExpectedROI:     1.18,
					Label:           "C-grade inner favorite, baseline order",
				},
				{
					ConfidenceGrade: models.GradeC,
					Method:          models.MethodAlternate,
					OddsWindow:      models.OddsWindow{Min: 30, Max: 60},
					EligibleClasses: []models.RacerClass{models.ClassA1},
					StakeAmount:     200,
					ExpectedROI:     1.32,
					Label:           "C-grade mid odds, alternate order",
				},
			},
			models.GradeD: {
				{
					ConfidenceGrade: models.GradeD,
					Method:          models.MethodBaseline,
					OddsWindow:      models.OddsWindow{Min: 25, Max: 50},
					EligibleClasses: []models.RacerClass{models.ClassA1},
					StakeAmount:     300,
					ExpectedROI:     1.41,
					Label:           "D-grade A1 favorite, baseline order",
				},
				{
					ConfidenceGrade: models.GradeD,
					Method:          models.MethodAlternate,
					OddsWindow:      models.OddsWindow{Min: 50, Max: 80},
					EligibleClasses: []models.RacerClass{models.ClassA1, models.ClassA2},
					StakeAmount:     200,
					ExpectedROI:     1.28,
					Label:           "D-grade high odds, alternate order",
				},
			},
			models.GradeE: {
				{
					ConfidenceGrade: models.GradeE,
					Method:          models.MethodAlternate,
					OddsWindow:      models.OddsWindow{Min: 40, Max: 100},
					EligibleClasses: []models.RacerClass{models.ClassA1},
					StakeAmount:     100,
					ExpectedROI:     1.15,
					Label:           "E-grade longshot, alternate order",
				},
			},
		},
		Exacta: &models.BetCondition{
			ConfidenceGrade: models.GradeD,
			Method:          models.MethodBaseline,
			OddsWindow:      models.OddsWindow{Min: 3, Max: 30},
			EligibleClasses: []models.RacerClass{models.ClassA1},
			StakeAmount:     200,
			ExpectedROI:     1.22,
			Label:           "D-grade A1 favorite exacta",
		},
	}
}

// TrifectaFor returns the ordered trifecta conditions for a grade
func (t *ConditionTable) TrifectaFor(grade models.ConfidenceGrade) []models.BetCondition {
	return t.Trifecta[grade]
}
