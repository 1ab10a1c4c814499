package models

// ConfidenceGrade is the discrete quality label attached to a race prediction.
// A is the strongest grade, E the weakest.
type ConfidenceGrade string

const (
	GradeA ConfidenceGrade = "A"
	GradeB ConfidenceGrade = "B"
	GradeC ConfidenceGrade = "C"
	GradeD ConfidenceGrade = "D"
	GradeE ConfidenceGrade = "E"
)

// IsValid checks whether the grade is one of the known values
func (g ConfidenceGrade) IsValid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeE:
		return true
	default:
		return false
	}
}

// RacerClass represents the skill class of a racer (A1 highest, B2 lowest)
type RacerClass string

const (
	ClassA1 RacerClass = "A1"
	ClassA2 RacerClass = "A2"
	ClassB1 RacerClass = "B1"
	ClassB2 RacerClass = "B2"
)

// IsValid checks whether the racer class is one of the known values
func (c RacerClass) IsValid() bool {
	switch c {
	case ClassA1, ClassA2, ClassB1, ClassB2:
		return true
	default:
		return false
	}
}

// BetType represents the type of combination bet
type BetType string

const (
	BetTypeTrifecta BetType = "trifecta"
	BetTypeExacta   BetType = "exacta"
)

// Legs returns the number of lanes a combination of this type covers
func (t BetType) Legs() int {
	if t == BetTypeExacta {
		return 2
	}
	return 3
}

// Method identifies which ranked prediction a condition reads from
type Method string

const (
	MethodBaseline  Method = "baseline"
	MethodAlternate Method = "alternate"
)

// VenueType is a coarse classification of a venue's historical volatility
type VenueType string

const (
	VenueTypeStable VenueType = "stable"
	VenueTypeSashi  VenueType = "sashi"
	VenueTypeRough  VenueType = "rough"
)

// venueTypes maps venue codes (1-24) to their volatility classification.
// Venues not listed default to stable.
var venueTypes = map[int]VenueType{
	2:  VenueTypeRough, // Toda
	3:  VenueTypeRough, // Edogawa
	4:  VenueTypeSashi, // Heiwajima
	9:  VenueTypeSashi, // Tsu
	12: VenueTypeRough, // Suminoe
	15: VenueTypeSashi, // Marugame
	19: VenueTypeRough, // Shimonoseki
	22: VenueTypeSashi, // Fukuoka
}

// VenueTypeOf returns the volatility classification for a venue code
func VenueTypeOf(venueCode int) VenueType {
	if vt, ok := venueTypes[venueCode]; ok {
		return vt
	}
	return VenueTypeStable
}
