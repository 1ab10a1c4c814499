package models

// RaceEntry represents a single lane entry in a race card
type RaceEntry struct {
	LaneNumber int        `db:"lane_number" json:"lane_number" validate:"required,min=1,max=6"`
	RacerClass RacerClass `db:"racer_class" json:"racer_class" validate:"required,oneof=A1 A2 B1 B2"`
}

// RaceContext carries the per-race inputs the decision pipeline evaluates.
// It is constructed by upstream collaborators and treated as immutable.
type RaceContext struct {
	RaceID          string          `json:"race_id" validate:"required"`
	VenueCode       int             `json:"venue_code" validate:"required,min=1,max=24"`
	ConfidenceGrade ConfidenceGrade `json:"confidence_grade" validate:"required"`
	Entries         []RaceEntry     `json:"entries" validate:"required,min=1,dive"`
	WindForecast    *float64        `json:"wind_forecast,omitempty"`
	WindActual      *float64        `json:"wind_actual,omitempty"`
	EntryConfidence *float64        `json:"entry_confidence,omitempty"`
	Edge            *float64        `json:"edge,omitempty"`
}

// FavoriteLaneClass returns the racer class of the innermost lane.
// Returns false when the race card has no lane-1 entry.
func (r *RaceContext) FavoriteLaneClass() (RacerClass, bool) {
	for _, entry := range r.Entries {
		if entry.LaneNumber == 1 {
			return entry.RacerClass, true
		}
	}
	return "", false
}

// VenueType returns the volatility classification of the race's venue
func (r *RaceContext) VenueType() VenueType {
	return VenueTypeOf(r.VenueCode)
}

// WindGap returns the absolute forecast-vs-actual wind difference.
// Returns false when either value is absent.
func (r *RaceContext) WindGap() (float64, bool) {
	if r.WindForecast == nil || r.WindActual == nil {
		return 0, false
	}
	gap := *r.WindActual - *r.WindForecast
	if gap < 0 {
		gap = -gap
	}
	return gap, true
}
