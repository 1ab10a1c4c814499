package models

// OddsTable maps a combination key ("a-b" or "a-b-c") to decimal odds.
// Tables may be partial; a missing or non-positive entry means the odds
// are unavailable for that combination.
type OddsTable map[string]float64

// Lookup returns the odds for a combination key.
// Returns false when the combination is absent or its odds are non-positive.
func (t OddsTable) Lookup(key string) (float64, bool) {
	odds, ok := t[key]
	if !ok || odds <= 0 {
		return 0, false
	}
	return odds, true
}

// OddsWindow is a half-open odds range [Min, Max)
type OddsWindow struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

// Contains reports whether odds fall inside the window
func (w OddsWindow) Contains(odds float64) bool {
	return odds >= w.Min && odds < w.Max
}
