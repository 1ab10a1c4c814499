package selector

import (
	"math"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/models"
)

// AllocationContext carries the race attributes the allocator keys on
type AllocationContext struct {
	ConfidenceGrade models.ConfidenceGrade
	Edge            float64
	IsUpsetLikely   bool
	VenueType       models.VenueType
}

// Allocator rebalances a race's combined stake between the trifecta and
// exacta legs using a context-dependent ratio (the trifecta share).
type Allocator struct {
	cfg       *config.AllocationConfig
	stakeUnit int
}

// NewAllocator creates an allocator from configuration
func NewAllocator(cfg *config.AllocationConfig, stakeUnit int) *Allocator {
	return &Allocator{cfg: cfg, stakeUnit: stakeUnit}
}

// CalcAllocation picks the trifecta share for the race context:
// high positive edge skews toward the trifecta, volatile venues and likely
// upsets skew toward the exacta, everything else gets the base ratio.
func (a *Allocator) CalcAllocation(ctx AllocationContext) float64 {
	if ctx.Edge > a.cfg.HighEdgeMin {
		return a.cfg.HighEdgeRatio
	}
	if ctx.VenueType == models.VenueTypeSashi || ctx.VenueType == models.VenueTypeRough || ctx.IsUpsetLikely {
		return a.cfg.UpsetRatio
	}
	return a.cfg.BaseRatio
}

// ApplyAllocation redistributes the combined stake proportionally to the
// ratio. Each leg is rounded to the stake unit and floored at one unit; the
// combined total is preserved. When only one leg has a stake it is returned
// unchanged.
func (a *Allocator) ApplyAllocation(trifectaStake, exactaStake int, ratio float64) (int, int) {
	if trifectaStake <= 0 || exactaStake <= 0 {
		return trifectaStake, exactaStake
	}

	total := trifectaStake + exactaStake
	unit := a.stakeUnit

	tri := int(math.Round(float64(total)*ratio/float64(unit))) * unit
	if tri < unit {
		tri = unit
	}
	if tri > total-unit {
		tri = total - unit
	}
	return tri, total - tri
}
