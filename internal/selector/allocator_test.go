package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/models"
)

func newTestAllocator() *Allocator {
	return NewAllocator(&config.AllocationConfig{
		BaseRatio:     0.7,
		HighEdgeRatio: 0.85,
		UpsetRatio:    0.5,
		HighEdgeMin:   0.20,
	}, 100)
}

func TestCalcAllocation(t *testing.T) {
	alloc := newTestAllocator()

	tests := []struct {
		name     string
		ctx      AllocationContext
		expected float64
	}{
		{
			name:     "Base ratio for a stable venue",
			ctx:      AllocationContext{VenueType: models.VenueTypeStable, Edge: 0.1},
			expected: 0.7,
		},
		{
			name:     "High edge skews toward trifecta",
			ctx:      AllocationContext{VenueType: models.VenueTypeStable, Edge: 0.35},
			expected: 0.85,
		},
		{
			name:     "High edge wins over volatile venue",
			ctx:      AllocationContext{VenueType: models.VenueTypeRough, Edge: 0.35},
			expected: 0.85,
		},
		{
			name:     "Sashi venue skews toward exacta",
			ctx:      AllocationContext{VenueType: models.VenueTypeSashi, Edge: 0.1},
			expected: 0.5,
		},
		{
			name:     "Rough venue skews toward exacta",
			ctx:      AllocationContext{VenueType: models.VenueTypeRough},
			expected: 0.5,
		},
		{
			name:     "Likely upset skews toward exacta",
			ctx:      AllocationContext{VenueType: models.VenueTypeStable, IsUpsetLikely: true},
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, alloc.CalcAllocation(tt.ctx))
		})
	}
}

func TestApplyAllocationPreservesTotal(t *testing.T) {
	alloc := newTestAllocator()

	tests := []struct {
		name     string
		trifecta int
		exacta   int
		ratio    float64
	}{
		{"Base split", 300, 200, 0.7},
		{"High edge split", 300, 200, 0.85},
		{"Upset split", 300, 200, 0.5},
		{"Minimal stakes", 100, 100, 0.85},
		{"Large stakes", 2000, 1000, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tri, exa := alloc.ApplyAllocation(tt.trifecta, tt.exacta, tt.ratio)
			assert.Equal(t, tt.trifecta+tt.exacta, tri+exa, "combined total must be preserved")
			assert.GreaterOrEqual(t, tri, 100, "each leg keeps at least one unit")
			assert.GreaterOrEqual(t, exa, 100, "each leg keeps at least one unit")
			assert.Zero(t, tri%100, "stakes stay on the unit grid")
			assert.Zero(t, exa%100, "stakes stay on the unit grid")
		})
	}
}

func TestApplyAllocationSingleLegUnchanged(t *testing.T) {
	alloc := newTestAllocator()

	tri, exa := alloc.ApplyAllocation(300, 0, 0.7)
	assert.Equal(t, 300, tri)
	assert.Equal(t, 0, exa)

	tri, exa = alloc.ApplyAllocation(0, 200, 0.7)
	assert.Equal(t, 0, tri)
	assert.Equal(t, 200, exa)
}
