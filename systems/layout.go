package systems

import (
	"math"

	"github.com/pthm-cable/ferrofluid/config"
)

// Layout holds the viewport-derived geometry of one session.
// A structural change (any size change) rebuilds the particle set.
type Layout struct {
	ViewWidth, ViewHeight int     // viewport pixels
	Scale                 float64 // simulation pixels per viewport pixel
	Width, Height         float64 // simulation pixels
	Mobile                bool

	FloorY     float64 // simulation y of the floor line
	PinSpacing float64 // simulation pixels
	PinRadius  float64
	PinCount   int // spacing intervals across the width; PinCount+1 pins are placed

	Tier config.TierConfig
}

// NewLayout derives the layout for a viewport size.
func NewLayout(cfg *config.Config, viewW, viewH int) Layout {
	scale := cfg.Render.Scale
	mobile := cfg.IsMobile(viewW)
	tier := cfg.Tier(viewW)

	width := math.Floor(float64(viewW) * scale)
	height := math.Floor(float64(viewH) * scale)
	spacing := cfg.Floor.PinSpacing * scale

	return Layout{
		ViewWidth:  viewW,
		ViewHeight: viewH,
		Scale:      scale,
		Width:      width,
		Height:     height,
		Mobile:     mobile,
		FloorY:     height * tier.FloorFraction,
		PinSpacing: spacing,
		PinRadius:  cfg.Floor.PinRadius * scale,
		PinCount:   int(math.Floor(width / spacing)),
		Tier:       tier,
	}
}

// Structural reports whether switching from l to next requires a rebuild.
func (l Layout) Structural(next Layout) bool {
	return l.ViewWidth != next.ViewWidth || l.ViewHeight != next.ViewHeight || l.Scale != next.Scale
}

// PinnedRowSize returns the number of pinned particles on the floor line.
func (l Layout) PinnedRowSize() int {
	return l.PinCount + 1
}

// PinX returns the x position of pinned particle i.
func (l Layout) PinX(i int) float64 {
	if l.PinCount == 0 {
		return 0
	}
	return float64(i) / float64(l.PinCount) * l.Width
}

// ToSim converts viewport coordinates to simulation coordinates.
func (l Layout) ToSim(x, y float64) (float64, float64) {
	return x * l.Scale, y * l.Scale
}

// FloorRow returns the first raster row at or below the floor line.
func (l Layout) FloorRow() int {
	return int(math.Ceil(l.FloorY))
}
