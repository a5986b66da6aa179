// Package renderer draws the metaball field for a particle set.
package renderer

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/systems"
)

// ErrShaderUnavailable is returned when the metaball shader cannot be
// compiled on this device. There is no fallback backend.
var ErrShaderUnavailable = errors.New("metaball shader unavailable")

// Backend draws one frame of particles to the window.
type Backend interface {
	// Resize adapts the backend to a new layout.
	Resize(layout systems.Layout) error
	// Draw renders the particles. Must be called between BeginDrawing and EndDrawing.
	Draw(particles []systems.Particle)
	// Unload frees GPU resources.
	Unload()
}

// CoverageReporter is implemented by backends that know how much of the
// last frame was inside the isosurface.
type CoverageReporter interface {
	Coverage() float64
}

// NewBackend creates the backend named by render.backend.
// Requires an open raylib window.
func NewBackend(cfg *config.Config) (Backend, error) {
	switch cfg.Render.Backend {
	case config.BackendCPU:
		return NewCPUMetaball(cfg)
	case config.BackendGPU:
		return NewGPUMetaball(cfg)
	}
	return nil, fmt.Errorf("unknown render backend %q", cfg.Render.Backend)
}
