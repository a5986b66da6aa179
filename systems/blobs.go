package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ferrofluid/components"
	"github.com/pthm-cable/ferrofluid/config"
)

// Simulator owns the particle set of one session and advances it per frame.
type Simulator struct {
	cfg    *config.Config
	rng    *rand.Rand
	params PhysicsParams
	layout Layout
	scroll *ScrollTracker

	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Body]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Body]

	freeCount   int
	pinnedCount int
	frame       int64
	lastImpulse float64
}

// NewSimulator creates a simulator. Call Init before Update.
func NewSimulator(cfg *config.Config, rng *rand.Rand) (*Simulator, error) {
	scroll, err := NewScrollTracker(cfg.Scroll, cfg.Screen.TargetFPS)
	if err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:    cfg,
		rng:    rng,
		scroll: scroll,
	}
	s.reset(Layout{Scale: cfg.Render.Scale})
	return s, nil
}

// reset discards every particle and adopts a new layout.
func (s *Simulator) reset(layout Layout) {
	s.layout = layout
	s.world = ecs.NewWorld()
	s.mapper = ecs.NewMap3[components.Position, components.Velocity, components.Body](s.world)
	s.filter = ecs.NewFilter3[components.Position, components.Velocity, components.Body](s.world)
	s.freeCount = 0
	s.pinnedCount = 0
}

// Init rebuilds the particle set wholesale for a layout: the tier's free
// particles scattered above the floor, plus an evenly spaced pinned row on
// the floor line.
func (s *Simulator) Init(layout Layout) error {
	params, err := NewPhysicsParams(s.cfg, layout.Scale)
	if err != nil {
		return err
	}
	s.params = params
	s.reset(layout)

	tier := layout.Tier
	margin := s.cfg.Floor.SpawnMargin
	for i := 0; i < tier.Count; i++ {
		r := s.random(tier.MinRadius, tier.MaxRadius) * layout.Scale
		x := s.random(r, layout.Width-r)
		y := s.random(r, layout.FloorY-r-margin)
		s.Spawn(Particle{X: x, Y: y, Radius: r})
	}

	for i := 0; i < layout.PinnedRowSize(); i++ {
		s.Spawn(Particle{
			X:      layout.PinX(i),
			Y:      layout.FloorY,
			Radius: layout.PinRadius,
			Pinned: true,
		})
	}
	return nil
}

// random returns a uniform value in [lo, hi); an inverted range yields lo.
func (s *Simulator) random(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return s.rng.Float64()*(hi-lo) + lo
}

// Spawn adds a particle. Mass is derived from the radius.
func (s *Simulator) Spawn(p Particle) ecs.Entity {
	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{X: p.VX, Y: p.VY}
	body := components.Body{
		Radius: p.Radius,
		Mass:   p.Radius * s.cfg.Physics.MassFactor,
		Pinned: p.Pinned,
	}
	if p.Pinned {
		s.pinnedCount++
	} else {
		s.freeCount++
	}
	return s.mapper.NewEntity(&pos, &vel, &body)
}

// PrimeScroll sets the scroll reference offset without an impulse.
func (s *Simulator) PrimeScroll(y float64) {
	s.scroll.Reset(y)
}

// Update advances every free particle by one frame.
func (s *Simulator) Update(in *InputState) {
	if in.Scrolled {
		s.scroll.OnScroll(in.ScrollY)
		in.Scrolled = false
	}
	impulse := s.scroll.Step()
	s.lastImpulse = impulse

	bounds := Bounds{Width: s.layout.Width, FloorY: s.layout.FloorY}
	ptr := in.Pointer

	query := s.filter.Query()
	for query.Next() {
		pos, vel, body := query.Get()
		if body.Pinned {
			continue
		}

		p := Particle{
			X: pos.X, Y: pos.Y,
			VX: vel.X, VY: vel.Y,
			Radius: body.Radius,
			Mass:   body.Mass,
		}
		Step(&p, ptr, bounds, ScrollForce(impulse, &s.params, s.rng), &s.params)

		pos.X, pos.Y = p.X, p.Y
		vel.X, vel.Y = p.VX, p.VY
	}
	s.frame++
}

// Particles appends a snapshot of every particle to dst and returns it.
func (s *Simulator) Particles(dst []Particle) []Particle {
	dst = dst[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, vel, body := query.Get()
		dst = append(dst, Particle{
			X: pos.X, Y: pos.Y,
			VX: vel.X, VY: vel.Y,
			Radius: body.Radius,
			Mass:   body.Mass,
			Pinned: body.Pinned,
		})
	}
	return dst
}

// Layout returns the current layout.
func (s *Simulator) Layout() Layout {
	return s.layout
}

// Params returns the integrator constants in use.
func (s *Simulator) Params() PhysicsParams {
	return s.params
}

// SetParams replaces the integrator constants without rebuilding.
func (s *Simulator) SetParams(p PhysicsParams) {
	s.params = p
}

// SetScrollMultiplier changes how strongly scroll impulses push particles.
func (s *Simulator) SetScrollMultiplier(m float64) {
	s.scroll.SetMultiplier(m)
}

// Count returns the total number of particles.
func (s *Simulator) Count() int {
	return s.freeCount + s.pinnedCount
}

// FreeCount returns the number of particles that integrate.
func (s *Simulator) FreeCount() int {
	return s.freeCount
}

// PinnedCount returns the number of pinned floor particles.
func (s *Simulator) PinnedCount() int {
	return s.pinnedCount
}

// Frame returns the number of updates since creation.
func (s *Simulator) Frame() int64 {
	return s.frame
}

// ScrollImpulse returns the forcing term applied on the last update.
func (s *Simulator) ScrollImpulse() float64 {
	return s.lastImpulse
}

// ScrollVelocity returns the tracker's stored scroll velocity.
func (s *Simulator) ScrollVelocity() float64 {
	return s.scroll.Velocity()
}
