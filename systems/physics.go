// Package systems contains the particle simulation and field math.
package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/ferrofluid/config"
)

// BoundaryPolicy selects how particles are kept inside the scene.
// The two policies are not interchangeable: soft edges allow overshoot,
// clamping bounces.
type BoundaryPolicy uint8

const (
	// BoundarySoft pushes velocity back in proportion to penetration depth.
	BoundarySoft BoundaryPolicy = iota
	// BoundaryClamp clamps position and reflects the offending velocity.
	BoundaryClamp
)

// ParseBoundaryPolicy maps a config name to a BoundaryPolicy.
func ParseBoundaryPolicy(name string) (BoundaryPolicy, error) {
	switch name {
	case config.BoundarySoft:
		return BoundarySoft, nil
	case config.BoundaryClamp:
		return BoundaryClamp, nil
	}
	return 0, fmt.Errorf("unknown boundary policy %q", name)
}

// Bounds is the region a particle may occupy.
type Bounds struct {
	Width  float64
	FloorY float64
}

// Forces is an acceleration accumulated for one integration step.
type Forces struct {
	X, Y float64
}

// Add returns the sum of two forces.
func (f Forces) Add(o Forces) Forces {
	return Forces{X: f.X + o.X, Y: f.Y + o.Y}
}

// PhysicsParams holds the integrator constants for one variant.
type PhysicsParams struct {
	Gravity    float64
	MassScaled bool
	Damping    float64
	DT         float64

	PointerForce float64
	PointerRange float64 // simulation pixels

	Boundary  BoundaryPolicy
	EdgeForce float64
	Bounce    float64

	RandomScroll bool // scroll impulse along a random angle instead of vertical
}

// NewPhysicsParams builds integrator constants from config at a layout scale.
func NewPhysicsParams(cfg *config.Config, scale float64) (PhysicsParams, error) {
	policy, err := ParseBoundaryPolicy(cfg.Boundary.Policy)
	if err != nil {
		return PhysicsParams{}, err
	}
	return PhysicsParams{
		Gravity:      cfg.Physics.Gravity,
		MassScaled:   cfg.Physics.MassScaled,
		Damping:      cfg.Physics.Damping,
		DT:           cfg.Physics.DT,
		PointerForce: cfg.Pointer.Force,
		PointerRange: cfg.Pointer.Range * scale,
		Boundary:     policy,
		EdgeForce:    cfg.Boundary.EdgeForce,
		Bounce:       cfg.Boundary.Bounce,
		RandomScroll: cfg.Scroll.Direction == config.DirectionRandom,
	}, nil
}

// GravityForce returns the downward pull on a particle.
func GravityForce(p *Particle, params *PhysicsParams) Forces {
	if params.MassScaled {
		return Forces{Y: params.Gravity * p.Mass}
	}
	return Forces{Y: params.Gravity}
}

// PointerAttraction pulls a particle toward an active pointer within range.
// Falloff is linear: (R - d) / R.
func PointerAttraction(p *Particle, ptr Pointer, params *PhysicsParams) Forces {
	r := params.PointerRange
	if !ptr.Active || r <= 0 {
		return Forces{}
	}
	dx := ptr.X - p.X
	dy := ptr.Y - p.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist >= r {
		return Forces{}
	}
	force := (r - dist) / r * params.PointerForce
	return Forces{X: dx * force, Y: dy * force}
}

// ApplyBoundary keeps a particle inside bounds using the configured policy.
func ApplyBoundary(p *Particle, b Bounds, params *PhysicsParams) {
	switch params.Boundary {
	case BoundarySoft:
		applySoftBoundary(p, b, params.EdgeForce)
	case BoundaryClamp:
		applyClampBoundary(p, b, params.Bounce)
	}
}

// applySoftBoundary pushes velocity back from the side and top edges in
// proportion to penetration, and rests the particle on the floor.
func applySoftBoundary(p *Particle, b Bounds, edgeForce float64) {
	if p.X < 0 {
		p.VX += -p.X * edgeForce
	}
	if p.X > b.Width {
		p.VX -= (p.X - b.Width) * edgeForce
	}
	if p.Y < 0 {
		p.VY += -p.Y * edgeForce
	}
	if p.Y+p.Radius > b.FloorY {
		p.Y = b.FloorY - p.Radius
		p.VY = 0
	}
}

// applyClampBoundary clamps the particle's extent to the scene and reflects
// the offending velocity component by -bounce.
func applyClampBoundary(p *Particle, b Bounds, bounce float64) {
	if p.X-p.Radius < 0 {
		p.X = p.Radius
		if p.VX < 0 {
			p.VX *= -bounce
		}
	}
	if p.X+p.Radius > b.Width {
		p.X = b.Width - p.Radius
		if p.VX > 0 {
			p.VX *= -bounce
		}
	}
	if p.Y-p.Radius < 0 {
		p.Y = p.Radius
		if p.VY < 0 {
			p.VY *= -bounce
		}
	}
	if p.Y+p.Radius > b.FloorY {
		p.Y = b.FloorY - p.Radius
		if p.VY > 0 {
			p.VY *= -bounce
		}
	}
}

// ScrollForce converts the frame's scroll impulse into a force on a particle.
// rng is only used for random-angle coupling.
func ScrollForce(impulse float64, params *PhysicsParams, rng *rand.Rand) Forces {
	if impulse == 0 {
		return Forces{}
	}
	if !params.RandomScroll || rng == nil {
		return Forces{Y: impulse}
	}
	angle := rng.Float64() * 2 * math.Pi
	return Forces{X: math.Cos(angle) * impulse, Y: math.Sin(angle) * impulse}
}

// Integrate advances a particle by dt frames under f, then damps velocity.
// Pinned particles are left untouched.
func Integrate(p *Particle, f Forces, damping, dt float64) {
	if p.Pinned {
		return
	}
	p.VX += f.X * dt
	p.VY += f.Y * dt
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.VX *= damping
	p.VY *= damping
}

// Step runs one frame of the force pipeline on a particle: gravity, pointer
// attraction, boundary handling, scroll coupling, then integration.
func Step(p *Particle, ptr Pointer, b Bounds, scroll Forces, params *PhysicsParams) {
	if p.Pinned {
		return
	}
	dt := params.DT

	pull := GravityForce(p, params).Add(PointerAttraction(p, ptr, params))
	p.VX += pull.X * dt
	p.VY += pull.Y * dt

	ApplyBoundary(p, b, params)

	Integrate(p, scroll, params.Damping, dt)
}
