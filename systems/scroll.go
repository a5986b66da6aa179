package systems

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/pthm-cable/ferrofluid/config"
)

// ScrollMode selects how the raw scroll velocity becomes a forcing term.
type ScrollMode uint8

const (
	// ScrollRaw applies the damped velocity directly.
	ScrollRaw ScrollMode = iota
	// ScrollEased compresses the damped velocity with sign(v)*min(cap, sqrt|v|).
	ScrollEased
	// ScrollSpring eases a spring toward the damped velocity, then compresses it.
	ScrollSpring
)

// ParseScrollMode maps a config name to a ScrollMode.
func ParseScrollMode(name string) (ScrollMode, error) {
	switch name {
	case config.ScrollRaw:
		return ScrollRaw, nil
	case config.ScrollEased:
		return ScrollEased, nil
	case config.ScrollSpring:
		return ScrollSpring, nil
	}
	return 0, fmt.Errorf("unknown scroll mode %q", name)
}

// ScrollTracker turns scroll offsets into a decaying impulse.
// It is a single-pole IIR filter: it spikes on each event and decays
// geometrically every frame afterwards.
type ScrollTracker struct {
	mode       ScrollMode
	damping    float64
	maxForce   float64
	multiplier float64
	invert     bool

	lastY    float64
	velocity float64
	primed   bool

	spring    harmonica.Spring
	springPos float64
	springVel float64
}

// NewScrollTracker creates a tracker from scroll config.
func NewScrollTracker(cfg config.ScrollConfig, fps int) (*ScrollTracker, error) {
	mode, err := ParseScrollMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	t := &ScrollTracker{
		mode:       mode,
		damping:    cfg.Damping,
		maxForce:   cfg.MaxForce,
		multiplier: cfg.Multiplier,
		invert:     cfg.Invert,
	}
	if mode == ScrollSpring {
		t.spring = harmonica.NewSpring(harmonica.FPS(fps), cfg.SpringFrequency, cfg.SpringDamping)
	}
	return t, nil
}

// Reset sets the reference offset without producing an impulse.
func (t *ScrollTracker) Reset(y float64) {
	t.lastY = y
	t.primed = true
	t.velocity = 0
	t.springPos = 0
	t.springVel = 0
}

// OnScroll records a scroll offset. The impulse becomes the delta from the
// previous offset. The first call only primes the reference offset.
func (t *ScrollTracker) OnScroll(y float64) {
	if !t.primed {
		t.Reset(y)
		return
	}
	t.velocity = y - t.lastY
	t.lastY = y
}

// SetMultiplier changes the scale applied to the forcing term.
func (t *ScrollTracker) SetMultiplier(m float64) {
	t.multiplier = m
}

// Velocity returns the stored scroll velocity.
func (t *ScrollTracker) Velocity() float64 {
	return t.velocity
}

// Step decays the stored velocity by one frame and returns the forcing term
// to add to particle velocity.
func (t *ScrollTracker) Step() float64 {
	t.velocity *= t.damping

	var v float64
	switch t.mode {
	case ScrollRaw:
		v = t.velocity
	case ScrollEased:
		v = Compress(t.velocity, t.maxForce)
	case ScrollSpring:
		t.springPos, t.springVel = t.spring.Update(t.springPos, t.springVel, t.velocity)
		v = Compress(t.springPos, t.maxForce)
	}

	if t.invert {
		v = -v
	}
	return v * t.multiplier
}

// Compress amplifies small values and caps large ones:
// sign(v) * min(limit, sqrt(|v|)).
func Compress(v, limit float64) float64 {
	return sign(v) * math.Min(limit, math.Sqrt(math.Abs(v)))
}
