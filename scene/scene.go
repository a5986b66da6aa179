// Package scene runs one animation session independently of any window
// system: it owns the simulator, the side inputs, an optional CPU raster
// and the per-frame telemetry. Frontends feed input and present frames.
package scene

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/raster"
	"github.com/pthm-cable/ferrofluid/systems"
	"github.com/pthm-cable/ferrofluid/telemetry"
)

// Options configures a session.
type Options struct {
	Seed      int64
	LogStats  bool
	OutputDir string
	// Raster keeps a CPU raster for frontends that present an image.
	Raster bool
}

// CoverageReporter reports the inside fraction of the last rendered frame.
type CoverageReporter interface {
	Coverage() float64
}

// Scene is one animation session.
type Scene struct {
	cfg    *config.Config
	sim    *systems.Simulator
	input  systems.InputState
	layout systems.Layout
	built  bool

	particles []systems.Particle
	raster    *raster.Raster
	coverage  CoverageReporter

	perf     *telemetry.PerfCollector
	output   *telemetry.OutputManager
	logStats bool
}

// New creates a session. Call Resize with the viewport size before Step.
func New(cfg *config.Config, opts Options) (*Scene, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	sim, err := systems.NewSimulator(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("creating simulator: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s := &Scene{
		cfg:      cfg,
		sim:      sim,
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:   output,
		logStats: opts.LogStats,
	}
	s.input.LeavePointer()

	if opts.Raster {
		r, err := raster.New(cfg)
		if err != nil {
			output.Close()
			return nil, err
		}
		s.raster = r
		s.coverage = r
	}
	return s, nil
}

// Resize adopts a viewport size. Any size change rebuilds the particle set
// wholesale; it reports whether a rebuild happened.
func (s *Scene) Resize(viewW, viewH int) (bool, error) {
	next := systems.NewLayout(s.cfg, viewW, viewH)
	if s.built && !s.layout.Structural(next) {
		return false, nil
	}

	// The viewport is only committed once the rebuild succeeds, so a
	// failed size is retried on the next call.
	if err := s.sim.Init(next); err != nil {
		return false, fmt.Errorf("rebuilding particles: %w", err)
	}
	s.input.Resize(viewW, viewH)
	s.layout = next
	s.built = true
	if s.raster != nil {
		s.raster.Resize(next)
	}
	s.particles = s.sim.Particles(s.particles)

	slog.Info("layout rebuilt",
		"view_width", viewW,
		"view_height", viewH,
		"mobile", next.Mobile,
		"free", s.sim.FreeCount(),
		"pinned", s.sim.PinnedCount(),
		"floor_y", next.FloorY,
	)
	return true, nil
}

// PrimeScroll records the initial scroll offset without an impulse.
func (s *Scene) PrimeScroll(y float64) {
	s.input.ScrollY = y
	s.input.Scrolled = false
	s.sim.PrimeScroll(y)
}

// SetCoverageSource sets where frame stats read coverage from.
func (s *Scene) SetCoverageSource(c CoverageReporter) {
	s.coverage = c
}

// BeginFrame starts timing a frame; input handling follows.
func (s *Scene) BeginFrame() {
	s.perf.StartFrame()
	s.perf.StartPhase(telemetry.PhaseInput)
}

// Phase marks the start of a named frame phase.
func (s *Scene) Phase(name string) {
	s.perf.StartPhase(name)
}

// Step advances the simulation by one frame.
func (s *Scene) Step() {
	s.perf.StartPhase(telemetry.PhaseSimulate)
	s.sim.Update(&s.input)
	s.particles = s.sim.Particles(s.particles)
}

// Render rasterizes the current particles. Returns nil without a raster.
func (s *Scene) Render() *image.RGBA {
	s.perf.StartPhase(telemetry.PhaseRender)
	if s.raster == nil {
		return nil
	}
	return s.raster.Render(s.particles)
}

// EndFrame finishes timing and emits periodic stats.
func (s *Scene) EndFrame() {
	s.perf.EndFrame()
	s.perf.RecordPresent()

	interval := int64(s.cfg.Telemetry.LogInterval)
	if interval <= 0 || s.sim.Frame() == 0 || s.sim.Frame()%interval != 0 {
		return
	}
	s.flushStats()
}

// flushStats logs and records the current frame and perf stats.
func (s *Scene) flushStats() {
	frame := s.Stats()
	perf := s.perf.Stats()

	if s.logStats {
		slog.Info("frame", "stats", frame, "perf", perf)
	}
	if err := s.output.WriteFrame(frame); err != nil {
		slog.Warn("failed to write frame stats", "error", err)
	}
	if err := s.output.WritePerf(perf, frame.Frame); err != nil {
		slog.Warn("failed to write perf stats", "error", err)
	}
}

// Stats summarizes the current frame.
func (s *Scene) Stats() telemetry.FrameStats {
	coverage := -1.0
	if s.coverage != nil {
		coverage = s.coverage.Coverage()
	}
	return telemetry.ComputeFrameStats(telemetry.FrameInput{
		Frame:          s.sim.Frame(),
		FPS:            s.cfg.Screen.TargetFPS,
		Particles:      s.particles,
		FloorY:         s.layout.FloorY,
		Coverage:       coverage,
		ScrollImpulse:  s.sim.ScrollImpulse(),
		ScrollVelocity: s.sim.ScrollVelocity(),
	})
}

// Input returns the side inputs written by the frontend between frames.
func (s *Scene) Input() *systems.InputState {
	return &s.input
}

// Layout returns the current layout.
func (s *Scene) Layout() systems.Layout {
	return s.layout
}

// Particles returns the snapshot taken after the last step or rebuild.
// The slice is reused by the next call to Step.
func (s *Scene) Particles() []systems.Particle {
	return s.particles
}

// Simulator returns the underlying simulator.
func (s *Scene) Simulator() *systems.Simulator {
	return s.sim
}

// Raster returns the CPU raster, or nil.
func (s *Scene) Raster() *raster.Raster {
	return s.raster
}

// Config returns the session configuration.
func (s *Scene) Config() *config.Config {
	return s.cfg
}

// Perf returns the frame timing collector.
func (s *Scene) Perf() *telemetry.PerfCollector {
	return s.perf
}

// Frame returns the number of simulated frames.
func (s *Scene) Frame() int64 {
	return s.sim.Frame()
}

// Close stops the raster workers and closes output files.
func (s *Scene) Close() error {
	if s.raster != nil {
		s.raster.Close()
	}
	return s.output.Close()
}
