// Package game is the raylib desktop frontend: it polls window input into
// a scene and presents frames through a render backend.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/renderer"
	"github.com/pthm-cable/ferrofluid/scene"
	"github.com/pthm-cable/ferrofluid/telemetry"
)

// Options configures a game.
type Options struct {
	Seed      int64
	LogStats  bool
	OutputDir string
}

// Game holds the windowed session state.
type Game struct {
	cfg     *config.Config
	scene   *scene.Scene
	backend renderer.Backend

	// Virtual page offset driven by the mouse wheel
	wheelScroll float64

	background rl.Color
	showStats  bool
}

// NewGame creates a game for the open raylib window.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	backend, err := renderer.NewBackend(cfg)
	if err != nil {
		if errors.Is(err, renderer.ErrShaderUnavailable) {
			slog.Error("GPU backend unavailable", "backend", cfg.Render.Backend, "error", err)
		}
		return nil, fmt.Errorf("creating %s backend: %w", cfg.Render.Backend, err)
	}

	sc, err := scene.New(cfg, scene.Options{
		Seed:      opts.Seed,
		LogStats:  opts.LogStats,
		OutputDir: opts.OutputDir,
	})
	if err != nil {
		backend.Unload()
		return nil, err
	}
	if cr, ok := backend.(renderer.CoverageReporter); ok {
		sc.SetCoverageSource(cr)
	}

	g := &Game{
		cfg:     cfg,
		scene:   sc,
		backend: backend,
		background: rl.Color{
			R: cfg.Derived.Background.R,
			G: cfg.Derived.Background.G,
			B: cfg.Derived.Background.B,
			A: cfg.Derived.Background.A,
		},
	}
	sc.PrimeScroll(0)
	if err := g.resize(rl.GetScreenWidth(), rl.GetScreenHeight()); err != nil {
		g.Unload()
		return nil, err
	}
	return g, nil
}

// resize rebuilds the scene and backend for a window size.
func (g *Game) resize(w, h int) error {
	rebuilt, err := g.scene.Resize(w, h)
	if err != nil {
		return err
	}
	if !rebuilt {
		return nil
	}
	if err := g.backend.Resize(g.scene.Layout()); err != nil {
		return fmt.Errorf("resizing backend: %w", err)
	}
	return nil
}

// Update polls input and advances the simulation by one frame.
func (g *Game) Update() error {
	g.scene.BeginFrame()
	if err := g.handleInput(); err != nil {
		return err
	}
	g.scene.Step()
	return nil
}

// Draw renders the current frame to the window.
func (g *Game) Draw() {
	g.scene.Phase(telemetry.PhaseRender)
	rl.BeginDrawing()
	rl.ClearBackground(g.background)
	g.backend.Draw(g.scene.Particles())
	if g.showStats {
		g.drawStats()
	}

	g.scene.Phase(telemetry.PhasePresent)
	rl.EndDrawing()
	g.scene.EndFrame()
}

// drawStats overlays frame rate and particle counts.
func (g *Game) drawStats() {
	sim := g.scene.Simulator()
	text := fmt.Sprintf("%d fps  %d blobs (%d pinned)  scroll %.3f",
		rl.GetFPS(), sim.Count(), sim.PinnedCount(), sim.ScrollImpulse())
	rl.DrawRectangle(8, 8, int32(rl.MeasureText(text, 16))+12, 26, rl.Fade(rl.Black, 0.6))
	rl.DrawText(text, 14, 13, 16, rl.RayWhite)
}

// Frame returns the number of simulated frames.
func (g *Game) Frame() int64 {
	return g.scene.Frame()
}

// Unload frees GPU resources and closes output files.
func (g *Game) Unload() {
	g.backend.Unload()
	if err := g.scene.Close(); err != nil {
		slog.Warn("closing scene", "error", err)
	}
}
