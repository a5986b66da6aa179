// Ferroweb - browser and desktop frontend on ebiten with a Kage metaball shader.
//
// Usage: go run ./cmd/ferroweb -variant gpu
// Web:   GOOS=js GOARCH=wasm go build -o ferro.wasm ./cmd/ferroweb
package main

import (
	"errors"
	"flag"
	"image"
	"image/color"
	"log/slog"
	"os"
	"time"

	eb "github.com/hajimehoshi/ebiten/v2"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/scene"
	"github.com/pthm-cable/ferrofluid/systems"
	"github.com/pthm-cable/ferrofluid/telemetry"
)

// App adapts a scene to ebiten's game loop.
type App struct {
	cfg    *config.Config
	scene  *scene.Scene
	shader *eb.Shader

	maxFrames   int64
	viewW       int
	viewH       int
	wheelScroll float64
	lastPage    float64
	hasPage     bool
	warned      bool

	blobs      []float32
	fill       []float32
	background []float32
	floor      color.RGBA
}

func newApp(cfg *config.Config, seed, maxFrames int64, logStats bool) (*App, error) {
	maxBlobs := min(cfg.Render.MaxGPUBlobs, maxWebBlobs)
	shader, err := eb.NewShader(kageSource(maxBlobs))
	if err != nil {
		return nil, errors.Join(errShaderUnavailable, err)
	}

	sc, err := scene.New(cfg, scene.Options{Seed: seed, LogStats: logStats})
	if err != nil {
		shader.Deallocate()
		return nil, err
	}

	return &App{
		cfg:        cfg,
		scene:      sc,
		shader:     shader,
		maxFrames:  maxFrames,
		blobs:      make([]float32, maxBlobs*3),
		fill:       vec4(cfg.Derived.Fill),
		background: vec4(cfg.Derived.Background),
		floor:      cfg.Derived.FloorColor,
	}, nil
}

var errShaderUnavailable = errors.New("metaball shader unavailable")

func vec4(c color.RGBA) []float32 {
	return []float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func (a *App) Update() error {
	if a.viewW == 0 || a.viewH == 0 {
		return nil
	}
	if _, err := a.scene.Resize(a.viewW, a.viewH); err != nil {
		return err
	}

	a.scene.BeginFrame()
	a.handleInput()
	a.scene.Step()

	if a.maxFrames > 0 && a.scene.Frame() >= a.maxFrames {
		return eb.Termination
	}
	return nil
}

func (a *App) handleInput() {
	in := a.scene.Input()
	layout := a.scene.Layout()

	if touches := eb.AppendTouchIDs(nil); len(touches) > 0 {
		x, y := eb.TouchPosition(touches[0])
		in.MovePointer(layout.ToSim(float64(x), float64(y)))
	} else if x, y := eb.CursorPosition(); image.Pt(x, y).In(image.Rect(0, 0, a.viewW, a.viewH)) {
		in.MovePointer(layout.ToSim(float64(x), float64(y)))
	} else {
		in.LeavePointer()
	}

	// The page offset is polled, so only a change counts as a scroll event.
	if y, ok := pageScroll(); ok {
		if !a.hasPage || y != a.lastPage {
			in.ScrollTo(y)
			a.lastPage, a.hasPage = y, true
		}
		return
	}
	if _, dy := eb.Wheel(); dy != 0 {
		a.wheelScroll -= dy * a.cfg.Scroll.WheelStep
		if a.wheelScroll < 0 {
			a.wheelScroll = 0
		}
		in.ScrollTo(a.wheelScroll)
	}
}

func (a *App) Draw(screen *eb.Image) {
	layout := a.scene.Layout()
	if layout.Scale == 0 {
		return
	}
	a.scene.Phase(telemetry.PhaseRender)
	particles := a.scene.Particles()
	n, dropped := systems.PackBlobs(a.blobs, particles)
	if dropped > 0 && !a.warned {
		slog.Warn("particle count exceeds shader capacity",
			"particles", len(particles), "max_blobs", len(a.blobs)/3, "dropped", dropped)
		a.warned = true
	}

	op := &eb.DrawRectShaderOptions{}
	op.Uniforms = map[string]any{
		"Blobs":      a.blobs,
		"BlobCount":  float32(n),
		"Threshold":  float32(a.cfg.Render.Threshold),
		"Eps":        float32(a.cfg.Render.Epsilon),
		"Scale":      float32(layout.Scale),
		"Fill":       a.fill,
		"Background": a.background,
	}
	b := screen.Bounds()
	screen.DrawRectShader(b.Dx(), b.Dy(), a.shader, op)

	floorY := int(layout.FloorY / layout.Scale)
	if floorY < b.Dy() {
		screen.SubImage(image.Rect(0, floorY, b.Dx(), b.Dy())).(*eb.Image).Fill(a.floor)
	}

	a.scene.Phase(telemetry.PhasePresent)
	a.scene.EndFrame()
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.viewW, a.viewH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (a *App) Close() {
	a.shader.Deallocate()
	if err := a.scene.Close(); err != nil {
		slog.Warn("closing scene", "error", err)
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	variant := flag.String("variant", "gpu", "Variant to overlay")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output frame and perf stats via slog")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath, *variant)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	app, err := newApp(cfg, *seed, *maxFrames, *logStats)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	eb.SetTPS(cfg.Screen.TargetFPS)
	eb.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	eb.SetWindowResizingMode(eb.WindowResizingModeEnabled)
	eb.SetWindowTitle(cfg.Screen.Title)

	if err := eb.RunGame(app); err != nil && !errors.Is(err, eb.Termination) {
		slog.Error("game exited", "error", err)
		os.Exit(1)
	}
}
