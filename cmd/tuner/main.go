// Tuner - interactive physics and field tuning with sliders.
//
// Usage: go run ./cmd/tuner -variant classic
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/renderer"
	"github.com/pthm-cable/ferrofluid/scene"
)

const (
	windowWidth   = 1140
	windowHeight  = 640
	previewWidth  = 720
	previewHeight = windowHeight
	panelWidth    = windowWidth - previewWidth - 30
)

// TunerParams holds the values exposed as sliders.
type TunerParams struct {
	Gravity          float32
	Damping          float32
	PointerForce     float32
	PointerRange     float32 // viewport pixels
	ScrollMultiplier float32
	Threshold        float32
}

func paramsFromConfig(cfg *config.Config) TunerParams {
	return TunerParams{
		Gravity:          float32(cfg.Physics.Gravity),
		Damping:          float32(cfg.Physics.Damping),
		PointerForce:     float32(cfg.Pointer.Force),
		PointerRange:     float32(cfg.Pointer.Range),
		ScrollMultiplier: float32(cfg.Scroll.Multiplier),
		Threshold:        float32(cfg.Render.Threshold),
	}
}

// slider is one labelled parameter row.
type slider struct {
	label    string
	value    *float32
	min, max float32
	format   string
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	variant := flag.String("variant", "", "Variant to overlay")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath, *variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Ferrofluid Tuner")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	// The preview always rasterizes on the CPU so the threshold can change live.
	backend, err := renderer.NewCPUMetaball(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create backend: %v\n", err)
		os.Exit(1)
	}
	defer backend.Unload()

	sc, err := scene.New(cfg, scene.Options{Seed: *seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create scene: %v\n", err)
		os.Exit(1)
	}
	defer sc.Close()

	rebuild := func() {
		if _, err := sc.Resize(previewWidth, previewHeight); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to size scene: %v\n", err)
			os.Exit(1)
		}
		backend.Resize(sc.Layout())
	}
	rebuild()
	sc.SetCoverageSource(backend)
	sc.PrimeScroll(0)

	params := paramsFromConfig(cfg)
	sliders := []slider{
		{"Gravity", &params.Gravity, 0, 0.5, "%.3f"},
		{"Damping (velocity kept per frame)", &params.Damping, 0.8, 1, "%.3f"},
		{"Pointer force", &params.PointerForce, 0, 0.1, "%.3f"},
		{"Pointer range (px)", &params.PointerRange, 0, 600, "%.0f"},
		{"Scroll multiplier", &params.ScrollMultiplier, 0, 3, "%.2f"},
		{"Threshold", &params.Threshold, 0.2, 4, "%.2f"},
	}
	applied := params
	apply(sc, backend, params)

	var wheelScroll float64
	paused := false

	for !rl.WindowShouldClose() {
		if params != applied {
			apply(sc, backend, params)
			applied = params
		}

		sc.BeginFrame()
		in := sc.Input()
		mouse := rl.GetMousePosition()
		if mouse.X < previewWidth && rl.IsCursorOnScreen() {
			in.MovePointer(sc.Layout().ToSim(float64(mouse.X), float64(mouse.Y)))
			if wheel := rl.GetMouseWheelMove(); wheel != 0 {
				wheelScroll -= float64(wheel) * cfg.Scroll.WheelStep
				if wheelScroll < 0 {
					wheelScroll = 0
				}
				in.ScrollTo(wheelScroll)
			}
		} else {
			in.LeavePointer()
		}
		if !paused {
			sc.Step()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		backend.Draw(sc.Particles())

		stats := sc.Stats()
		rl.DrawText(fmt.Sprintf("%d blobs  coverage %.3f  impulse %.3f",
			stats.Particles, stats.Coverage, stats.ScrollImpulse), 10, 10, 16, rl.Gray)

		// Control panel
		panelX := float32(previewWidth + 20)
		panelY := float32(10)

		rl.DrawText("Ferrofluid Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			*s.value = gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				*s.value, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			panelY += 35
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Respawn") {
			// Force a rebuild by bouncing through a different size.
			sc.Resize(previewWidth-1, previewHeight)
			rebuild()
			apply(sc, backend, params)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = paramsFromConfig(cfg)
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := toYAML(params)
		for _, line := range strings.Split(yaml, "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
		sc.EndFrame()
	}
}

// apply pushes slider values into the running scene and raster.
func apply(sc *scene.Scene, backend *renderer.CPUMetaball, params TunerParams) {
	sim := sc.Simulator()
	p := sim.Params()
	p.Gravity = float64(params.Gravity)
	p.Damping = float64(params.Damping)
	p.PointerForce = float64(params.PointerForce)
	p.PointerRange = float64(params.PointerRange) * sc.Layout().Scale
	sim.SetParams(p)
	sim.SetScrollMultiplier(float64(params.ScrollMultiplier))
	backend.Raster().SetThreshold(float64(params.Threshold))
}

func toYAML(params TunerParams) string {
	return fmt.Sprintf(`physics:
  gravity: %.3f
  damping: %.3f
pointer:
  force: %.3f
  range: %.0f
scroll:
  multiplier: %.2f
render:
  threshold: %.2f`,
		params.Gravity, params.Damping, params.PointerForce,
		params.PointerRange, params.ScrollMultiplier, params.Threshold)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
