// Shader debug tool - renders a seeded scene through a render backend to a
// PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -backend gpu -frames 120 -out debug.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/renderer"
	"github.com/pthm-cable/ferrofluid/scene"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	variant := flag.String("variant", "gpu", "Variant to overlay")
	backend := flag.String("backend", "", "Render backend override (cpu, gpu)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 1280, "Render width")
	height := flag.Int("height", 800, "Render height")
	frames := flag.Int("frames", 120, "Frames to simulate before capturing")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath, *variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Render.Backend = *backend
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	b, err := renderer.NewBackend(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s backend: %v\n", cfg.Render.Backend, err)
		os.Exit(1)
	}
	defer b.Unload()

	sc, err := scene.New(cfg, scene.Options{Seed: *seed})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create scene: %v\n", err)
		os.Exit(1)
	}
	defer sc.Close()

	if _, err := sc.Resize(*width, *height); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to size scene: %v\n", err)
		os.Exit(1)
	}
	if err := b.Resize(sc.Layout()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to size backend: %v\n", err)
		os.Exit(1)
	}

	scene.NewDriver(0, 0).RunFrames(*frames, func() bool {
		sc.BeginFrame()
		sc.Step()
		sc.EndFrame()
		return true
	})

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	// Render the field to texture
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	b.Draw(sc.Particles())
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	// Export to PNG
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Scene rendered to: %s (%dx%d, %d blobs, %s backend)\n",
			*outPath, *width, *height, sc.Simulator().Count(), cfg.Render.Backend)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
