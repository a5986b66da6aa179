package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/game"
	"github.com/pthm-cable/ferrofluid/scene"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	variant := flag.String("variant", "", "Variant to overlay (classic, bounce, spring, gpu)")
	backend := flag.String("backend", "", "Render backend override (cpu, gpu)")
	headless := flag.Bool("headless", false, "Run without a window (CPU raster only)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output frame and perf stats via slog")
	snapshot := flag.String("snapshot", "", "Headless: write the last frame to this PNG file")
	width := flag.Int("width", 0, "Viewport width (0 = use config)")
	height := flag.Int("height", 0, "Viewport height (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath, *variant); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *backend != "" {
		cfg.Render.Backend = *backend
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid backend", "error", err)
			os.Exit(1)
		}
	}
	if *width > 0 {
		cfg.Screen.Width = *width
	}
	if *height > 0 {
		cfg.Screen.Height = *height
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting",
		"variant", cfg.Variant,
		"backend", cfg.Render.Backend,
		"headless", *headless,
		"seed", rngSeed,
		"max_frames", *maxFrames,
	)

	var err error
	if *headless {
		err = runHeadless(ctx, cfg, rngSeed, *maxFrames, *outputDir, *logStats, *snapshot)
	} else {
		err = runWindow(ctx, cfg, rngSeed, *maxFrames, *outputDir, *logStats)
	}
	if err != nil && ctx.Err() == nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless drives the CPU raster without a window, feeding a scripted
// scroll pattern so the scroll coupling is exercised.
func runHeadless(ctx context.Context, cfg *config.Config, seed, maxFrames int64, outputDir string, logStats bool, snapshot string) error {
	sc, err := scene.New(cfg, scene.Options{
		Seed:      seed,
		LogStats:  logStats,
		OutputDir: outputDir,
		Raster:    true,
	})
	if err != nil {
		return err
	}
	defer sc.Close()

	if _, err := sc.Resize(cfg.Screen.Width, cfg.Screen.Height); err != nil {
		return err
	}
	sc.PrimeScroll(0)

	fps := cfg.Screen.TargetFPS
	var last *image.RGBA
	page := 0.0
	driver := scene.NewDriver(maxFrames, 0)
	err = driver.Run(ctx, func() bool {
		sc.BeginFrame()
		// Each step of the script is one scroll event.
		if y := scriptedScroll(sc.Frame(), fps); y != page {
			page = y
			sc.Input().ScrollTo(y)
		}
		sc.Step()
		last = sc.Render()
		sc.EndFrame()
		return true
	})

	slog.Info("headless run finished", "frames", driver.Frames(), "stats", sc.Stats(), "perf", sc.Perf().Stats())

	if snapshot != "" && last != nil {
		if werr := writePNG(snapshot, last); werr != nil {
			return werr
		}
		slog.Info("snapshot written", "path", snapshot)
	}
	return err
}

// scriptedScroll returns a page offset that scrolls down and back up
// every four seconds, in 120px steps.
func scriptedScroll(frame int64, fps int) float64 {
	if fps <= 0 {
		fps = 60
	}
	phase := float64(frame) / float64(4*fps) * 2 * math.Pi
	return math.Round((1-math.Cos(phase))*300/120) * 120
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return f.Close()
}

// runWindow opens a raylib window and runs until it is closed.
func runWindow(ctx context.Context, cfg *config.Config, seed, maxFrames int64, outputDir string, logStats bool) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, game.Options{
		Seed:      seed,
		LogStats:  logStats,
		OutputDir: outputDir,
	})
	if err != nil {
		return err
	}
	defer g.Unload()

	var frameErr error
	driver := scene.NewDriver(maxFrames, 0)
	err = driver.Run(ctx, func() bool {
		if rl.WindowShouldClose() {
			return false
		}
		if frameErr = g.Update(); frameErr != nil {
			return false
		}
		g.Draw()
		return true
	})
	if frameErr != nil {
		return frameErr
	}
	return err
}
