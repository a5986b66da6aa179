// Ferroterm - terminal frontend. The CPU raster is drawn with half-block
// characters, two raster rows per terminal row.
//
// Usage: go run ./cmd/ferroterm -variant bounce
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/scene"
)

// Term runs a scene inside a tcell screen.
type Term struct {
	screen tcell.Screen
	scene  *scene.Scene
	cfg    *config.Config

	cellPixels int // viewport pixels per half-cell
	cols, rows int
	scroll     float64
}

// NewTerm creates a terminal frontend on an initialized screen.
func NewTerm(screen tcell.Screen, cfg *config.Config, seed int64, cellPixels int) (*Term, error) {
	// One raster pixel per half-cell.
	cfg.Render.Scale = 1 / float64(cellPixels)

	sc, err := scene.New(cfg, scene.Options{Seed: seed, Raster: true})
	if err != nil {
		return nil, err
	}
	t := &Term{
		screen:     screen,
		scene:      sc,
		cfg:        cfg,
		cellPixels: cellPixels,
	}
	sc.PrimeScroll(0)
	if err := t.resize(); err != nil {
		sc.Close()
		return nil, err
	}
	return t, nil
}

// resize adopts the screen size. A terminal row holds two raster rows.
func (t *Term) resize() error {
	t.cols, t.rows = t.screen.Size()
	_, err := t.scene.Resize(t.cols*t.cellPixels, t.rows*2*t.cellPixels)
	return err
}

// toView maps a terminal cell to viewport pixels.
func (t *Term) toView(x, y int) (float64, float64) {
	px := float64(t.cellPixels)
	return (float64(x) + 0.5) * px, (float64(y)*2 + 1) * px
}

// handleEvent applies one terminal event. It returns false to quit.
func (t *Term) handleEvent(ev tcell.Event) (bool, error) {
	in := t.scene.Input()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false, nil
		case tcell.KeyUp:
			t.scrollBy(-1)
		case tcell.KeyDown:
			t.scrollBy(1)
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false, nil
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		in.MovePointer(t.scene.Layout().ToSim(t.toView(x, y)))
		buttons := ev.Buttons()
		if buttons&tcell.WheelUp != 0 {
			t.scrollBy(-1)
		}
		if buttons&tcell.WheelDown != 0 {
			t.scrollBy(1)
		}

	case *tcell.EventFocus:
		if !ev.Focused {
			in.LeavePointer()
		}

	case *tcell.EventResize:
		t.screen.Sync()
		if err := t.resize(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// scrollBy moves the virtual page offset by whole wheel steps.
func (t *Term) scrollBy(steps float64) {
	t.scroll += steps * t.cfg.Scroll.WheelStep
	if t.scroll < 0 {
		t.scroll = 0
	}
	t.scene.Input().ScrollTo(t.scroll)
}

// frame advances and draws one frame.
func (t *Term) frame() {
	t.scene.BeginFrame()
	t.scene.Step()
	img := t.scene.Render()
	drawHalfBlocks(t.screen, img, t.cols, t.rows)
	t.screen.Show()
	t.scene.EndFrame()
}

// drawHalfBlocks paints each terminal cell with '▀': the foreground is the
// upper raster row, the background the lower one.
func drawHalfBlocks(screen tcell.Screen, img *image.RGBA, cols, rows int) {
	if img == nil {
		return
	}
	b := img.Bounds()
	for row := 0; row < rows; row++ {
		top, bottom := row*2, row*2+1
		for col := 0; col < cols; col++ {
			fg, bg := tcell.ColorReset, tcell.ColorReset
			if col < b.Dx() && top < b.Dy() {
				c := img.RGBAAt(col, top)
				fg = tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
			}
			if col < b.Dx() && bottom < b.Dy() {
				c := img.RGBAAt(col, bottom)
				bg = tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
			}
			screen.SetContent(col, row, '▀', nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

// Run polls events on a goroutine and draws on a ticker until quit.
func (t *Term) Run(fps int, maxFrames int64) error {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	driver := scene.NewDriver(maxFrames, 0)
	for {
		select {
		case ev := <-eventChan:
			ok, err := t.handleEvent(ev)
			if err != nil || !ok {
				return err
			}

		case <-ticker.C:
			if driver.RunFrames(1, func() bool { t.frame(); return true }) == 0 {
				return nil
			}
		}
	}
}

// Close releases the scene.
func (t *Term) Close() error {
	return t.scene.Close()
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	variant := flag.String("variant", "", "Variant to overlay")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	cellPixels := flag.Int("cell", 8, "Viewport pixels per half-cell")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	fps := flag.Int("fps", 30, "Frames per second")
	logFile := flag.String("log", "", "Write JSON logs to this file (the terminal is in use)")
	flag.Parse()

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
	}

	cfg, err := config.Load(*configPath, *variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	if *cellPixels < 1 {
		*cellPixels = 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()

	t, err := NewTerm(screen, cfg, *seed, *cellPixels)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	runErr := t.Run(*fps, *maxFrames)
	screen.Fini()
	if err := t.Close(); err != nil {
		slog.Warn("closing scene", "error", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
