package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/ferrofluid/config"
)

func nativeScaleConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Render.Scale = 1
	return cfg
}

// TestLayoutResizeToMobile resizes from a desktop to a mobile width and
// checks the floor line and pinned row follow the mobile tier.
func TestLayoutResizeToMobile(t *testing.T) {
	cfg := nativeScaleConfig(t)

	desktop := NewLayout(cfg, 1200, 800)
	if desktop.Mobile {
		t.Fatal("expected 1200px to be desktop")
	}
	if want := 0.75 * 800; desktop.FloorY != want {
		t.Errorf("desktop floor: expected %v, got %v", want, desktop.FloorY)
	}

	mobile := NewLayout(cfg, 400, 800)
	if !desktop.Structural(mobile) {
		t.Error("expected resize to be structural")
	}
	if !mobile.Mobile {
		t.Fatal("expected 400px to be mobile")
	}
	if want := 0.85 * 800; mobile.FloorY != want {
		t.Errorf("mobile floor: expected %v, got %v", want, mobile.FloorY)
	}
	if want := int(math.Floor(400/35.0)) + 1; mobile.PinnedRowSize() != want {
		t.Errorf("mobile pinned row: expected %d, got %d", want, mobile.PinnedRowSize())
	}
}

func TestLayoutScaled(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Scale = 0.5

	l := NewLayout(cfg, 1281, 801)
	if l.Width != 640 || l.Height != 400 {
		t.Errorf("expected 640x400 simulation grid, got %vx%v", l.Width, l.Height)
	}
	if l.PinRadius != 25 {
		t.Errorf("expected scaled pin radius 25, got %v", l.PinRadius)
	}
	if l.PinSpacing != 17.5 {
		t.Errorf("expected scaled pin spacing 17.5, got %v", l.PinSpacing)
	}
	if want := int(math.Floor(640 / 17.5)); l.PinCount != want {
		t.Errorf("expected %d pin intervals, got %d", want, l.PinCount)
	}

	x, y := l.ToSim(100, 50)
	if x != 50 || y != 25 {
		t.Errorf("ToSim(100, 50) = (%v, %v), want (50, 25)", x, y)
	}
}

func TestLayoutPinsSpanWidth(t *testing.T) {
	cfg := nativeScaleConfig(t)
	l := NewLayout(cfg, 700, 500)

	if got := l.PinX(0); got != 0 {
		t.Errorf("first pin at %v, want 0", got)
	}
	if got := l.PinX(l.PinCount); got != l.Width {
		t.Errorf("last pin at %v, want %v", got, l.Width)
	}
	for i := 1; i <= l.PinCount; i++ {
		if l.PinX(i) <= l.PinX(i-1) {
			t.Fatalf("pin %d not right of pin %d", i, i-1)
		}
	}
}

// TestPinnedRowContinuousAtScale places the pinned row at several render
// scales and checks the field stays above threshold midway between pins.
func TestPinnedRowContinuousAtScale(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		view  int
	}{
		{"native", 1, 320},
		{"half", 0.5, 640},
		{"eighth", 1.0 / 8, 320},
		{"tenth", 0.1, 1200},
	}
	for _, tt := range tests {
		cfg := config.Default()
		cfg.Render.Scale = tt.scale
		l := NewLayout(cfg, tt.view, tt.view)

		pins := make([]Particle, l.PinnedRowSize())
		for i := range pins {
			pins[i] = Particle{X: l.PinX(i), Y: l.FloorY, Radius: l.PinRadius, Pinned: true}
		}
		for i := 1; i <= l.PinCount; i++ {
			mid := (l.PinX(i-1) + l.PinX(i)) / 2
			field := Field(mid, l.FloorY, pins, cfg.Render.Epsilon)
			if !Inside(field, cfg.Render.Threshold) {
				t.Errorf("%s: field %v between pins %d and %d, want above %v",
					tt.name, field, i-1, i, cfg.Render.Threshold)
				break
			}
		}
	}
}

func TestLayoutNarrowViewport(t *testing.T) {
	cfg := nativeScaleConfig(t)
	l := NewLayout(cfg, 20, 100)
	if l.PinCount != 0 {
		t.Fatalf("expected no pin intervals, got %d", l.PinCount)
	}
	if l.PinnedRowSize() != 1 {
		t.Errorf("expected a single pin, got %d", l.PinnedRowSize())
	}
	if l.PinX(0) != 0 {
		t.Errorf("expected lone pin at x=0, got %v", l.PinX(0))
	}
}

func TestLayoutStructural(t *testing.T) {
	cfg := nativeScaleConfig(t)
	a := NewLayout(cfg, 800, 600)
	if a.Structural(NewLayout(cfg, 800, 600)) {
		t.Error("identical layouts should not be structural")
	}
	if !a.Structural(NewLayout(cfg, 800, 601)) {
		t.Error("height change should be structural")
	}
}

func TestInputStateEvents(t *testing.T) {
	var in InputState

	in.MovePointer(10, 20)
	if !in.Pointer.Active || in.Pointer.X != 10 || in.Pointer.Y != 20 {
		t.Errorf("unexpected pointer after move: %+v", in.Pointer)
	}
	in.LeavePointer()
	if in.Pointer.Active || !math.IsInf(in.Pointer.X, 1) {
		t.Errorf("expected inactive pointer at infinity, got %+v", in.Pointer)
	}

	if in.Scrolled {
		t.Error("expected no scroll before any event")
	}
	in.ScrollTo(0)
	if !in.Scrolled {
		t.Error("an event at the current offset should still flag a scroll")
	}
	in.ScrollTo(30)
	if !in.Scrolled || in.ScrollY != 30 {
		t.Errorf("expected scroll to 30, got %v (scrolled=%v)", in.ScrollY, in.Scrolled)
	}

	if !in.Resize(640, 480) {
		t.Error("expected first resize to report a change")
	}
	if in.Resize(640, 480) {
		t.Error("expected repeated size to report no change")
	}
}
