package systems

import "math"

// Particle is the per-frame snapshot of one blob handed to renderers.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Mass   float64
	Pinned bool
}

// Pointer is the latest pointer or touch position in simulation pixels.
type Pointer struct {
	X, Y   float64
	Active bool
}

// InputState collects side inputs between frames.
// Event handlers write it; the frame reads it at the top of Update.
type InputState struct {
	Pointer Pointer

	// ScrollY is the latest vertical scroll offset in viewport pixels.
	ScrollY float64
	// Scrolled is set when a scroll event arrived since the last frame consumed it.
	Scrolled bool

	// Viewport size in device-independent pixels.
	ViewWidth, ViewHeight int
}

// MovePointer records a pointer or touch move at simulation coordinates.
func (in *InputState) MovePointer(x, y float64) {
	in.Pointer = Pointer{X: x, Y: y, Active: true}
}

// LeavePointer marks the pointer inactive and moves it out of range.
func (in *InputState) LeavePointer() {
	in.Pointer = Pointer{X: math.Inf(1), Y: math.Inf(1), Active: false}
}

// ScrollTo records a scroll event. Every event is forwarded, including one
// at the current offset, which stores a zero delta.
func (in *InputState) ScrollTo(y float64) {
	in.ScrollY = y
	in.Scrolled = true
}

// Resize records a new viewport size and reports whether it changed.
func (in *InputState) Resize(w, h int) bool {
	if w == in.ViewWidth && h == in.ViewHeight {
		return false
	}
	in.ViewWidth = w
	in.ViewHeight = h
	return true
}
