package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput copies window events into the scene's input state.
func (g *Game) handleInput() error {
	// Window resize propagation
	if err := g.handleResize(); err != nil {
		return err
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.showStats = !g.showStats
	}

	g.handlePointer()
	g.handleScroll()
	return nil
}

// handleResize checks for window resize and rebuilds on any size change.
func (g *Game) handleResize() error {
	if !rl.IsWindowResized() {
		return nil
	}
	return g.resize(rl.GetScreenWidth(), rl.GetScreenHeight())
}

// handlePointer tracks the mouse or first touch point in simulation space.
func (g *Game) handlePointer() {
	in := g.scene.Input()
	layout := g.scene.Layout()

	if rl.GetTouchPointCount() > 0 {
		pos := rl.GetTouchPosition(0)
		in.MovePointer(layout.ToSim(float64(pos.X), float64(pos.Y)))
		return
	}
	if !rl.IsCursorOnScreen() {
		in.LeavePointer()
		return
	}
	pos := rl.GetMousePosition()
	in.MovePointer(layout.ToSim(float64(pos.X), float64(pos.Y)))
}

// handleScroll maps wheel notches onto a virtual page offset. The offset
// never goes above the top of the page.
func (g *Game) handleScroll() {
	wheel := rl.GetMouseWheelMove()
	if wheel == 0 {
		return
	}
	g.wheelScroll -= float64(wheel) * g.cfg.Scroll.WheelStep
	if g.wheelScroll < 0 {
		g.wheelScroll = 0
	}
	g.scene.Input().ScrollTo(g.wheelScroll)
}
