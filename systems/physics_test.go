package systems

import (
	"math"
	"math/rand"
	"testing"
)

func testParams() PhysicsParams {
	return PhysicsParams{
		Gravity:      0.1,
		MassScaled:   true,
		Damping:      0.96,
		DT:           1,
		PointerForce: 0.015,
		PointerRange: 100,
		Boundary:     BoundarySoft,
		EdgeForce:    0.2,
		Bounce:       0.5,
	}
}

// TestDampingConvergence checks free motion decays strictly at the damping
// rate and settles below 1e-3 within 200 frames.
func TestDampingConvergence(t *testing.T) {
	p := Particle{X: 100, Y: 100, VX: 0.6, VY: -0.8, Radius: 10}
	prev := Speed(p.VX, p.VY)

	settled := -1
	for frame := 1; frame <= 200; frame++ {
		Integrate(&p, Forces{}, 0.96, 1)
		speed := Speed(p.VX, p.VY)
		if speed >= prev {
			t.Fatalf("frame %d: speed %v did not decrease from %v", frame, speed, prev)
		}
		if want := prev * 0.96; math.Abs(speed-want) > 1e-9 {
			t.Fatalf("frame %d: expected speed %v, got %v", frame, want, speed)
		}
		prev = speed
		if settled < 0 && speed < 1e-3 {
			settled = frame
		}
	}
	if settled < 0 {
		t.Errorf("speed %v still above 1e-3 after 200 frames", prev)
	}
}

// TestPinnedNeverMoves drives a pinned particle with every force and checks
// its position never changes.
func TestPinnedNeverMoves(t *testing.T) {
	params := testParams()
	params.RandomScroll = true
	rng := rand.New(rand.NewSource(3))
	bounds := Bounds{Width: 400, FloorY: 300}

	p := Particle{X: 200, Y: 300, Radius: 25, Mass: 0.5, Pinned: true}
	ptr := Pointer{X: 190, Y: 280, Active: true}

	for frame := 0; frame < 500; frame++ {
		scroll := ScrollForce(float64(frame%7)-3, &params, rng)
		Step(&p, ptr, bounds, scroll, &params)
		Integrate(&p, Forces{X: 5, Y: -5}, params.Damping, params.DT)
		if p.X != 200 || p.Y != 300 {
			t.Fatalf("frame %d: pinned particle moved to (%v, %v)", frame, p.X, p.Y)
		}
	}
}

func TestGravityForce(t *testing.T) {
	params := testParams()
	p := Particle{Mass: 0.9}

	if f := GravityForce(&p, &params); math.Abs(f.Y-0.09) > 1e-12 || f.X != 0 {
		t.Errorf("mass-scaled gravity: got %+v", f)
	}
	params.MassScaled = false
	if f := GravityForce(&p, &params); f.Y != 0.1 {
		t.Errorf("unscaled gravity: got %+v", f)
	}
}

func TestPointerAttraction(t *testing.T) {
	params := testParams()

	tests := []struct {
		name  string
		ptr   Pointer
		wantX float64
	}{
		{"inactive", Pointer{X: 50, Y: 0, Active: false}, 0},
		{"out of range", Pointer{X: 150, Y: 0, Active: true}, 0},
		{"at range edge", Pointer{X: 100, Y: 0, Active: true}, 0},
		// dx=50, falloff (100-50)/100 = 0.5
		{"half range", Pointer{X: 50, Y: 0, Active: true}, 50 * 0.5 * 0.015},
		{"left of particle", Pointer{X: -50, Y: 0, Active: true}, -50 * 0.5 * 0.015},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{}
			f := PointerAttraction(&p, tt.ptr, &params)
			if math.Abs(f.X-tt.wantX) > 1e-12 || f.Y != 0 {
				t.Errorf("got %+v, want X=%v", f, tt.wantX)
			}
		})
	}

	// Departed pointer sits at infinity.
	var in InputState
	in.LeavePointer()
	p := Particle{X: 10, Y: 10}
	if f := PointerAttraction(&p, in.Pointer, &params); f != (Forces{}) {
		t.Errorf("expected no force from departed pointer, got %+v", f)
	}
}

func TestSoftBoundary(t *testing.T) {
	params := testParams()
	b := Bounds{Width: 200, FloorY: 150}

	tests := []struct {
		name   string
		in     Particle
		wantVX float64
		wantVY float64
		wantY  float64
	}{
		{"left overshoot", Particle{X: -10, Y: 50, Radius: 5}, 2, 0, 50},
		{"right overshoot", Particle{X: 210, Y: 50, Radius: 5}, -2, 0, 50},
		{"top overshoot", Particle{X: 50, Y: -5, Radius: 5}, 0, 1, -5},
		{"rests on floor", Particle{X: 50, Y: 148, VY: 3, Radius: 5}, 0, 0, 145},
		{"inside", Particle{X: 50, Y: 50, VX: 1, VY: 1, Radius: 5}, 1, 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			ApplyBoundary(&p, b, &params)
			if math.Abs(p.VX-tt.wantVX) > 1e-12 || math.Abs(p.VY-tt.wantVY) > 1e-12 || p.Y != tt.wantY {
				t.Errorf("got v=(%v, %v) y=%v, want v=(%v, %v) y=%v", p.VX, p.VY, p.Y, tt.wantVX, tt.wantVY, tt.wantY)
			}
		})
	}
}

func TestClampBoundary(t *testing.T) {
	params := testParams()
	params.Boundary = BoundaryClamp
	params.Bounce = 0.5
	b := Bounds{Width: 200, FloorY: 150}

	tests := []struct {
		name   string
		in     Particle
		wantX  float64
		wantY  float64
		wantVX float64
		wantVY float64
	}{
		{"left wall", Particle{X: 2, Y: 50, VX: -4, Radius: 5}, 5, 50, 2, 0},
		{"right wall", Particle{X: 199, Y: 50, VX: 4, Radius: 5}, 195, 50, -2, 0},
		{"ceiling", Particle{X: 50, Y: 1, VY: -6, Radius: 5}, 50, 5, 0, 3},
		{"floor", Particle{X: 50, Y: 149, VY: 6, Radius: 5}, 50, 145, 0, -3},
		{"leaving wall keeps velocity", Particle{X: 2, Y: 50, VX: 4, Radius: 5}, 5, 50, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			ApplyBoundary(&p, b, &params)
			if p.X != tt.wantX || p.Y != tt.wantY || p.VX != tt.wantVX || p.VY != tt.wantVY {
				t.Errorf("got pos=(%v, %v) v=(%v, %v), want pos=(%v, %v) v=(%v, %v)",
					p.X, p.Y, p.VX, p.VY, tt.wantX, tt.wantY, tt.wantVX, tt.wantVY)
			}
		})
	}
}

func TestScrollForceDirection(t *testing.T) {
	params := testParams()
	if f := ScrollForce(0.3, &params, nil); f.X != 0 || f.Y != 0.3 {
		t.Errorf("vertical scroll force: got %+v", f)
	}
	if f := ScrollForce(0, &params, nil); f != (Forces{}) {
		t.Errorf("zero impulse: got %+v", f)
	}

	params.RandomScroll = true
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		f := ScrollForce(0.8, &params, rng)
		if mag := Speed(f.X, f.Y); math.Abs(mag-0.8) > 1e-9 {
			t.Fatalf("random scroll force magnitude %v, want 0.8", mag)
		}
	}
}

// TestStepFallsToFloor drops a particle under gravity and checks it comes to
// rest on the floor line.
func TestStepFallsToFloor(t *testing.T) {
	params := testParams()
	b := Bounds{Width: 400, FloorY: 300}
	p := Particle{X: 200, Y: 50, Radius: 20, Mass: 20 * 0.02}

	for i := 0; i < 2000; i++ {
		Step(&p, Pointer{}, b, Forces{}, &params)
	}
	if p.Y+p.Radius > b.FloorY+1 {
		t.Errorf("particle sank through the floor: y=%v", p.Y)
	}
	if p.Y+p.Radius < b.FloorY-1 {
		t.Errorf("particle did not reach the floor: y=%v", p.Y)
	}
}
