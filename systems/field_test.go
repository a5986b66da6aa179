package systems

import (
	"math"
	"math/rand"
	"testing"
)

const testEps = 1e-4

// TestContributionDecays verifies that a particle's contribution strictly
// decreases with distance from its center.
func TestContributionDecays(t *testing.T) {
	for _, r := range []float64{0.5, 1, 10, 50, 300} {
		prev := math.Inf(1)
		for d := 0.0; d <= 2000; d += 7.5 {
			c := Contribution(r, d, 0, testEps)
			if c >= prev {
				t.Fatalf("r=%v: contribution at d=%v (%v) not below previous (%v)", r, d, c, prev)
			}
			prev = c
		}
	}
}

// TestContributionDirectionIndependent verifies the falloff is radial.
func TestContributionDirectionIndependent(t *testing.T) {
	a := Contribution(20, 30, 40, testEps)
	b := Contribution(20, -50, 0, testEps)
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("expected equal contributions at equal distance, got %v and %v", a, b)
	}
}

// TestFieldOrderIndependent verifies permuting particles does not change
// the field anywhere.
func TestFieldOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	particles := make([]Particle, 25)
	for i := range particles {
		particles[i] = Particle{
			X:      rng.Float64() * 400,
			Y:      rng.Float64() * 300,
			Radius: 5 + rng.Float64()*30,
		}
	}

	shuffled := append([]Particle(nil), particles...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	for i := 0; i < 200; i++ {
		x := rng.Float64() * 400
		y := rng.Float64() * 300
		a := Field(x, y, particles, testEps)
		b := Field(x, y, shuffled, testEps)
		if math.Abs(a-b) > 1e-9*math.Max(1, a) {
			t.Fatalf("field at (%v, %v) changed under permutation: %v vs %v", x, y, a, b)
		}
		if Inside(a, 1) != Inside(b, 1) {
			t.Fatalf("inside test at (%v, %v) changed under permutation", x, y)
		}
	}
}

// TestSingleParticleScenario checks a lone particle at (100,100) r=50.
func TestSingleParticleScenario(t *testing.T) {
	particles := []Particle{{X: 100, Y: 100, Radius: 50}}

	center := Field(100, 100, particles, testEps)
	if want := 2500 / testEps; math.Abs(center-want) > 1e-6*want {
		t.Errorf("expected center field %v, got %v", want, center)
	}
	if !Inside(center, 1) {
		t.Error("expected center to be inside")
	}

	far := Field(1100, 100, particles, testEps)
	if far > 0.01 {
		t.Errorf("expected far field near zero, got %v", far)
	}
	if Inside(far, 1) {
		t.Error("expected far sample to be outside")
	}

	// The isosurface of a lone particle is its radius.
	if !Inside(Field(149, 100, particles, testEps), 1) {
		t.Error("expected sample just inside the radius to be inside")
	}
	if Inside(Field(151, 100, particles, testEps), 1) {
		t.Error("expected sample just outside the radius to be outside")
	}
}

// TestFieldFiniteAtCenter verifies the epsilon guards the singularity.
func TestFieldFiniteAtCenter(t *testing.T) {
	particles := []Particle{{X: 3, Y: 4, Radius: 10}}
	f := Field(3, 4, particles, testEps)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		t.Errorf("expected finite field at center, got %v", f)
	}
	gx, gy := Gradient(3, 4, particles, testEps)
	if gx != 0 || gy != 0 {
		t.Errorf("expected zero gradient at center, got (%v, %v)", gx, gy)
	}
}

// TestGradientMatchesFiniteDifference checks the analytic gradient.
func TestGradientMatchesFiniteDifference(t *testing.T) {
	particles := []Particle{
		{X: 50, Y: 60, Radius: 20},
		{X: 90, Y: 40, Radius: 15},
	}
	const h = 1e-4
	for _, pt := range [][2]float64{{70, 50}, {30, 80}, {120, 10}} {
		x, y := pt[0], pt[1]
		gx, gy := Gradient(x, y, particles, testEps)
		fx := (Field(x+h, y, particles, testEps) - Field(x-h, y, particles, testEps)) / (2 * h)
		fy := (Field(x, y+h, particles, testEps) - Field(x, y-h, particles, testEps)) / (2 * h)
		if math.Abs(gx-fx) > 1e-4*math.Max(1, math.Abs(fx)) || math.Abs(gy-fy) > 1e-4*math.Max(1, math.Abs(fy)) {
			t.Errorf("at (%v, %v): analytic (%v, %v), numeric (%v, %v)", x, y, gx, gy, fx, fy)
		}
	}
}

func TestSurfaceNormalPointsInward(t *testing.T) {
	particles := []Particle{{X: 0, Y: 0, Radius: 10}}
	// The field rises toward the center, so the gradient points inward.
	nx, ny := SurfaceNormal(5, 0, particles, testEps)
	if math.Abs(nx+1) > 1e-9 || math.Abs(ny) > 1e-9 {
		t.Errorf("expected normal (-1, 0), got (%v, %v)", nx, ny)
	}
}

func TestShadeRimAndFeather(t *testing.T) {
	particles := []Particle{{X: 0, Y: 0, Radius: 10}}
	l := Lighting{
		LightX: -1, LightY: 0,
		Brightness: 80,
		Exponent:   1.5,
		Feather:    8,
		Threshold:  1,
		Epsilon:    testEps,
	}

	// Right rim facing the light: field just above the threshold.
	x := 9.99
	rim := l.Shade(x, 0, Field(x, 0, particles, testEps), particles)
	if rim < 70 || rim > 80 {
		t.Errorf("expected rim brightness near 80, got %v", rim)
	}

	// Deep inside the feathered band is dark.
	x = 5
	deep := l.Shade(x, 0, Field(x, 0, particles, testEps), particles)
	if deep != 0 {
		t.Errorf("expected interior to be feathered to 0, got %v", deep)
	}

	// The side facing away from the light is dark.
	x = -9.99
	back := l.Shade(x, 0, Field(x, 0, particles, testEps), particles)
	if back != 0 {
		t.Errorf("expected back side dark, got %v", back)
	}
}

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := Smoothstep(0, 1, tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Smoothstep(0, 1, %v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
