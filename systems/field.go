package systems

import "math"

// Metaball field math. Every particle contributes r²/(d²+ε); the shape is
// the region where the sum exceeds the threshold.

// Contribution returns one particle's field value at offset (dx, dy).
func Contribution(radius, dx, dy, eps float64) float64 {
	return radius * radius / (dx*dx + dy*dy + eps)
}

// Field returns the summed field value at (x, y).
func Field(x, y float64, particles []Particle, eps float64) float64 {
	var sum float64
	for i := range particles {
		p := &particles[i]
		sum += Contribution(p.Radius, x-p.X, y-p.Y, eps)
	}
	return sum
}

// Gradient returns the field gradient at (x, y):
// Σ -2r²/(d²+ε)² · (dx, dy).
func Gradient(x, y float64, particles []Particle, eps float64) (gx, gy float64) {
	for i := range particles {
		p := &particles[i]
		dx := x - p.X
		dy := y - p.Y
		d2 := dx*dx + dy*dy + eps
		base := -2 * p.Radius * p.Radius / (d2 * d2)
		gx += base * dx
		gy += base * dy
	}
	return gx, gy
}

// Inside reports whether a field value lies inside the isosurface.
func Inside(field, threshold float64) bool {
	return field > threshold
}

// SurfaceNormal returns the unit normal at (x, y), pointing down the field
// gradient's direction. A flat gradient yields (0, 0).
func SurfaceNormal(x, y float64, particles []Particle, eps float64) (nx, ny float64) {
	gx, gy := Gradient(x, y, particles, eps)
	return Normalize(gx, gy)
}

// Lighting holds the constants of the pseudo-3D lit shading.
type Lighting struct {
	LightX, LightY float64 // unit light direction
	Brightness     float64
	Exponent       float64
	Feather        float64 // fade rate as the field rises above the threshold
	Threshold      float64
	Epsilon        float64 // gradient denominator guard
}

// Shade returns the lit grey level in [0, 255] for an inside sample.
// Light is brightest on the rim and fades to zero as the field climbs
// 1/Feather above the threshold, which also antialiases the silhouette.
func (l *Lighting) Shade(x, y, field float64, particles []Particle) float64 {
	nx, ny := SurfaceNormal(x, y, particles, l.Epsilon)
	dot := math.Max(0, nx*l.LightX+ny*l.LightY)
	feather := math.Min(1, (field-l.Threshold)*l.Feather)
	return math.Min(255, math.Pow(dot, l.Exponent)*l.Brightness*(1-feather))
}
