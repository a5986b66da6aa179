package components

// Position represents a particle's center in simulation pixels.
type Position struct {
	X, Y float64
}

// Velocity represents a particle's velocity in simulation pixels per frame.
type Velocity struct {
	X, Y float64
}
