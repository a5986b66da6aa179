package components

// Body holds the physical properties of a particle.
type Body struct {
	Radius float64 // field strength scales with Radius²
	Mass   float64 // Radius * mass factor
	Pinned bool    // excluded from force integration
}
