package systems

// PackBlobs writes (x, y, radius) triples into dst for a fixed-size shader
// uniform array and zeroes the unused slots. Pinned particles are packed
// first so the floor row survives when the array is too small; free
// particles fill the remaining slots in order. It returns how many
// particles were packed and how many were left out.
func PackBlobs(dst []float32, particles []Particle) (packed, dropped int) {
	capacity := len(dst) / 3
	put := func(p *Particle) {
		dst[packed*3] = float32(p.X)
		dst[packed*3+1] = float32(p.Y)
		dst[packed*3+2] = float32(p.Radius)
		packed++
	}
	for i := range particles {
		if particles[i].Pinned && packed < capacity {
			put(&particles[i])
		}
	}
	for i := range particles {
		if !particles[i].Pinned && packed < capacity {
			put(&particles[i])
		}
	}
	clear(dst[packed*3:])
	return packed, len(particles) - packed
}
