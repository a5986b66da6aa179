// Package raster evaluates the metaball field on the CPU into an image.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/systems"
)

// Shading selects how inside samples are coloured.
type Shading uint8

const (
	// ShadingFlat paints every inside sample with the fill colour.
	ShadingFlat Shading = iota
	// ShadingLit shades the rim by the field gradient against a light direction.
	ShadingLit
	// ShadingSmooth blends fill and background across a band around the threshold.
	ShadingSmooth
)

// ParseShading maps a config name to a Shading.
func ParseShading(name string) (Shading, error) {
	switch name {
	case config.ShadingFlat:
		return ShadingFlat, nil
	case config.ShadingLit:
		return ShadingLit, nil
	case config.ShadingSmooth:
		return ShadingSmooth, nil
	}
	return 0, fmt.Errorf("unknown shading %q", name)
}

// Raster evaluates the metaball field on the CPU into an RGBA image.
// Each frame overwrites the whole image.
type Raster struct {
	img *image.RGBA

	shading    Shading
	threshold  float64
	eps        float64
	smoothBand float64
	lighting   systems.Lighting

	background color.RGBA
	fill       color.RGBA
	floor      color.RGBA
	floorRow   int

	particles []systems.Particle
	bands     *bandPool
	covered   []int // inside samples per band
	coverage  float64
}

// New creates a raster from render config. Call Resize before Render.
func New(cfg *config.Config) (*Raster, error) {
	shading, err := ParseShading(cfg.Render.Shading)
	if err != nil {
		return nil, err
	}
	r := &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, 0, 0)),
		shading:    shading,
		threshold:  cfg.Render.Threshold,
		eps:        cfg.Render.Epsilon,
		smoothBand: cfg.Render.SmoothBand,
		lighting: systems.Lighting{
			LightX:     cfg.Derived.LightX,
			LightY:     cfg.Derived.LightY,
			Brightness: cfg.Render.Brightness,
			Exponent:   cfg.Render.Exponent,
			Feather:    cfg.Render.Feather,
			Threshold:  cfg.Render.Threshold,
			Epsilon:    cfg.Render.GradientEpsilon,
		},
		background: cfg.Derived.Background,
		fill:       cfg.Derived.Fill,
		floor:      cfg.Derived.FloorColor,
	}
	r.bands = newBandPool(r, cfg.Render.Workers)
	r.covered = make([]int, r.bands.numWorkers)
	return r, nil
}

// Resize reallocates the image for a layout. The raster covers the
// simulation grid, not the viewport.
func (r *Raster) Resize(layout systems.Layout) {
	w, h := int(layout.Width), int(layout.Height)
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if r.img.Rect.Dx() != w || r.img.Rect.Dy() != h {
		r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	r.floorRow = layout.FloorRow()
}

// SetThreshold moves the isosurface level.
func (r *Raster) SetThreshold(th float64) {
	r.threshold = th
	r.lighting.Threshold = th
}

// Threshold returns the isosurface level.
func (r *Raster) Threshold() float64 {
	return r.threshold
}

// Render evaluates the field for every row above the floor and fills the
// rows below it. The returned image is reused by the next call.
func (r *Raster) Render(particles []systems.Particle) *image.RGBA {
	r.particles = particles
	h := r.img.Rect.Dy()

	for i := range r.covered {
		r.covered[i] = 0
	}
	r.bands.run(h)

	total := 0
	for _, c := range r.covered {
		total += c
	}
	if n := r.img.Rect.Dx() * h; n > 0 {
		r.coverage = float64(total) / float64(n)
	} else {
		r.coverage = 0
	}
	r.particles = nil
	return r.img
}

// renderRows shades rows [y0, y1) and records inside samples for a band.
func (r *Raster) renderRows(y0, y1, band int) {
	w := r.img.Rect.Dx()
	pix := r.img.Pix
	stride := r.img.Stride
	inside := 0

	for y := y0; y < y1; y++ {
		row := pix[y*stride : y*stride+w*4]
		if y >= r.floorRow {
			fillRow(row, r.floor)
			continue
		}

		fy := float64(y)
		for x := 0; x < w; x++ {
			fx := float64(x)
			field := systems.Field(fx, fy, r.particles, r.eps)
			in := systems.Inside(field, r.threshold)
			if in {
				inside++
			}

			c := r.background
			switch r.shading {
			case ShadingFlat:
				if in {
					c = r.fill
				}
			case ShadingLit:
				if in {
					shade := r.lighting.Shade(fx, fy, field, r.particles)
					c = mix(r.background, r.fill, shade/255)
				}
			case ShadingSmooth:
				t := systems.Smoothstep(r.threshold-r.smoothBand, r.threshold+r.smoothBand, field)
				c = mix(r.background, r.fill, t)
			}

			o := x * 4
			row[o] = c.R
			row[o+1] = c.G
			row[o+2] = c.B
			row[o+3] = c.A
		}
	}
	r.covered[band] += inside
}

// Image returns the most recent frame.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Coverage returns the fraction of samples inside the isosurface on the
// last frame. Floor rows count as outside.
func (r *Raster) Coverage() float64 {
	return r.coverage
}

// Close stops the raster workers.
func (r *Raster) Close() {
	r.bands.stop()
}

func fillRow(row []uint8, c color.RGBA) {
	for o := 0; o+3 < len(row); o += 4 {
		row[o] = c.R
		row[o+1] = c.G
		row[o+2] = c.B
		row[o+3] = c.A
	}
}

// mix linearly interpolates two colours by t in [0, 1].
func mix(a, b color.RGBA, t float64) color.RGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}
