package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/raster"
	"github.com/pthm-cable/ferrofluid/systems"
)

// CPUMetaball rasterizes the field on the CPU at the simulation
// resolution and draws it upscaled to the window.
type CPUMetaball struct {
	raster *raster.Raster

	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA
	loaded     bool

	screenW, screenH float32
}

// NewCPUMetaball creates the CPU backend. Call Resize before Draw.
func NewCPUMetaball(cfg *config.Config) (*CPUMetaball, error) {
	r, err := raster.New(cfg)
	if err != nil {
		return nil, err
	}
	return &CPUMetaball{raster: r}, nil
}

// Resize reallocates the raster and its texture.
func (c *CPUMetaball) Resize(layout systems.Layout) error {
	c.raster.Resize(layout)
	c.screenW = float32(layout.ViewWidth)
	c.screenH = float32(layout.ViewHeight)

	w, h := int(layout.Width), int(layout.Height)
	if c.loaded && w == c.texW && h == c.texH {
		return nil
	}
	c.unloadTexture()
	if w <= 0 || h <= 0 {
		return nil
	}

	img := rl.GenImageColor(w, h, rl.Black)
	c.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(c.tex, rl.FilterBilinear)

	c.texW, c.texH = w, h
	c.pixels = make([]color.RGBA, w*h)
	c.loaded = true
	return nil
}

// Draw rasterizes the particles and blits the result over the window.
func (c *CPUMetaball) Draw(particles []systems.Particle) {
	if !c.loaded {
		return
	}
	img := c.raster.Render(particles)

	pix := img.Pix
	for i := range c.pixels {
		o := i * 4
		c.pixels[i] = color.RGBA{R: pix[o], G: pix[o+1], B: pix[o+2], A: pix[o+3]}
	}
	rl.UpdateTexture(c.tex, c.pixels)

	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(c.texW), Height: float32(c.texH)}
	dstRect := rl.Rectangle{X: 0, Y: 0, Width: c.screenW, Height: c.screenH}
	rl.DrawTexturePro(c.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Coverage returns the inside fraction of the last raster.
func (c *CPUMetaball) Coverage() float64 {
	return c.raster.Coverage()
}

// Raster exposes the underlying CPU raster.
func (c *CPUMetaball) Raster() *raster.Raster {
	return c.raster
}

func (c *CPUMetaball) unloadTexture() {
	if c.loaded {
		rl.UnloadTexture(c.tex)
		c.loaded = false
	}
}

// Unload frees the texture and stops the raster workers.
func (c *CPUMetaball) Unload() {
	c.unloadTexture()
	c.raster.Close()
}
