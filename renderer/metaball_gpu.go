package renderer

import (
	_ "embed"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ferrofluid/config"
	"github.com/pthm-cable/ferrofluid/systems"
)

//go:embed shaders/metaball.fs
var metaballFS string

// MetaballShaderSource returns the fragment shader with the blob array
// sized to maxBlobs.
func MetaballShaderSource(maxBlobs int) string {
	define := fmt.Sprintf("#define MAX_BLOBS %d\n", maxBlobs)
	version, body, ok := strings.Cut(metaballFS, "\n")
	if !ok {
		return define + metaballFS
	}
	return version + "\n" + define + body
}

// GPUMetaball evaluates the field per fragment at native resolution.
// Particle centers and radii are uploaded as a vec3 uniform array each frame.
type GPUMetaball struct {
	shader        rl.Shader
	blobsLoc      int32
	countLoc      int32
	thresholdLoc  int32
	epsLoc        int32
	scaleLoc      int32
	resolutionLoc int32
	fillLoc       int32

	maxBlobs int
	uniform  []float32
	warned   bool

	layout     systems.Layout
	background rl.Color
	floor      rl.Color
}

// NewGPUMetaball compiles the metaball shader. Requires an open raylib window.
func NewGPUMetaball(cfg *config.Config) (*GPUMetaball, error) {
	maxBlobs := cfg.Render.MaxGPUBlobs
	shader := rl.LoadShaderFromMemory("", MetaballShaderSource(maxBlobs))

	g := &GPUMetaball{
		shader:        shader,
		blobsLoc:      rl.GetShaderLocation(shader, "blobs"),
		countLoc:      rl.GetShaderLocation(shader, "blobCount"),
		thresholdLoc:  rl.GetShaderLocation(shader, "threshold"),
		epsLoc:        rl.GetShaderLocation(shader, "eps"),
		scaleLoc:      rl.GetShaderLocation(shader, "scale"),
		resolutionLoc: rl.GetShaderLocation(shader, "resolution"),
		fillLoc:       rl.GetShaderLocation(shader, "fill"),
		maxBlobs:      maxBlobs,
		uniform:       make([]float32, maxBlobs*3),
		background:    toRaylib(cfg.Derived.Background),
		floor:         toRaylib(cfg.Derived.FloorColor),
	}

	// A failed compile falls back to raylib's default shader, which has
	// none of our uniforms.
	if shader.ID == 0 || g.blobsLoc < 0 || g.countLoc < 0 {
		rl.UnloadShader(shader)
		return nil, ErrShaderUnavailable
	}

	rl.SetShaderValue(shader, g.thresholdLoc, []float32{float32(cfg.Render.Threshold)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(shader, g.epsLoc, []float32{float32(cfg.Render.Epsilon)}, rl.ShaderUniformFloat)
	fill := rl.ColorNormalize(toRaylib(cfg.Derived.Fill))
	rl.SetShaderValue(shader, g.fillLoc, []float32{fill.X, fill.Y, fill.Z, fill.W}, rl.ShaderUniformVec4)

	return g, nil
}

// Resize updates the screen-space uniforms for a layout.
func (g *GPUMetaball) Resize(layout systems.Layout) error {
	g.layout = layout
	rl.SetShaderValue(g.shader, g.scaleLoc, []float32{float32(layout.Scale)}, rl.ShaderUniformFloat)
	resolution := []float32{float32(layout.ViewWidth), float32(layout.ViewHeight)}
	rl.SetShaderValue(g.shader, g.resolutionLoc, resolution, rl.ShaderUniformVec2)
	return nil
}

// Draw uploads the particles and shades the window. Particles beyond the
// uniform capacity are dropped, free ones before the pinned row.
func (g *GPUMetaball) Draw(particles []systems.Particle) {
	n, dropped := systems.PackBlobs(g.uniform, particles)
	if dropped > 0 && !g.warned {
		slog.Warn("particle count exceeds shader capacity",
			"particles", len(particles), "max_gpu_blobs", g.maxBlobs, "dropped", dropped)
		g.warned = true
	}
	if n > 0 {
		rl.SetShaderValueV(g.shader, g.blobsLoc, g.uniform[:n*3], rl.ShaderUniformVec3, int32(n))
	}
	rl.SetShaderValue(g.shader, g.countLoc, []float32{float32(n)}, rl.ShaderUniformFloat)

	w := int32(g.layout.ViewWidth)
	h := int32(g.layout.ViewHeight)

	rl.ClearBackground(g.background)
	rl.BeginShaderMode(g.shader)
	rl.DrawRectangle(0, 0, w, h, rl.White)
	rl.EndShaderMode()

	if g.layout.Scale > 0 {
		floorY := int32(g.layout.FloorY / g.layout.Scale)
		if floorY < h {
			rl.DrawRectangle(0, floorY, w, h-floorY, g.floor)
		}
	}
}

// Unload frees the shader.
func (g *GPUMetaball) Unload() {
	rl.UnloadShader(g.shader)
}

func toRaylib(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
