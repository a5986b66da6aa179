package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ferrofluid/systems"
)

// FrameStats summarizes the particle set at one frame.
type FrameStats struct {
	Frame      int64   `csv:"frame"`
	SimTimeSec float64 `csv:"sim_time"`

	Particles int `csv:"particles"`
	Pinned    int `csv:"pinned"`

	// Speed distribution of free particles (simulation px/frame)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Mean height of free particles above the floor line
	HeightMean float64 `csv:"height_mean"`

	// Fraction of raster samples inside the isosurface (-1 when unknown)
	Coverage float64 `csv:"coverage"`

	ScrollImpulse  float64 `csv:"scroll_impulse"`
	ScrollVelocity float64 `csv:"scroll_velocity"`
}

// FrameInput is the state sampled by ComputeFrameStats.
type FrameInput struct {
	Frame          int64
	FPS            int
	Particles      []systems.Particle
	FloorY         float64
	Coverage       float64
	ScrollImpulse  float64
	ScrollVelocity float64
}

// ComputeFrameStats aggregates a particle snapshot.
func ComputeFrameStats(in FrameInput) FrameStats {
	s := FrameStats{
		Frame:          in.Frame,
		Particles:      len(in.Particles),
		Coverage:       in.Coverage,
		ScrollImpulse:  in.ScrollImpulse,
		ScrollVelocity: in.ScrollVelocity,
	}
	if in.FPS > 0 {
		s.SimTimeSec = float64(in.Frame) / float64(in.FPS)
	}

	speeds := make([]float64, 0, len(in.Particles))
	heights := make([]float64, 0, len(in.Particles))
	for i := range in.Particles {
		p := &in.Particles[i]
		if p.Pinned {
			s.Pinned++
			continue
		}
		speeds = append(speeds, systems.Speed(p.VX, p.VY))
		heights = append(heights, in.FloorY-(p.Y+p.Radius))
	}
	if len(speeds) == 0 {
		return s
	}

	s.SpeedMean = stat.Mean(speeds, nil)
	if len(speeds) > 1 {
		s.SpeedStd = stat.StdDev(speeds, nil)
	}
	sort.Float64s(speeds)
	s.SpeedP50 = stat.Quantile(0.5, stat.Empirical, speeds, nil)
	s.SpeedP90 = stat.Quantile(0.9, stat.Empirical, speeds, nil)
	s.SpeedMax = speeds[len(speeds)-1]
	s.HeightMean = stat.Mean(heights, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", s.Frame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("pinned", s.Pinned),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("coverage", s.Coverage),
		slog.Float64("scroll_impulse", s.ScrollImpulse),
		slog.Float64("scroll_velocity", s.ScrollVelocity),
	)
}
