package telemetry

import (
	"log/slog"
	"math"
	"testing"

	"github.com/pthm-cable/ferrofluid/systems"
)

func TestComputeFrameStats(t *testing.T) {
	particles := []systems.Particle{
		{X: 0, Y: 80, VX: 3, VY: 4, Radius: 10},  // speed 5, height 10
		{X: 0, Y: 60, VX: 0, VY: 1, Radius: 10},  // speed 1, height 30
		{X: 0, Y: 40, VX: -6, VY: 8, Radius: 10}, // speed 10, height 50
		{X: 0, Y: 100, Radius: 25, Pinned: true},
	}

	s := ComputeFrameStats(FrameInput{
		Frame:         120,
		FPS:           60,
		Particles:     particles,
		FloorY:        100,
		Coverage:      0.25,
		ScrollImpulse: -0.3,
	})

	if s.Particles != 4 || s.Pinned != 1 {
		t.Errorf("counts: got %d/%d, want 4/1", s.Particles, s.Pinned)
	}
	if s.SimTimeSec != 2 {
		t.Errorf("sim time: got %v, want 2", s.SimTimeSec)
	}
	if want := 16.0 / 3; math.Abs(s.SpeedMean-want) > 1e-9 {
		t.Errorf("speed mean: got %v, want %v", s.SpeedMean, want)
	}
	if s.SpeedP50 != 5 {
		t.Errorf("speed p50: got %v, want 5", s.SpeedP50)
	}
	if s.SpeedP90 != 10 || s.SpeedMax != 10 {
		t.Errorf("speed p90/max: got %v/%v, want 10/10", s.SpeedP90, s.SpeedMax)
	}
	if s.SpeedStd <= 0 {
		t.Errorf("expected positive speed std, got %v", s.SpeedStd)
	}
	if math.Abs(s.HeightMean-30) > 1e-9 {
		t.Errorf("height mean: got %v, want 30", s.HeightMean)
	}
	if s.Coverage != 0.25 || s.ScrollImpulse != -0.3 {
		t.Errorf("pass-through fields changed: %+v", s)
	}
}

func TestComputeFrameStatsOnlyPinned(t *testing.T) {
	s := ComputeFrameStats(FrameInput{
		Particles: []systems.Particle{{Pinned: true}, {Pinned: true}},
	})
	if s.Pinned != 2 || s.SpeedMean != 0 || s.SpeedMax != 0 {
		t.Errorf("expected zero speed stats for a pinned-only set, got %+v", s)
	}
}

func TestFrameStatsLogValue(t *testing.T) {
	v := FrameStats{Frame: 7, Particles: 3}.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("expected group value, got %v", v.Kind())
	}
	found := false
	for _, a := range v.Group() {
		if a.Key == "particles" && a.Value.Int64() == 3 {
			found = true
		}
	}
	if !found {
		t.Error("expected particles attribute in group")
	}
}
