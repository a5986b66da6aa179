package scene

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDriverRunFrames(t *testing.T) {
	d := NewDriver(0, 0)
	calls := 0
	ran := d.RunFrames(25, func() bool {
		calls++
		return true
	})
	if ran != 25 || calls != 25 || d.Frames() != 25 {
		t.Errorf("expected 25 frames, got ran=%d calls=%d frames=%d", ran, calls, d.Frames())
	}
}

func TestDriverStopConditions(t *testing.T) {
	tests := []struct {
		name      string
		maxFrames int64
		stopAt    int // frame returns false at this call (0 = never)
		stopCall  int // Stop() is called during this call (0 = never)
		want      int64
	}{
		{"max frames", 10, 0, 0, 10},
		{"frame returns false", 0, 7, 0, 7},
		{"stop from frame", 0, 0, 4, 4},
		{"earliest wins", 5, 9, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDriver(tt.maxFrames, 0)
			calls := 0
			err := d.Run(context.Background(), func() bool {
				calls++
				if calls == tt.stopCall {
					d.Stop()
				}
				return calls != tt.stopAt
			})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if d.Frames() != tt.want {
				t.Errorf("got %d frames, want %d", d.Frames(), tt.want)
			}
		})
	}
}

func TestDriverContextCancel(t *testing.T) {
	d := NewDriver(0, 0)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := d.Run(ctx, func() bool {
		calls++
		if calls == 3 {
			cancel()
		}
		return true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 frames before cancel, got %d", calls)
	}
}

func TestDriverPacing(t *testing.T) {
	d := NewDriver(5, 200)
	start := time.Now()
	if err := d.Run(context.Background(), func() bool { return true }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Four waits of 5ms separate five frames.
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("expected paced frames, finished in %v", elapsed)
	}
	if d.Frames() != 5 {
		t.Errorf("expected 5 frames, got %d", d.Frames())
	}
}
