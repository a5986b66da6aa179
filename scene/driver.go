package scene

import (
	"context"
	"sync/atomic"
	"time"
)

// Driver calls a frame function repeatedly with exactly one frame in
// flight. It stops when the frame returns false, Stop is called, the
// context is cancelled, or the frame limit is reached.
type Driver struct {
	maxFrames int64
	interval  time.Duration

	frames  atomic.Int64
	stopped atomic.Bool
}

// NewDriver creates a driver. maxFrames <= 0 means unlimited; fps <= 0
// runs frames back to back, leaving pacing to the frame itself.
func NewDriver(maxFrames int64, fps int) *Driver {
	d := &Driver{maxFrames: maxFrames}
	if fps > 0 {
		d.interval = time.Second / time.Duration(fps)
	}
	return d
}

// Stop makes Run return before the next frame. Safe to call from any
// goroutine, including from inside the frame function.
func (d *Driver) Stop() {
	d.stopped.Store(true)
}

// Frames returns the number of frames run so far.
func (d *Driver) Frames() int64 {
	return d.frames.Load()
}

func (d *Driver) done() bool {
	if d.stopped.Load() {
		return true
	}
	return d.maxFrames > 0 && d.frames.Load() >= d.maxFrames
}

// Run drives frames until a stop condition holds. It returns the context
// error if the context ended the run, nil otherwise.
func (d *Driver) Run(ctx context.Context, frame func() bool) error {
	var tick <-chan time.Time
	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.done() {
			return nil
		}

		more := frame()
		d.frames.Add(1)
		if !more {
			return nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
}

// RunFrames runs at most n frames without pacing and returns how many ran.
func (d *Driver) RunFrames(n int, frame func() bool) int {
	ran := 0
	for ran < n && !d.done() {
		more := frame()
		d.frames.Add(1)
		ran++
		if !more {
			break
		}
	}
	return ran
}
