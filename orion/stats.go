package orion

import (
	"time"
)

// number of frames averaged by FrameTimes
const frameWindow = 100

type FrameTimes struct {
	FrameCount      uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration

	// Delta time to previous frame
	Delta time.Duration

	accumulated time.Duration
	lastTime    time.Time
}

func (t *FrameTimes) update(d time.Duration) {
	t.Delta = d
	t.MaxDuration = max(t.MaxDuration, d)
	t.accumulated += d
}

func (t *FrameTimes) FPS() float64 {
	if t.AverageDuration == 0 {
		return 0
	}

	return 1.0 / t.AverageDuration.Seconds()
}

// Tick records a frame at the given time. Every 100 frames it returns the
// average frame time of the window and true.
func (t *FrameTimes) Tick(now time.Time) (time.Duration, bool) {
	if t.FrameCount > 0 {
		t.update(now.Sub(t.lastTime))
	}

	t.lastTime = now
	t.FrameCount += 1

	if t.FrameCount%frameWindow != 0 {
		return 0, false
	}

	t.AverageDuration = t.accumulated / frameWindow
	t.accumulated = 0

	return t.AverageDuration, true
}
