package runtime

import (
	"context"
	"time"
)

// DefaultFrameInterval approximates a 60Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// TickerSource emits the seconds elapsed since the first frame request,
// once per interval. Frames are dropped when the consumer falls behind.
type TickerSource struct {
	interval time.Duration
}

// NewTickerSource creates a ticker source. Non-positive intervals use
// DefaultFrameInterval.
func NewTickerSource(interval time.Duration) *TickerSource {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerSource{interval: interval}
}

// Interval returns the frame interval.
func (s *TickerSource) Interval() time.Duration {
	return s.interval
}

// Frames starts the ticker. The channel closes once ctx is done.
func (s *TickerSource) Frames(ctx context.Context) <-chan float64 {
	frames := make(chan float64, 1)
	go func() {
		defer close(frames)
		start := time.Now()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case frames <- time.Since(start).Seconds():
				default:
				}
			}
		}
	}()
	return frames
}

// ManualSource delivers frames pushed by the caller.
type ManualSource struct {
	frames chan float64
}

// NewManualSource creates an unbuffered manual source.
func NewManualSource() *ManualSource {
	return &ManualSource{frames: make(chan float64)}
}

// Frames returns the channel fed by Send.
func (s *ManualSource) Frames(context.Context) <-chan float64 {
	return s.frames
}

// Send blocks until the consumer receives now or ctx is done.
func (s *ManualSource) Send(ctx context.Context, now float64) error {
	select {
	case s.frames <- now:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the frame stream.
func (s *ManualSource) Close() {
	close(s.frames)
}
