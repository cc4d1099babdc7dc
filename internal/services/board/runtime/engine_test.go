package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/beanmachine/internal/services/board/domain"
)

func newBoard(t *testing.T) *domain.Board {
	t.Helper()
	b, err := domain.New(domain.Config{Rows: 4, Rate: 1, BatchSize: 3}, 9)
	if err != nil {
		t.Fatalf("domain.New() error = %v", err)
	}
	return b
}

func receive(t *testing.T, ch <-chan domain.Snapshot) domain.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return domain.Snapshot{}
}

func TestEngine_PublishesAfterBatches(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board := newBoard(t)
	source := NewManualSource()
	engine := New(board, source)
	snapshots, unsubscribe := engine.Subscribe()
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	for _, now := range []float64{0, 0.5, 1} {
		if err := source.Send(ctx, now); err != nil {
			t.Fatalf("Send(%v) error = %v", now, err)
		}
	}
	snap := receive(t, snapshots)
	if snap.TotalPaths() != 3 || snap.Batches != 1 {
		t.Fatalf("snapshot total = %d batches = %d, want 3 and 1", snap.TotalPaths(), snap.Batches)
	}

	board.Reset()
	if err := source.Send(ctx, 1.25); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	snap = receive(t, snapshots)
	if snap.Generation != 1 || snap.TotalPaths() != 0 {
		t.Fatalf("snapshot after reset = generation %d total %d", snap.Generation, snap.TotalPaths())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestEngine_SourceClosed(t *testing.T) {
	t.Parallel()

	source := NewManualSource()
	engine := New(newBoard(t), source)
	source.Close()
	if err := engine.Run(context.Background()); !errors.Is(err, ErrSourceClosed) {
		t.Fatalf("Run() error = %v, want ErrSourceClosed", err)
	}
}

func TestEngine_RunRequiresConfiguration(t *testing.T) {
	t.Parallel()

	var engine *Engine
	if err := engine.Run(context.Background()); err == nil {
		t.Fatal("expected error for nil engine")
	}
}

func TestEngine_SlowSubscriberKeepsLatest(t *testing.T) {
	t.Parallel()

	board := newBoard(t)
	engine := New(board, NewManualSource())
	snapshots, unsubscribe := engine.Subscribe()

	engine.Publish()
	if _, err := board.Step(5); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	engine.Publish()

	snap := receive(t, snapshots)
	if snap.TotalPaths() != 5 {
		t.Fatalf("TotalPaths() = %d, want latest snapshot with 5", snap.TotalPaths())
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-snapshots; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	engine.Publish()
}

func TestTickerSource_EmitsIncreasingTimes(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	source := NewTickerSource(time.Millisecond)
	frames := source.Frames(ctx)

	previous := -1.0
	for i := 0; i < 3; i++ {
		select {
		case now := <-frames:
			if now < previous {
				t.Fatalf("frame %v after %v", now, previous)
			}
			previous = now
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}
	cancel()
	for range frames {
	}

	if NewTickerSource(0).Interval() != DefaultFrameInterval {
		t.Fatal("expected default interval")
	}
}
