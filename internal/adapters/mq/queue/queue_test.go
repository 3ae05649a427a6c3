package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/assessor/internal/domain/model"
)

func note(id string) model.Notification {
	return model.Notification{Kind: model.NotifySubmitted, AssessmentID: id, TotalScore: 42}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}

	if !q.Enqueue(ctx, note("a1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	n := <-q.Dequeue(dctx)
	if n.AssessmentID != "a1" {
		t.Errorf("expected a1, got %v", n.AssessmentID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_DropsWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.Publish(ctx, note("a1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Publish(ctx, note("a2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Publish(ctx, note("a3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if q.Enqueue(ctx, note("a4")) {
		t.Error("expected enqueue to fail when full")
	}
	if d := q.Dropped(); d != 2 {
		t.Errorf("expected 2 dropped, got %d", d)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Publish(ctx, note("a1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	_ = q.Enqueue(ctx, note("a1"))
	_ = q.Enqueue(ctx, note("a2"))

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Publish(ctx, note("a3")); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}

	// Queued notifications are still drained after close.
	var got []string
	for n := range q.Dequeue(ctx) {
		got = append(got, n.AssessmentID)
	}
	if len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Errorf("expected [a1 a2], got %v", got)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers = 10
	const perProducer = 100
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if !q.Enqueue(ctx, note(fmt.Sprintf("p%d-%d", p, i))) {
					t.Errorf("unexpected drop")
				}
			}
		}(p)
	}
	wg.Wait()
	_ = q.Close()

	seen := make(map[string]bool)
	timeout := time.After(2 * time.Second)
	ch := q.Dequeue(ctx)
	for {
		select {
		case n, ok := <-ch:
			if !ok {
				if len(seen) != producers*perProducer {
					t.Errorf("expected %d notifications, got %d", producers*perProducer, len(seen))
				}
				return
			}
			if seen[n.AssessmentID] {
				t.Errorf("notification %s delivered twice", n.AssessmentID)
			}
			seen[n.AssessmentID] = true
		case <-timeout:
			t.Fatal("timed out draining queue")
		}
	}
}
