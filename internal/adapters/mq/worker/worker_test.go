package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/assessor/internal/adapters/mq/queue"
	worker "github.com/okian/assessor/internal/adapters/mq/worker"
	model "github.com/okian/assessor/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []string
	fail map[string]error
	seen chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{fail: map[string]error{}, seen: make(chan string, 100)}
}

func (s *recordingSink) Deliver(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	err := s.fail[n.AssessmentID]
	if err == nil {
		s.got = append(s.got, n.AssessmentID)
	}
	s.mu.Unlock()
	s.seen <- n.AssessmentID
	return err
}

func (s *recordingSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func waitFor(ch <-chan string, n int) bool {
	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-timeout:
			return false
		}
	}
	return true
}

func submitted(id string) model.Notification {
	return model.Notification{Kind: model.NotifySubmitted, AssessmentID: id}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a queue and a recording sink", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		sink := newRecordingSink()

		convey.Convey("When a worker runs", func() {
			w := worker.NewInMemoryWorker(q, sink, worker.WithName("test-worker"))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.So(w.Name(), convey.ShouldEqual, "test-worker")

			convey.Convey("And notifications are enqueued", func() {
				convey.So(q.Enqueue(ctx, submitted("a1")), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, submitted("a2")), convey.ShouldBeTrue)

				convey.Convey("Then they are delivered in order", func() {
					convey.So(waitFor(sink.seen, 2), convey.ShouldBeTrue)
					convey.So(sink.delivered(), convey.ShouldResemble, []string{"a1", "a2"})
				})
			})

			convey.Convey("And the sink fails for one notification", func() {
				sink.fail["bad"] = errors.New("sink down")
				q.Enqueue(ctx, submitted("bad"))
				q.Enqueue(ctx, submitted("good"))

				convey.Convey("Then the worker keeps going", func() {
					convey.So(waitFor(sink.seen, 2), convey.ShouldBeTrue)
					convey.So(sink.delivered(), convey.ShouldResemble, []string{"good"})
				})
			})

			convey.Convey("And it is shut down", func() {
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()

				convey.Convey("Then it stops cleanly", func() {
					convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
					convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When the context is cancelled", func() {
			w := worker.NewInMemoryWorker(q, sink)
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then the worker exits", func() {
				select {
				case <-w.Done():
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		sink := newRecordingSink()

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, q, sink)

			convey.Convey("Then it still has workers", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When started and fed notifications", func() {
			p := worker.NewPool(3, q, sink)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)
			p.Start(ctx)

			for i := 0; i < 20; i++ {
				q.Enqueue(ctx, submitted(fmt.Sprintf("a%d", i)))
			}

			convey.Convey("Then every notification is delivered exactly once", func() {
				convey.So(waitFor(sink.seen, 20), convey.ShouldBeTrue)
				got := sink.delivered()
				convey.So(len(got), convey.ShouldEqual, 20)
				unique := map[string]bool{}
				for _, id := range got {
					unique[id] = true
				}
				convey.So(len(unique), convey.ShouldEqual, 20)
				convey.So(p.Delivered(), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When shut down with notifications still queued", func() {
			p := worker.NewPool(2, q, sink)
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				q.Enqueue(ctx, submitted(fmt.Sprintf("late%d", i)))
			}
			p.Start(ctx)

			sctx, scancel := context.WithTimeout(ctx, 2*time.Second)
			defer scancel()
			err := p.Shutdown(sctx)

			convey.Convey("Then the queue is drained and closed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(sink.delivered()), convey.ShouldEqual, 5)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shut down without being started", func() {
			p := worker.NewPool(2, q, sink)

			convey.Convey("Then it returns immediately", func() {
				convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When using a SinkFunc", func() {
			var calls int
			var mu sync.Mutex
			done := make(chan struct{}, 1)
			fn := worker.SinkFunc(func(context.Context, model.Notification) error {
				mu.Lock()
				calls++
				mu.Unlock()
				done <- struct{}{}
				return nil
			})
			p := worker.NewPool(1, q, fn)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)
			q.Enqueue(ctx, submitted("f1"))

			convey.Convey("Then the function is called", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
				}
				mu.Lock()
				defer mu.Unlock()
				convey.So(calls, convey.ShouldEqual, 1)
			})
		})
	})
}
