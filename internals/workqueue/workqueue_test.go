package workqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestStart(t *testing.T) {
	q := New()
	q.Concurrency = 3
	var ran, running, maxRunning int32
	for i := 0; i < 50; i++ {
		q.Add(JobFunc(func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			atomic.AddInt32(&ran, 1)
			atomic.AddInt32(&running, -1)
			return nil
		}))
	}
	var last int
	q.OnProgress = func(p int) { last = p }

	if err := q.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ran != 50 {
		t.Errorf("ran %d jobs, want 50", ran)
	}
	if maxRunning > 3 {
		t.Errorf("%d jobs ran at the same time", maxRunning)
	}
	if last != 100 {
		t.Errorf("last progress = %d", last)
	}
}

func TestStartError(t *testing.T) {
	boom := errors.New("boom")
	q := New()
	for i := 0; i < 10; i++ {
		i := i
		q.Add(JobFunc(func(ctx context.Context) error {
			if i == 4 {
				return boom
			}
			return nil
		}))
	}
	if err := q.Start(context.Background()); !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
}

func TestStartEmpty(t *testing.T) {
	if err := New().Start(context.Background()); err != nil {
		t.Error(err)
	}
}
