package dispatch

import (
	"sync"
	"testing"
	"time"
)

func TestGoRuntime_RunsTask(t *testing.T) {
	done := make(chan struct{})
	GoRuntime{}.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestSequentialRuntime_PreservesSubmissionOrder(t *testing.T) {
	rt := NewSequentialRuntime(16)
	defer rt.Close()

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 10; i++ {
		i := i
		rt.Submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	rt.Close() // waits for the worker to drain

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("ran %d tasks, want 10", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task order = %v, want ascending", got)
		}
	}
}

func TestSequentialRuntime_CloseIdempotent(t *testing.T) {
	rt := NewSequentialRuntime(0)
	rt.Close()
	rt.Close()
}

func TestSequentialRuntime_SubmitAfterCloseStillRuns(t *testing.T) {
	rt := NewSequentialRuntime(0)
	rt.Close()

	done := make(chan struct{})
	rt.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task submitted after Close never ran")
	}
}
