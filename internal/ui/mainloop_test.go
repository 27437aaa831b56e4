package ui

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := NewLoop()
	l.Start()

	var got []int
	done := make(chan struct{})
	for i := 1; i <= 3; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not run queued work")
	}
	l.Stop()

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("execution order = %v, want [1 2 3]", got)
	}
}

func TestLoopStopDrainsQueuedWork(t *testing.T) {
	l := NewLoop()
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		l.Post(func() { ran.Add(1) })
	}
	// Start after queueing so Stop races nothing.
	l.Start()
	l.Stop()

	if got := ran.Load(); got != 5 {
		t.Errorf("ran %d queued functions, want 5", got)
	}
}

func TestLoopStopIsIdempotent(t *testing.T) {
	l := NewLoop()
	l.Start()
	l.Stop()
	l.Stop()
}

func TestPostAfterStopIsDropped(t *testing.T) {
	l := NewLoop()
	l.Start()
	l.Stop()

	var ran atomic.Bool
	l.Post(func() { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Error("work posted after Stop must not run")
	}
}
