// Package ui marshals work onto a single dispatch goroutine and hides
// the desktop runtime behind a small interface, so everything above it
// can be driven by fakes.
package ui

import "sync"

// Loop runs queued functions one at a time on a dedicated goroutine.
// Session callbacks and timers Post onto it; everything that touches
// frontend state runs inside it.
type Loop struct {
	work chan func()

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		work: make(chan func(), 64),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start runs the dispatch goroutine. Call once.
func (l *Loop) Start() {
	go l.run()
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			// Drain what was queued before the stop so teardown
			// work posted from callbacks still runs.
			for {
				select {
				case fn := <-l.work:
					fn()
				default:
					return
				}
			}
		case fn := <-l.work:
			fn()
		}
	}
}

// Post queues fn to run on the loop goroutine. Posts after Stop are
// dropped. Safe from any goroutine, including the loop itself.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.quit:
	case l.work <- fn:
	}
}

// Stop ends the loop after draining already queued work and waits for
// the dispatch goroutine to exit. Idempotent.
func (l *Loop) Stop() {
	l.quitOnce.Do(func() { close(l.quit) })
	<-l.done
}
