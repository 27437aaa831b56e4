package session

import "fmt"

// EventType identifies a change announced by the session. Consumers
// receive events on the goroutine that caused them and are expected to
// marshal any UI work onto their own loop.
type EventType int

const (
	// TorrentAdded fires after a torrent joins the session.
	TorrentAdded EventType = iota
	// TorrentRemoving fires before a torrent leaves, data kept.
	TorrentRemoving
	// TorrentTrashing fires before a torrent leaves, data deleted.
	TorrentTrashing
	// TorrentChanged fires when a torrent's state needs re-reading.
	TorrentChanged
	// TorrentMoved fires after a torrent's content directory changed.
	TorrentMoved
	// TorrentStarted fires when a torrent leaves the stopped state.
	TorrentStarted
	// TorrentStopped fires when a torrent enters the stopped state.
	TorrentStopped
	// SessionChanged fires when session-wide settings changed from
	// outside the local settings store.
	SessionChanged
	// SessionClosed fires once teardown has finished.
	SessionClosed
	// QueuePositionsChanged fires after any queue reordering.
	QueuePositionsChanged
)

func (t EventType) String() string {
	switch t {
	case TorrentAdded:
		return "torrent-added"
	case TorrentRemoving:
		return "torrent-removing"
	case TorrentTrashing:
		return "torrent-trashing"
	case TorrentChanged:
		return "torrent-changed"
	case TorrentMoved:
		return "torrent-moved"
	case TorrentStarted:
		return "torrent-started"
	case TorrentStopped:
		return "torrent-stopped"
	case SessionChanged:
		return "session-changed"
	case SessionClosed:
		return "session-closed"
	case QueuePositionsChanged:
		return "queue-positions-changed"
	default:
		panic(fmt.Sprintf("unhandled event type %d", int(t)))
	}
}

// Event is a single session notification. TorrentID is zero for
// session-wide events.
type Event struct {
	Type      EventType
	TorrentID int
}

// OnEvent registers a callback invoked for every session event.
// Callbacks run on whatever goroutine produced the event and must not
// call back into the session synchronously.
func (s *Session) OnEvent(fn func(Event)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

func (s *Session) emit(ev Event) {
	s.cbMu.Lock()
	cbs := make([]func(Event), len(s.callbacks))
	copy(cbs, s.callbacks)
	s.cbMu.Unlock()

	for _, fn := range cbs {
		fn(ev)
	}
}

func (s *Session) emitAll(evs []Event) {
	for _, ev := range evs {
		s.emit(ev)
	}
}
