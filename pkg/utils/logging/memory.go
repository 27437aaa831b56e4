package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is one captured log record, in the shape the message log window
// renders.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Source  string    `json:"source"`
}

// MemoryHandler keeps the most recent records in a ring buffer so the message
// log window can show history without re-reading process output. It is meant
// to be fanned out next to a terminal handler via Tee.
type MemoryHandler struct {
	mu    sync.Mutex
	buf   []Entry
	next  int
	full  bool
	level slog.Leveler
}

func NewMemoryHandler(capacity int, level slog.Leveler) *MemoryHandler {
	if capacity <= 0 {
		capacity = 512
	}
	if level == nil {
		level = slog.LevelDebug
	}
	return &MemoryHandler{
		buf:   make([]Entry, capacity),
		level: level,
	}
}

func (h *MemoryHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *MemoryHandler) Handle(_ context.Context, r slog.Record) error {
	entry := Entry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
		Source:  extractSource(r.PC),
	}

	h.mu.Lock()
	h.buf[h.next] = entry
	h.next++
	if h.next == len(h.buf) {
		h.next = 0
		h.full = true
	}
	h.mu.Unlock()

	return nil
}

func (h *MemoryHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *MemoryHandler) WithGroup(name string) slog.Handler       { return h }

// Entries returns the captured records, oldest first.
func (h *MemoryHandler) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		out := make([]Entry, h.next)
		copy(out, h.buf[:h.next])
		return out
	}

	out := make([]Entry, 0, len(h.buf))
	out = append(out, h.buf[h.next:]...)
	out = append(out, h.buf[:h.next]...)
	return out
}

// Tee dispatches every record to each handler that has it enabled.
type Tee struct {
	handlers []slog.Handler
}

func NewTee(handlers ...slog.Handler) *Tee {
	return &Tee{handlers: handlers}
}

func (t *Tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *Tee) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *Tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &Tee{handlers: next}
}

func (t *Tee) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &Tee{handlers: next}
}
