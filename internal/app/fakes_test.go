package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rkost/transmission/internal/prefs"
	"github.com/rkost/transmission/internal/session"
	"github.com/rkost/transmission/internal/ui"
)

type fakeTorrent struct {
	id        int
	name      string
	hash      string
	dir       string
	activity  session.Activity
	pos       int
	magnet    string
	canUpdate bool
	stats     session.Stats
}

func (t *fakeTorrent) ID() int                    { return t.id }
func (t *fakeTorrent) Name() string               { return t.name }
func (t *fakeTorrent) InfoHash() string           { return t.hash }
func (t *fakeTorrent) Dir() string                { return t.dir }
func (t *fakeTorrent) ContentPath() string        { return t.dir + "/" + t.name }
func (t *fakeTorrent) Activity() session.Activity { return t.activity }
func (t *fakeTorrent) QueuePosition() int         { return t.pos }
func (t *fakeTorrent) MagnetLink() string         { return t.magnet }
func (t *fakeTorrent) CanManualUpdate() bool      { return t.canUpdate }
func (t *fakeTorrent) Stats() session.Stats       { return t.stats }

type execCall struct {
	method string
	args   session.Args
}

// fakeEngine records every call; setter invocations land in calls as
// formatted strings so tests can assert on them loosely.
type fakeEngine struct {
	mu       sync.Mutex
	torrents []*fakeTorrent
	execs    []execCall
	calls    []string
	removed  []int
	moved    []string
	added    []string
	addErr   error
	closed   bool
	cb       func(session.Event)
	settings map[string]any
	altSpeed bool
}

func (e *fakeEngine) record(format string, args ...any) {
	e.mu.Lock()
	e.calls = append(e.calls, fmt.Sprintf(format, args...))
	e.mu.Unlock()
}

func (e *fakeEngine) callLog() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEngine) OnEvent(fn func(session.Event)) { e.cb = fn }

func (e *fakeEngine) Torrents() []TorrentHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]TorrentHandle, len(e.torrents))
	for i, t := range e.torrents {
		out[i] = t
	}
	return out
}

func (e *fakeEngine) Find(id int) TorrentHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.torrents {
		if t.id == id {
			return t
		}
	}
	return nil
}

func (e *fakeEngine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.torrents)
}

func (e *fakeEngine) Exec(method string, args session.Args) error {
	e.mu.Lock()
	e.execs = append(e.execs, execCall{method: method, args: args})
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) execLog() []execCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]execCall(nil), e.execs...)
}

func (e *fakeEngine) AddFile(path string) (TorrentHandle, error) {
	e.mu.Lock()
	e.added = append(e.added, path)
	err := e.addErr
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &fakeTorrent{name: path}, nil
}

func (e *fakeEngine) AddMagnet(uri string) (TorrentHandle, error) {
	return e.AddFile(uri)
}

func (e *fakeEngine) AddURL(_ context.Context, loc string) (TorrentHandle, error) {
	return e.AddFile(loc)
}

func (e *fakeEngine) RemoveTorrent(id int, deleteData bool) error {
	e.mu.Lock()
	e.removed = append(e.removed, id)
	e.mu.Unlock()
	e.record("RemoveTorrent(%d, %t)", id, deleteData)
	return nil
}

func (e *fakeEngine) MoveTorrent(id int, dir string, move bool) error {
	e.mu.Lock()
	e.moved = append(e.moved, fmt.Sprintf("%d:%s", id, dir))
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) CreateTorrent(opts session.CreateOptions) error {
	e.record("CreateTorrent(%s, %s)", opts.ContentPath, opts.OutPath)
	return nil
}

func (e *fakeEngine) LoadSaved() { e.record("LoadSaved()") }

func (e *fakeEngine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

func (e *fakeEngine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *fakeEngine) TotalStats() (int64, int64, int) { return 0, 0, 0 }

func (e *fakeEngine) Settings() map[string]any {
	if e.settings == nil {
		return map[string]any{}
	}
	return e.settings
}

func (e *fakeEngine) AltSpeedEnabled() bool { return e.altSpeed }

func (e *fakeEngine) SetDownloadDir(dir string) { e.record("SetDownloadDir(%s)", dir) }
func (e *fakeEngine) SetIncompleteDir(dir string, on bool) {
	e.record("SetIncompleteDir(%s, %t)", dir, on)
}
func (e *fakeEngine) SetRenamePartialFiles(on bool) { e.record("SetRenamePartialFiles(%t)", on) }
func (e *fakeEngine) SetSpeedLimit(d, u int64, dOn, uOn bool) {
	e.record("SetSpeedLimit(%d, %d, %t, %t)", d, u, dOn, uOn)
}
func (e *fakeEngine) SetAltSpeed(d, u int64, on bool) {
	e.record("SetAltSpeed(%d, %d, %t)", d, u, on)
}
func (e *fakeEngine) SetRatioLimit(l float64, on bool) { e.record("SetRatioLimit(%v, %t)", l, on) }
func (e *fakeEngine) SetIdleLimit(m int, on bool)      { e.record("SetIdleLimit(%d, %t)", m, on) }
func (e *fakeEngine) SetQueueSize(n int)               { e.record("SetQueueSize(%d)", n) }
func (e *fakeEngine) SetStalledMinutes(n int)          { e.record("SetStalledMinutes(%d)", n) }
func (e *fakeEngine) SetPeerLimits(g, p int)           { e.record("SetPeerLimits(%d, %d)", g, p) }
func (e *fakeEngine) SetEncryption(m int)              { e.record("SetEncryption(%d)", m) }
func (e *fakeEngine) SetPeerPort(p int)                { e.record("SetPeerPort(%d)", p) }
func (e *fakeEngine) SetPeerPortRandomOnStart(on bool) {
	e.record("SetPeerPortRandomOnStart(%t)", on)
}
func (e *fakeEngine) SetDHTEnabled(on bool)            { e.record("SetDHTEnabled(%t)", on) }
func (e *fakeEngine) SetPEXEnabled(on bool)            { e.record("SetPEXEnabled(%t)", on) }
func (e *fakeEngine) SetLPDEnabled(on bool)            { e.record("SetLPDEnabled(%t)", on) }
func (e *fakeEngine) SetUTPEnabled(on bool)            { e.record("SetUTPEnabled(%t)", on) }
func (e *fakeEngine) SetPortForwarding(on bool)        { e.record("SetPortForwarding(%t)", on) }
func (e *fakeEngine) SetDefaultTrackers(list string)   { e.record("SetDefaultTrackers(%s)", list) }
func (e *fakeEngine) SetRPCEnabled(on bool, port int)  { e.record("SetRPCEnabled(%t, %d)", on, port) }
func (e *fakeEngine) SetRPCCredentials(u, p string, req bool) {
	e.record("SetRPCCredentials(%s, %s, %t)", u, p, req)
}
func (e *fakeEngine) SetRPCWhitelist(list string, on bool) {
	e.record("SetRPCWhitelist(%s, %t)", list, on)
}
func (e *fakeEngine) SetDoneScript(p string, on bool)  { e.record("SetDoneScript(%s, %t)", p, on) }
func (e *fakeEngine) SetSeedingDoneScript(p string, on bool) {
	e.record("SetSeedingDoneScript(%s, %t)", p, on)
}
func (e *fakeEngine) SetStartAddedTorrents(on bool)    { e.record("SetStartAddedTorrents(%t)", on) }
func (e *fakeEngine) SetTrashOriginalTorrentFiles(on bool) {
	e.record("SetTrashOriginalTorrentFiles(%t)", on)
}

type emittedEvent struct {
	name    string
	payload any
}

type shownDialog struct {
	kind    ui.DialogKind
	title   string
	message string
}

type fakeFrontend struct {
	mu           sync.Mutex
	events       []emittedEvent
	dialogs      []shownDialog
	dialogChoice string
	clipboard    string
	urls         []string
	shown        int
	hidden       int
	quitCalls    int
	chooseFiles  []string
	chooseDir    string
}

func (f *fakeFrontend) ShowWindow() { f.mu.Lock(); f.shown++; f.mu.Unlock() }
func (f *fakeFrontend) HideWindow() { f.mu.Lock(); f.hidden++; f.mu.Unlock() }
func (f *fakeFrontend) Quit()       { f.mu.Lock(); f.quitCalls++; f.mu.Unlock() }

func (f *fakeFrontend) EmitEvent(name string, payload any) {
	f.mu.Lock()
	f.events = append(f.events, emittedEvent{name: name, payload: payload})
	f.mu.Unlock()
}

func (f *fakeFrontend) emitted(name string) []emittedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emittedEvent
	for _, ev := range f.events {
		if ev.name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeFrontend) ShowDialog(kind ui.DialogKind, title, message string, _ []string) (string, error) {
	f.mu.Lock()
	f.dialogs = append(f.dialogs, shownDialog{kind: kind, title: title, message: message})
	choice := f.dialogChoice
	f.mu.Unlock()
	return choice, nil
}

func (f *fakeFrontend) shownDialogs() []shownDialog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shownDialog(nil), f.dialogs...)
}

func (f *fakeFrontend) ChooseTorrentFiles() ([]string, error) { return f.chooseFiles, nil }
func (f *fakeFrontend) ChooseDirectory(_, _ string) (string, error) {
	return f.chooseDir, nil
}

func (f *fakeFrontend) SetClipboard(text string) error {
	f.mu.Lock()
	f.clipboard = text
	f.mu.Unlock()
	return nil
}

func (f *fakeFrontend) clipboardText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clipboard
}

func (f *fakeFrontend) OpenURL(url string) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
}

func (f *fakeFrontend) WindowGeometry() (int, int, bool) { return 1280, 800, false }

// newTestApp builds an app over fakes with its dispatch loop running.
// The cleanup stops the loop.
func newTestApp(t *testing.T) (*App, *fakeEngine, *fakeFrontend) {
	t.Helper()
	engine := &fakeEngine{}
	frontend := &fakeFrontend{}
	store, err := prefs.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	a := New(Config{
		Logger:   slog.New(slog.DiscardHandler),
		LogLevel: new(slog.LevelVar),
		Prefs:    store,
		Engine:   engine,
		Frontend: frontend,
	})
	a.loop.Start()
	t.Cleanup(a.loop.Stop)
	return a, engine, frontend
}

// drain waits for everything queued on the dispatch loop so far.
func drain(t *testing.T, a *App) {
	t.Helper()
	done := make(chan struct{})
	a.loop.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch loop stalled")
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
