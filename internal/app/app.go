package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rkost/transmission/internal/metrics"
	"github.com/rkost/transmission/internal/prefs"
	"github.com/rkost/transmission/internal/session"
	"github.com/rkost/transmission/internal/ui"
	"github.com/rkost/transmission/pkg/syncmap"
	"github.com/rkost/transmission/pkg/utils/logging"
)

const (
	refreshInterval = time.Second
	refreshSoonLag  = 100 * time.Millisecond
)

// App wires the session, the settings store and the frontend
// together. All state below the mutexes is touched from the dispatch
// loop plus whatever goroutine the runtime calls bound methods on.
type App struct {
	log      *slog.Logger
	logLevel *slog.LevelVar
	memLog   *logging.MemoryHandler

	prefs    *prefs.Store
	engine   Engine
	loop     *ui.Loop
	frontend ui.Frontend
	metrics  *metrics.Server

	mu          sync.Mutex
	selection   []int
	trayMode    bool
	windowShown bool

	details *syncmap.Map[string, []int]

	addErrs struct {
		sync.Mutex
		corrupt    []string
		duplicates []string
		scheduled  bool
	}

	soonPending  atomic.Bool
	quitting     atomic.Bool
	readyToClose atomic.Bool

	stopRefresh chan struct{}
	refreshDone chan struct{}
}

// Config carries the dependencies New needs.
type Config struct {
	Logger   *slog.Logger
	LogLevel *slog.LevelVar
	MemLog   *logging.MemoryHandler
	Prefs    *prefs.Store
	Engine   Engine
	Frontend ui.Frontend
	Metrics  *metrics.Server
}

func New(cfg Config) *App {
	a := &App{
		log:         cfg.Logger,
		logLevel:    cfg.LogLevel,
		memLog:      cfg.MemLog,
		prefs:       cfg.Prefs,
		engine:      cfg.Engine,
		frontend:    cfg.Frontend,
		metrics:     cfg.Metrics,
		loop:        ui.NewLoop(),
		details:     syncmap.New[string, []int](),
		stopRefresh: make(chan struct{}),
		refreshDone: make(chan struct{}),
	}
	a.trayMode = cfg.Prefs.Bool(prefs.KeyShowTrayIcon)
	a.windowShown = true
	return a
}

// SetFrontend replaces the frontend. Used at startup, once the
// runtime context exists.
func (a *App) SetFrontend(f ui.Frontend) {
	a.mu.Lock()
	a.frontend = f
	a.mu.Unlock()
}

func (a *App) front() ui.Frontend {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frontend
}

// Startup runs once the runtime is up: it starts the dispatch loop,
// subscribes to the session, restores saved torrents, registers the
// magnet handler and kicks off the periodic model refresh.
func (a *App) Startup(ctx context.Context) {
	if a.frontend == nil {
		a.SetFrontend(ui.NewWailsFrontend(ctx))
	}
	a.loop.Start()

	a.engine.OnEvent(a.onEngineEvent)

	if a.prefs.Bool(prefs.KeyMetricsEnabled) && a.metrics != nil {
		a.metrics.Start(a.prefs.String(prefs.KeyMetricsBindAddr))
	}
	a.applyMessageLevel()

	registerMagnetHandler(a.log)

	a.engine.LoadSaved()

	go a.refreshLoop()

	a.log.Info("shell started", "torrents", a.engine.Count())
}

// onEngineEvent runs on whatever goroutine the session fired from and
// marshals the reaction onto the dispatch loop. Every event type must
// be handled; a new type showing up unhandled is a programming error.
func (a *App) onEngineEvent(ev session.Event) {
	metrics.EventsTotal.WithLabelValues(ev.Type.String()).Inc()

	switch ev.Type {
	case session.TorrentAdded,
		session.TorrentChanged,
		session.TorrentStarted,
		session.TorrentStopped,
		session.TorrentMoved,
		session.QueuePositionsChanged:
		a.RefreshSoon()
	case session.TorrentRemoving, session.TorrentTrashing:
		id := ev.TorrentID
		a.loop.Post(func() {
			a.pruneSelection(id)
			a.refresh()
		})
	case session.SessionChanged:
		a.loop.Post(a.adoptSessionSettings)
	case session.SessionClosed:
		// The engine is gone; nothing left to shut down cleanly
		// but the shell itself.
		a.Quit()
	default:
		panic(fmt.Sprintf("unhandled session event %d", int(ev.Type)))
	}
}

// adoptSessionSettings pulls engine-side settings into the local
// store and runs the relay for whatever actually changed.
func (a *App) adoptSessionSettings() {
	before := a.prefs.Snapshot()
	for key, value := range a.engine.Settings() {
		a.prefs.Set(key, value)
	}
	changed := prefs.Diff(before, a.prefs.Snapshot())
	for _, key := range changed {
		a.relayPref(key)
	}
	if len(changed) > 0 {
		if err := a.prefs.Save(); err != nil {
			a.log.Warn("save settings", "error", err)
		}
		a.front().EmitEvent("prefs-changed", changed)
	}
}

// SetPref is bound to the frontend: it stores one setting and relays
// the change to whoever acts on it.
func (a *App) SetPref(key string, value any) {
	a.loop.Post(func() {
		before := a.prefs.Snapshot()
		a.prefs.Set(key, value)
		changed := prefs.Diff(before, a.prefs.Snapshot())
		for _, k := range changed {
			a.relayPref(k)
		}
		if len(changed) == 0 {
			return
		}
		if err := a.prefs.Save(); err != nil {
			a.log.Warn("save settings", "error", err)
		}
		a.front().EmitEvent("prefs-changed", changed)
	})
}

// GetPrefs is bound to the frontend: a canonical snapshot of every
// setting.
func (a *App) GetPrefs() map[string]any {
	return a.prefs.Snapshot()
}

// SetSelection is bound to the frontend: records which torrent rows
// are selected and recomputes action sensitivity.
func (a *App) SetSelection(ids []int) {
	a.loop.Post(func() {
		a.mu.Lock()
		a.selection = append([]int(nil), ids...)
		a.mu.Unlock()
		a.refreshActions()
	})
}

func (a *App) selectedIDs() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.selection...)
}

func (a *App) pruneSelection(id int) {
	a.mu.Lock()
	kept := a.selection[:0]
	for _, v := range a.selection {
		if v != id {
			kept = append(kept, v)
		}
	}
	a.selection = kept
	a.mu.Unlock()
}

// refreshLoop drives the once-a-second model update while the app is
// running.
func (a *App) refreshLoop() {
	defer close(a.refreshDone)
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopRefresh:
			return
		case <-ticker.C:
			a.loop.Post(a.refresh)
		}
	}
}

// RefreshSoon coalesces bursts of change notifications into a single
// refresh shortly after the first one.
func (a *App) RefreshSoon() {
	if !a.soonPending.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(refreshSoonLag, func() {
		a.soonPending.Store(false)
		a.loop.Post(a.refresh)
	})
}

// refresh pushes a fresh torrent snapshot to the frontend and updates
// the gauges. Runs on the dispatch loop.
func (a *App) refresh() {
	if a.quitting.Load() {
		return
	}
	views := a.torrentViews()
	a.front().EmitEvent("torrents", views)
	a.refreshActions()

	down, up, active := a.engine.TotalStats()
	metrics.TorrentsManaged.Set(float64(len(views)))
	metrics.TorrentsActive.Set(float64(active))
	metrics.DownloadedBytes.Set(float64(down))
	metrics.UploadedBytes.Set(float64(up))
}

// TorrentView is the row model handed to the frontend.
type TorrentView struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Hash            string  `json:"hash"`
	Activity        string  `json:"activity"`
	QueuePosition   int     `json:"queuePosition"`
	Downloaded      int64   `json:"downloaded"`
	Uploaded        int64   `json:"uploaded"`
	BytesCompleted  int64   `json:"bytesCompleted"`
	Length          int64   `json:"length"`
	Percent         float64 `json:"percent"`
	Peers           int     `json:"peers"`
	CanManualUpdate bool    `json:"canManualUpdate"`
}

func viewOf(t TorrentHandle) TorrentView {
	st := t.Stats()
	var percent float64
	if st.Length > 0 {
		percent = float64(st.BytesCompleted) / float64(st.Length)
	}
	return TorrentView{
		ID:              t.ID(),
		Name:            t.Name(),
		Hash:            t.InfoHash(),
		Activity:        t.Activity().String(),
		QueuePosition:   t.QueuePosition(),
		Downloaded:      st.Downloaded,
		Uploaded:        st.Uploaded,
		BytesCompleted:  st.BytesCompleted,
		Length:          st.Length,
		Percent:         percent,
		Peers:           st.Peers,
		CanManualUpdate: t.CanManualUpdate(),
	}
}

func (a *App) torrentViews() []TorrentView {
	ts := a.engine.Torrents()
	views := make([]TorrentView, 0, len(ts))
	for _, t := range ts {
		views = append(views, viewOf(t))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].QueuePosition < views[j].QueuePosition
	})
	return views
}

// Torrents is bound to the frontend for its initial paint.
func (a *App) Torrents() []TorrentView {
	return a.torrentViews()
}

// MessageLog is bound to the frontend: recent log entries for the
// message log window, oldest first.
func (a *App) MessageLog() []logging.Entry {
	if a.memLog == nil {
		return nil
	}
	return a.memLog.Entries()
}

// Version is bound to the frontend for the about dialog.
func (a *App) Version() string {
	return session.Version
}
