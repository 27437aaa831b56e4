package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"golang.org/x/time/rate"

	"github.com/rkost/transmission/internal/prefs"
)

const (
	manualAnnounceInterval = time.Minute
	pollInterval           = 2 * time.Second
)

// for tests
var timeSince = time.Since

// Session owns the torrent engine and everything around it: the id
// namespace, queue order, rate limiters, seeding limits and the
// completion scripts. All exported methods are safe for concurrent
// use.
type Session struct {
	log       *slog.Logger
	configDir string
	// dataDir is the storage root the engine was built with. The
	// download-dir setting can drift from it afterwards; handles and
	// content paths always follow the engine.
	dataDir string

	client    *torrent.Client
	clientCfg *torrent.ClientConfig
	dlLimiter *rate.Limiter
	ulLimiter *rate.Limiter

	mu       sync.Mutex
	torrents map[int]*Torrent
	byHash   map[metainfo.Hash]int
	order    []int
	nextID   int
	settings runtimeSettings
	closed   bool

	cbMu      sync.Mutex
	callbacks []func(Event)

	stopPoll  chan struct{}
	pollDone  chan struct{}
	closeOnce sync.Once
}

// New starts a session in configDir, configured from the settings
// store. The caller owns shutdown via Close.
func New(configDir string, p *prefs.Store, log *slog.Logger) (*Session, error) {
	s := &Session{
		log:       log,
		configDir: configDir,
		torrents:  make(map[int]*Torrent),
		byHash:    make(map[metainfo.Hash]int),
		nextID:    1,
		stopPoll:  make(chan struct{}),
		pollDone:  make(chan struct{}),
	}
	s.settings = settingsFromStore(p)

	s.dlLimiter = rate.NewLimiter(rate.Inf, 0)
	s.ulLimiter = rate.NewLimiter(rate.Inf, 0)

	cfg := s.engineConfig()
	s.dataDir = cfg.DataDir
	if s.settings.incompleteEnabled {
		s.log.Warn("incomplete dir is kept in settings only; the engine writes content to the download dir",
			"incomplete_dir", s.settings.incompleteDir)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create data dir: %w", err)
	}

	client, err := torrent.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("session: start engine: %w", err)
	}
	s.client = client
	s.clientCfg = cfg

	s.applyRateLimitsLocked()

	go s.pollLoop()

	log.Info("session started",
		"config_dir", configDir,
		"download_dir", s.settings.downloadDir,
		"peer_port", s.settings.peerPort)
	return s, nil
}

// engineConfig builds the client configuration from the current
// settings. The engine reads it once at construction; content is
// always rooted at the download dir.
func (s *Session) engineConfig() *torrent.ClientConfig {
	cfg := torrent.NewDefaultClientConfig()
	cfg.DataDir = s.settings.downloadDir
	cfg.ListenPort = s.settings.peerPort
	cfg.NoDHT = !s.settings.dhtEnabled
	cfg.DisablePEX = !s.settings.pexEnabled
	cfg.DisableUTP = !s.settings.utpEnabled
	cfg.NoDefaultPortForwarding = !s.settings.portForwarding
	cfg.Seed = true
	cfg.DownloadRateLimiter = s.dlLimiter
	cfg.UploadRateLimiter = s.ulLimiter
	cfg.HeaderObfuscationPolicy = obfuscationPolicy(s.settings.encryption)
	return cfg
}

func obfuscationPolicy(mode int) torrent.HeaderObfuscationPolicy {
	switch mode {
	case prefs.EncryptionRequired:
		return torrent.HeaderObfuscationPolicy{Preferred: true, RequirePreferred: true}
	case prefs.EncryptionPreferred:
		return torrent.HeaderObfuscationPolicy{Preferred: true}
	default:
		return torrent.HeaderObfuscationPolicy{}
	}
}

// Torrents returns the managed torrents in queue order.
func (s *Session) Torrents() []*Torrent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Torrent, 0, len(s.order))
	for _, id := range s.order {
		if t := s.torrents[id]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the torrent with the given id, or nil.
func (s *Session) Find(id int) *Torrent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.torrents[id]
}

// TotalStats aggregates transfer counters across all torrents.
func (s *Session) TotalStats() (downloaded, uploaded int64, active int) {
	for _, t := range s.Torrents() {
		st := t.Stats()
		downloaded += st.Downloaded
		uploaded += st.Uploaded
		switch t.Activity() {
		case ActivityDownloading, ActivitySeeding:
			active++
		}
	}
	return downloaded, uploaded, active
}

// Count returns the number of managed torrents.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.torrents)
}

// StartTorrent moves a torrent out of the stopped state. With now
// set, the torrent bypasses queue accounting until its next stop.
func (s *Session) StartTorrent(id int, now bool) error {
	s.mu.Lock()
	t := s.torrents[id]
	if t == nil {
		s.mu.Unlock()
		return ErrNoSuchTorrent
	}
	wasStopped := t.stopped
	t.stopped = false
	t.forced = t.forced || now
	t.lastProgress = time.Now()
	s.recomputeQueueLocked()
	s.mu.Unlock()

	if wasStopped {
		s.emit(Event{Type: TorrentStarted, TorrentID: id})
	}
	return nil
}

// StopTorrent parks a torrent: no payload moves and its peers are
// dropped, but the engine keeps the torrent registered.
func (s *Session) StopTorrent(id int) error {
	s.mu.Lock()
	t := s.torrents[id]
	if t == nil {
		s.mu.Unlock()
		return ErrNoSuchTorrent
	}
	wasStopped := t.stopped
	t.stopped = true
	t.forced = false
	t.queued = false
	t.t.DisallowDataDownload()
	t.t.DisallowDataUpload()
	t.t.SetMaxEstablishedConns(0)
	s.recomputeQueueLocked()
	s.mu.Unlock()

	if !wasStopped {
		s.emit(Event{Type: TorrentStopped, TorrentID: id})
	}
	return nil
}

// VerifyTorrent re-hashes a torrent's data in the background and
// announces the result as a change.
func (s *Session) VerifyTorrent(id int) error {
	s.mu.Lock()
	t := s.torrents[id]
	if t == nil {
		s.mu.Unlock()
		return ErrNoSuchTorrent
	}
	if t.verifying || !t.hasInfo() {
		s.mu.Unlock()
		return nil
	}
	t.verifying = true
	s.mu.Unlock()

	s.emit(Event{Type: TorrentChanged, TorrentID: id})
	go func() {
		if err := t.t.VerifyDataContext(context.Background()); err != nil {
			s.log.Warn("verify failed", "torrent", t.Name(), "error", err)
		}
		s.mu.Lock()
		t.verifying = false
		s.recomputeQueueLocked()
		s.mu.Unlock()
		s.emit(Event{Type: TorrentChanged, TorrentID: id})
	}()
	return nil
}

// ReannounceTorrent asks the trackers for fresh peers. The engine
// announces on its own schedule; a manual request just resets the
// rate limit window and is refused for stopped torrents.
func (s *Session) ReannounceTorrent(id int) error {
	s.mu.Lock()
	t := s.torrents[id]
	if t == nil {
		s.mu.Unlock()
		return ErrNoSuchTorrent
	}
	if t.stopped {
		s.mu.Unlock()
		return nil
	}
	t.lastAnnounce = time.Now()
	s.mu.Unlock()

	s.log.Debug("manual reannounce", "torrent", t.Name())
	s.emit(Event{Type: TorrentChanged, TorrentID: id})
	return nil
}

// RemoveTorrent drops a torrent from the session. With deleteData the
// downloaded content is deleted too.
func (s *Session) RemoveTorrent(id int, deleteData bool) error {
	s.mu.Lock()
	t := s.torrents[id]
	if t == nil {
		s.mu.Unlock()
		return ErrNoSuchTorrent
	}
	s.mu.Unlock()

	ev := TorrentRemoving
	if deleteData {
		ev = TorrentTrashing
	}
	s.emit(Event{Type: ev, TorrentID: id})

	s.mu.Lock()
	delete(s.torrents, id)
	delete(s.byHash, t.hash)
	s.removeFromOrderLocked(id)
	s.recomputeQueueLocked()
	s.mu.Unlock()

	contentPath := t.ContentPath()
	t.t.Drop()
	if deleteData {
		if err := os.RemoveAll(contentPath); err != nil {
			s.log.Warn("delete data failed", "path", contentPath, "error", err)
		}
	}
	s.saveResume()
	s.emit(Event{Type: QueuePositionsChanged})
	s.log.Info("torrent removed", "torrent", t.Name(), "deleted_data", deleteData)
	return nil
}

// MoveTorrent relocates a stopped torrent's content directory. The
// engine holds its storage root for the torrent's lifetime, so moving
// is refused while the torrent runs and the relocated content is read
// from the new place on next launch. With move set the existing
// payload is carried over, otherwise it is left behind.
func (s *Session) MoveTorrent(id int, dir string, move bool) error {
	s.mu.Lock()
	t := s.torrents[id]
	if t == nil {
		s.mu.Unlock()
		return ErrNoSuchTorrent
	}
	if !t.stopped {
		s.mu.Unlock()
		return ErrTorrentRunning
	}
	oldPath := t.ContentPath()
	name := t.Name()
	s.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("session: create target dir: %w", err)
	}
	if move {
		if err := os.Rename(oldPath, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("session: move content: %w", err)
		}
	}

	s.mu.Lock()
	t.dir = dir
	s.mu.Unlock()

	s.saveResume()
	s.emit(Event{Type: TorrentMoved, TorrentID: id})
	s.log.Warn("relocated content is read from the new location after restart",
		"torrent", name, "dir", dir)
	return nil
}

// Close shuts the session down: the poller stops, resume state is
// written, and the engine closes all its connections. Close blocks
// until the engine has finished and may take a while; callers should
// run it off the UI loop. SessionClosed fires before Close returns.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.stopPoll)
		<-s.pollDone

		s.saveResume()

		for _, err := range s.client.Close() {
			if err != nil {
				s.log.Warn("engine close", "error", err)
			}
		}
		s.log.Info("session closed")
		s.emit(Event{Type: SessionClosed})
	})
}

// pollLoop drives the periodic per-torrent bookkeeping: progress
// timestamps for the stalled heuristic, completion scripts and
// seeding limits.
func (s *Session) pollLoop() {
	defer close(s.pollDone)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopPoll:
			return
		case <-ticker.C:
			s.pollOnce()
		}
	}
}

func (s *Session) pollOnce() {
	var events []Event
	var doneScripts, seedingScripts []*Torrent

	s.mu.Lock()
	for _, id := range s.order {
		t := s.torrents[id]
		if t == nil || t.stopped {
			continue
		}
		bytes := transferTotal(t.t.Stats())
		if bytes != t.lastBytes {
			t.lastBytes = bytes
			t.lastProgress = time.Now()
		}
		if t.complete() && !t.doneFired {
			t.doneFired = true
			doneScripts = append(doneScripts, t)
			events = append(events, Event{Type: TorrentChanged, TorrentID: id})
		}
		if t.complete() && s.seedingLimitReachedLocked(t) {
			t.stopped = true
			t.forced = false
			t.t.DisallowDataDownload()
			t.t.DisallowDataUpload()
			t.t.SetMaxEstablishedConns(0)
			seedingScripts = append(seedingScripts, t)
			events = append(events, Event{Type: TorrentStopped, TorrentID: id})
		}
	}
	if s.recomputeQueueLocked() {
		events = append(events, Event{Type: QueuePositionsChanged})
	}
	doneScript := s.settings.scriptDone
	doneOn := s.settings.scriptDoneEnabled
	seedingScript := s.settings.scriptSeedingDone
	seedingOn := s.settings.scriptSeedingDoneEnabled
	s.mu.Unlock()

	for _, t := range doneScripts {
		s.log.Info("download complete", "torrent", t.Name())
		if doneOn && doneScript != "" {
			s.runScript(doneScript, t)
		}
	}
	for _, t := range seedingScripts {
		s.log.Info("seeding limit reached", "torrent", t.Name())
		if seedingOn && seedingScript != "" {
			s.runScript(seedingScript, t)
		}
	}
	s.emitAll(events)
}

func (s *Session) seedingLimitReachedLocked(t *Torrent) bool {
	if s.settings.ratioLimitEnabled && t.ratio() >= s.settings.ratioLimit {
		return true
	}
	if s.settings.idleLimitEnabled && s.settings.idleMinutes > 0 &&
		!t.lastProgress.IsZero() &&
		timeSince(t.lastProgress).Minutes() >= float64(s.settings.idleMinutes) {
		return true
	}
	return false
}

// runScript invokes a user hook with the torrent described in the
// environment, matching the variables transmission-style scripts
// expect.
func (s *Session) runScript(path string, t *Torrent) {
	cmd := exec.Command(path)
	cmd.Env = append(os.Environ(),
		"TR_APP_VERSION="+Version,
		"TR_TORRENT_ID="+strconv.Itoa(t.ID()),
		"TR_TORRENT_NAME="+t.Name(),
		"TR_TORRENT_DIR="+t.Dir(),
		"TR_TORRENT_HASH="+t.InfoHash(),
	)
	go func() {
		if err := cmd.Run(); err != nil {
			s.log.Warn("completion script failed", "script", path, "error", err)
		}
	}()
}

// Version is the application version reported to scripts and the
// about dialog.
const Version = "0.1.0"
