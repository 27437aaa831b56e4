package session

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
)

// Activity is the coarse lifecycle state shown for a torrent.
type Activity int

const (
	ActivityStopped Activity = iota
	ActivityQueuedVerify
	ActivityVerifying
	ActivityQueuedDown
	ActivityDownloading
	ActivityQueuedSeed
	ActivitySeeding
)

func (a Activity) String() string {
	switch a {
	case ActivityStopped:
		return "stopped"
	case ActivityQueuedVerify:
		return "queued-verify"
	case ActivityVerifying:
		return "verifying"
	case ActivityQueuedDown:
		return "queued-down"
	case ActivityDownloading:
		return "downloading"
	case ActivityQueuedSeed:
		return "queued-seed"
	case ActivitySeeding:
		return "seeding"
	default:
		panic(fmt.Sprintf("unhandled activity %d", int(a)))
	}
}

// Torrent is the session's handle for one managed torrent. Fields
// guarded by the owning session's mutex; accessors take it.
type Torrent struct {
	s  *Session
	t  *torrent.Torrent
	id int

	hash metainfo.Hash

	// displayName covers the window between a magnet add and
	// metadata arrival, when the engine has no name yet.
	displayName string
	dir         string

	stopped   bool
	verifying bool
	// queued is true when the torrent wants a queue slot but has
	// not been granted one. Maintained by recomputeQueueLocked.
	queued bool
	// forced bypasses queue accounting until the next stop.
	forced bool

	doneFired    bool
	addedAt      time.Time
	lastAnnounce time.Time

	// progress tracking for the stalled-torrent heuristic.
	lastBytes    int64
	lastProgress time.Time
}

// ID returns the session-local identifier. IDs are never reused
// within one session.
func (t *Torrent) ID() int { return t.id }

// InfoHash returns the v1 info-hash in hex.
func (t *Torrent) InfoHash() string { return t.hash.HexString() }

// Name returns the torrent's display name, falling back to the
// magnet display name and then the info-hash while metadata is
// still being fetched.
func (t *Torrent) Name() string {
	if t.hasInfo() {
		return t.t.Name()
	}
	if t.displayName != "" {
		return t.displayName
	}
	return t.hash.HexString()
}

// Dir returns the directory holding the torrent's content.
func (t *Torrent) Dir() string { return t.dir }

// ContentPath returns the path of the torrent's top-level file or
// directory, for opening in a file manager.
func (t *Torrent) ContentPath() string {
	return filepath.Join(t.dir, t.Name())
}

func (t *Torrent) hasInfo() bool {
	select {
	case <-t.t.GotInfo():
		return true
	default:
		return false
	}
}

func (t *Torrent) complete() bool {
	if !t.hasInfo() {
		return false
	}
	length := t.t.Length()
	return length > 0 && t.t.BytesCompleted() >= length
}

// Activity reports the torrent's current lifecycle state.
func (t *Torrent) Activity() Activity {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.activityLocked()
}

func (t *Torrent) activityLocked() Activity {
	switch {
	case t.verifying:
		return ActivityVerifying
	case t.stopped:
		return ActivityStopped
	case t.queued && t.complete():
		return ActivityQueuedSeed
	case t.queued:
		return ActivityQueuedDown
	case t.complete():
		return ActivitySeeding
	default:
		return ActivityDownloading
	}
}

// QueuePosition returns the torrent's zero-based position in the
// session queue.
func (t *Torrent) QueuePosition() int {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.positionLocked(t.id)
}

// MagnetLink builds a magnet URI for the torrent, carrying its
// display name and any trackers the session knows about.
func (t *Torrent) MagnetLink() string {
	m := metainfo.Magnet{
		InfoHash:    t.hash,
		DisplayName: t.Name(),
	}
	if t.hasInfo() {
		mi := t.t.Metainfo()
		for _, tier := range mi.AnnounceList {
			m.Trackers = append(m.Trackers, tier...)
		}
	}
	return m.String()
}

// CanManualUpdate reports whether a manual tracker reannounce is
// currently allowed. Stopped torrents never are, and requests are
// rate limited to one per minute.
func (t *Torrent) CanManualUpdate() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	return time.Since(t.lastAnnounce) >= manualAnnounceInterval
}

// Stats is a point-in-time snapshot of transfer counters.
type Stats struct {
	Downloaded     int64
	Uploaded       int64
	BytesCompleted int64
	Length         int64
	Peers          int
	Seeding        bool
}

// transferTotal sums the payload moved in both directions. The
// snapshot is taken by value; its counters have pointer receivers.
func transferTotal(st torrent.TorrentStats) int64 {
	return st.BytesReadUsefulData.Int64() + st.BytesWrittenData.Int64()
}

// Stats snapshots the torrent's transfer counters.
func (t *Torrent) Stats() Stats {
	st := t.t.Stats()
	var length, completed int64
	if t.hasInfo() {
		length = t.t.Length()
		completed = t.t.BytesCompleted()
	}
	return Stats{
		Downloaded:     st.BytesReadUsefulData.Int64(),
		Uploaded:       st.BytesWrittenData.Int64(),
		BytesCompleted: completed,
		Length:         length,
		Peers:          st.ActivePeers,
		Seeding:        t.Activity() == ActivitySeeding,
	}
}

func (t *Torrent) ratio() float64 {
	st := t.t.Stats()
	down := st.BytesReadUsefulData.Int64()
	if down <= 0 {
		return 0
	}
	return float64(st.BytesWrittenData.Int64()) / float64(down)
}
