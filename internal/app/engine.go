// Package app is the desktop shell: it owns the dispatch loop, maps
// UI actions and settings changes onto the torrent session, and keeps
// the frontend informed about everything the session does.
package app

import (
	"context"

	"github.com/rkost/transmission/internal/session"
)

// TorrentHandle is the per-torrent surface the shell reads.
type TorrentHandle interface {
	ID() int
	Name() string
	InfoHash() string
	Dir() string
	ContentPath() string
	Activity() session.Activity
	QueuePosition() int
	MagnetLink() string
	CanManualUpdate() bool
	Stats() session.Stats
}

// Engine is the shell's view of the torrent session. The production
// implementation wraps session.Session; tests substitute a fake.
type Engine interface {
	OnEvent(fn func(session.Event))

	Torrents() []TorrentHandle
	Find(id int) TorrentHandle
	Count() int

	Exec(method string, args session.Args) error
	AddFile(path string) (TorrentHandle, error)
	AddMagnet(uri string) (TorrentHandle, error)
	AddURL(ctx context.Context, loc string) (TorrentHandle, error)
	RemoveTorrent(id int, deleteData bool) error
	MoveTorrent(id int, dir string, move bool) error
	CreateTorrent(opts session.CreateOptions) error

	LoadSaved()
	Close()
	TotalStats() (downloaded, uploaded int64, active int)
	Settings() map[string]any
	AltSpeedEnabled() bool

	SetDownloadDir(dir string)
	SetIncompleteDir(dir string, enabled bool)
	SetRenamePartialFiles(on bool)
	SetSpeedLimit(downKB, upKB int64, downEnabled, upEnabled bool)
	SetAltSpeed(downKB, upKB int64, enabled bool)
	SetRatioLimit(limit float64, enabled bool)
	SetIdleLimit(minutes int, enabled bool)
	SetQueueSize(n int)
	SetStalledMinutes(n int)
	SetPeerLimits(global, perTorrent int)
	SetEncryption(mode int)
	SetPeerPort(port int)
	SetPeerPortRandomOnStart(on bool)
	SetDHTEnabled(on bool)
	SetPEXEnabled(on bool)
	SetLPDEnabled(on bool)
	SetUTPEnabled(on bool)
	SetPortForwarding(on bool)
	SetDefaultTrackers(list string)
	SetRPCEnabled(on bool, port int)
	SetRPCCredentials(username, password string, required bool)
	SetRPCWhitelist(list string, enabled bool)
	SetDoneScript(path string, enabled bool)
	SetSeedingDoneScript(path string, enabled bool)
	SetStartAddedTorrents(on bool)
	SetTrashOriginalTorrentFiles(on bool)
}

// sessionEngine adapts *session.Session to the Engine interface. The
// only translation needed is widening concrete torrent handles to the
// interface type.
type sessionEngine struct {
	*session.Session
}

// NewEngine wraps a session for use by the shell.
func NewEngine(s *session.Session) Engine {
	return sessionEngine{s}
}

func (e sessionEngine) Torrents() []TorrentHandle {
	ts := e.Session.Torrents()
	out := make([]TorrentHandle, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

func (e sessionEngine) Find(id int) TorrentHandle {
	t := e.Session.Find(id)
	if t == nil {
		return nil
	}
	return t
}

func (e sessionEngine) AddFile(path string) (TorrentHandle, error) {
	t, err := e.Session.AddFile(path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (e sessionEngine) AddMagnet(uri string) (TorrentHandle, error) {
	t, err := e.Session.AddMagnet(uri)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (e sessionEngine) AddURL(ctx context.Context, loc string) (TorrentHandle, error) {
	t, err := e.Session.AddURL(ctx, loc)
	if err != nil {
		return nil, err
	}
	return t, nil
}
