package session

import "errors"

var (
	// ErrCorruptTorrent reports a .torrent file or magnet URI that
	// could not be parsed.
	ErrCorruptTorrent = errors.New("session: corrupt torrent")

	// ErrDuplicateTorrent reports an add whose info-hash is already
	// present in the session.
	ErrDuplicateTorrent = errors.New("session: duplicate torrent")

	// ErrClosed reports an operation against a closed session.
	ErrClosed = errors.New("session: closed")

	// ErrNoSuchTorrent reports an id that resolves to nothing.
	ErrNoSuchTorrent = errors.New("session: no such torrent")

	// ErrTorrentRunning reports a relocation attempt on a torrent
	// that has not been stopped first.
	ErrTorrentRunning = errors.New("session: torrent must be stopped to relocate")
)
