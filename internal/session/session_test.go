package session

import (
	"errors"
	"testing"

	"github.com/anacrolix/torrent"
)

func TestMoveTorrentRequiresStopped(t *testing.T) {
	s := testSession(1)
	s.torrents[1] = &Torrent{s: s, id: 1, displayName: "busy", stopped: false}

	err := s.MoveTorrent(1, t.TempDir(), true)
	if !errors.Is(err, ErrTorrentRunning) {
		t.Errorf("err = %v, want ErrTorrentRunning", err)
	}
}

func TestMoveTorrentUnknownID(t *testing.T) {
	s := testSession()
	if err := s.MoveTorrent(42, t.TempDir(), true); !errors.Is(err, ErrNoSuchTorrent) {
		t.Errorf("err = %v, want ErrNoSuchTorrent", err)
	}
}

func TestTransferTotalOfFreshSnapshot(t *testing.T) {
	var st torrent.TorrentStats
	if got := transferTotal(st); got != 0 {
		t.Errorf("transferTotal = %d, want 0", got)
	}
}
