package session

import (
	"os"
	"path/filepath"

	"github.com/anacrolix/torrent/bencode"
)

// Resume state is a small bencoded file in the config directory
// listing every managed torrent as a magnet link plus its run state.
// Bencode has no boolean type, so flags are stored as integers.

const resumeFile = "resume.bencode"

type resumeEntry struct {
	Magnet  string `bencode:"magnet"`
	Name    string `bencode:"name"`
	Dir     string `bencode:"dir"`
	Stopped int64  `bencode:"stopped"`
}

type resumeState struct {
	Torrents []resumeEntry `bencode:"torrents"`
}

func (s *Session) resumePath() string {
	return filepath.Join(s.configDir, resumeFile)
}

func (s *Session) saveResume() {
	s.mu.Lock()
	state := resumeState{}
	for _, id := range s.order {
		t := s.torrents[id]
		if t == nil {
			continue
		}
		var stopped int64
		if t.stopped {
			stopped = 1
		}
		state.Torrents = append(state.Torrents, resumeEntry{
			Magnet:  t.MagnetLink(),
			Name:    t.Name(),
			Dir:     t.dir,
			Stopped: stopped,
		})
	}
	s.mu.Unlock()

	data, err := bencode.Marshal(state)
	if err != nil {
		s.log.Warn("encode resume state", "error", err)
		return
	}
	if err := os.WriteFile(s.resumePath(), data, 0o644); err != nil {
		s.log.Warn("write resume state", "error", err)
	}
}

// LoadSaved restores the torrents recorded by the previous run. Each
// restored torrent fires TorrentAdded as usual. Missing or unreadable
// state is not an error; a fresh install has none.
func (s *Session) LoadSaved() {
	data, err := os.ReadFile(s.resumePath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("read resume state", "path", s.resumePath(), "error", err)
		}
		return
	}
	var state resumeState
	if err := bencode.Unmarshal(data, &state); err != nil {
		s.log.Warn("decode resume state", "path", s.resumePath(), "error", err)
		return
	}

	for _, entry := range state.Torrents {
		t, err := s.AddMagnet(entry.Magnet)
		if err != nil {
			s.log.Warn("restore torrent", "name", entry.Name, "error", err)
			continue
		}
		s.mu.Lock()
		if entry.Dir != "" {
			t.dir = entry.Dir
		}
		s.mu.Unlock()
		if entry.Stopped == 1 {
			if err := s.StopTorrent(t.ID()); err != nil {
				s.log.Warn("restore stop state", "name", entry.Name, "error", err)
			}
		}
	}
	s.log.Info("resume state loaded", "torrents", len(state.Torrents))
}
