package session

import (
	"fmt"
	"os"
	"time"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
)

const createPieceLength = 256 * 1024

// CreateOptions describe a torrent to build from local content.
type CreateOptions struct {
	ContentPath string
	OutPath     string
	Trackers    []string
	Comment     string
	Private     bool
}

// CreateTorrent hashes the content at ContentPath and writes a
// .torrent file describing it. The result is not added to the session;
// callers add it like any other file.
func (s *Session) CreateTorrent(opts CreateOptions) error {
	info := metainfo.Info{PieceLength: createPieceLength}
	if err := info.BuildFromFilePath(opts.ContentPath); err != nil {
		return fmt.Errorf("session: hash content: %w", err)
	}
	if opts.Private {
		private := true
		info.Private = &private
	}
	infoBytes, err := bencode.Marshal(info)
	if err != nil {
		return fmt.Errorf("session: encode info: %w", err)
	}

	mi := metainfo.MetaInfo{
		InfoBytes:    infoBytes,
		Comment:      opts.Comment,
		CreatedBy:    "Transmission " + Version,
		CreationDate: time.Now().Unix(),
	}
	for _, tracker := range opts.Trackers {
		mi.AnnounceList = append(mi.AnnounceList, []string{tracker})
	}
	if len(opts.Trackers) > 0 {
		mi.Announce = opts.Trackers[0]
	}

	f, err := os.Create(opts.OutPath)
	if err != nil {
		return fmt.Errorf("session: write torrent file: %w", err)
	}
	defer f.Close()
	if err := mi.Write(f); err != nil {
		return fmt.Errorf("session: write torrent file: %w", err)
	}
	s.log.Info("torrent created", "content", opts.ContentPath, "out", opts.OutPath)
	return nil
}
