package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"

	"github.com/rkost/transmission/pkg/retry"
)

// AddFile adds a torrent from a .torrent file on disk. Returns
// ErrCorruptTorrent when the file does not parse and
// ErrDuplicateTorrent when its info-hash is already managed. The
// source file is deleted afterwards when the trash-original setting
// is on.
func (s *Session) AddFile(path string) (*Torrent, error) {
	mi, err := metainfo.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptTorrent, path, err)
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptTorrent, path, err)
	}
	hash := mi.HashInfoBytes()
	if err := s.checkDuplicate(hash); err != nil {
		return nil, fmt.Errorf("%w: %s", err, info.Name)
	}

	t, err := s.client.AddTorrent(mi)
	if err != nil {
		return nil, fmt.Errorf("session: add %s: %w", info.Name, err)
	}
	handle, err := s.register(t, hash, info.Name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	trash := s.settings.trashOriginal
	s.mu.Unlock()
	if trash {
		if err := os.Remove(path); err != nil {
			s.log.Warn("trash original failed", "path", path, "error", err)
		}
	}
	return handle, nil
}

// AddMagnet adds a torrent from a magnet URI. Metadata is fetched
// from the swarm in the background.
func (s *Session) AddMagnet(uri string) (*Torrent, error) {
	m, err := metainfo.ParseMagnetUri(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTorrent, err)
	}
	if err := s.checkDuplicate(m.InfoHash); err != nil {
		return nil, fmt.Errorf("%w: %s", err, m.DisplayName)
	}
	t, err := s.client.AddMagnet(uri)
	if err != nil {
		return nil, fmt.Errorf("session: add magnet: %w", err)
	}
	return s.register(t, m.InfoHash, m.DisplayName)
}

// AddURL adds a torrent by location: a magnet URI, an http(s) URL to
// fetch a .torrent from, or a local file path.
func (s *Session) AddURL(ctx context.Context, loc string) (*Torrent, error) {
	switch {
	case strings.HasPrefix(loc, "magnet:"):
		return s.AddMagnet(loc)
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return s.addHTTP(ctx, loc)
	default:
		return s.AddFile(loc)
	}
}

func (s *Session) addHTTP(ctx context.Context, url string) (*Torrent, error) {
	var body []byte
	err := retry.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		return err
	}, retry.WithMaxAttempts(3), retry.WithOnRetry(func(attempt int, err error, next time.Duration) {
		s.log.Warn("torrent fetch retry", "url", url, "attempt", attempt, "error", err, "next_delay", next)
	}))
	if err != nil {
		return nil, fmt.Errorf("session: fetch %s: %w", url, err)
	}

	mi, err := metainfo.Load(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptTorrent, url, err)
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptTorrent, url, err)
	}
	hash := mi.HashInfoBytes()
	if err := s.checkDuplicate(hash); err != nil {
		return nil, fmt.Errorf("%w: %s", err, info.Name)
	}
	t, err := s.client.AddTorrent(mi)
	if err != nil {
		return nil, fmt.Errorf("session: add %s: %w", info.Name, err)
	}
	return s.register(t, hash, info.Name)
}

func (s *Session) checkDuplicate(hash metainfo.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.byHash[hash]; ok {
		return ErrDuplicateTorrent
	}
	return nil
}

// claim reserves an id for an info-hash. The hash is checked and
// recorded under one lock, so two concurrent adds of the same torrent
// cannot both get an id.
func (s *Session) claim(hash metainfo.Hash) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if _, ok := s.byHash[hash]; ok {
		return 0, ErrDuplicateTorrent
	}
	id := s.nextID
	s.nextID++
	s.byHash[hash] = id
	return id, nil
}

// register wires an engine torrent into the session: claims an id,
// appends it to the queue, applies the default trackers and either
// starts it or parks it per the start-added setting.
func (s *Session) register(t *torrent.Torrent, hash metainfo.Hash, displayName string) (*Torrent, error) {
	id, err := s.claim(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, displayName)
	}

	s.mu.Lock()
	handle := &Torrent{
		s:            s,
		t:            t,
		id:           id,
		hash:         hash,
		displayName:  displayName,
		dir:          s.dataDir,
		stopped:      !s.settings.startAdded,
		addedAt:      time.Now(),
		lastProgress: time.Now(),
	}
	s.torrents[id] = handle
	s.order = append(s.order, id)

	if len(s.settings.defaultTrackers) > 0 {
		t.AddTrackers([][]string{s.settings.defaultTrackers})
	}
	if handle.stopped {
		t.DisallowDataDownload()
		t.DisallowDataUpload()
		t.SetMaxEstablishedConns(0)
	}
	s.recomputeQueueLocked()
	s.mu.Unlock()

	go s.watchInfo(handle)

	s.saveResume()
	s.emit(Event{Type: TorrentAdded, TorrentID: id})
	s.log.Info("torrent added", "torrent", handle.Name(), "id", id, "stopped", handle.stopped)
	return handle, nil
}

// watchInfo waits for metadata and kicks the download off once the
// engine knows the file layout.
func (s *Session) watchInfo(t *Torrent) {
	select {
	case <-t.t.GotInfo():
	case <-t.t.Closed():
		return
	case <-s.stopPoll:
		return
	}
	s.mu.Lock()
	if !t.stopped && !t.queued {
		t.t.DownloadAll()
	}
	s.mu.Unlock()
	s.emit(Event{Type: TorrentChanged, TorrentID: t.id})
}
