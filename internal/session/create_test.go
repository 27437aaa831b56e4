package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anacrolix/torrent/metainfo"
)

func TestCreateTorrent(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(content, []byte("some payload bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "payload.torrent")

	s := testSession()
	err := s.CreateTorrent(CreateOptions{
		ContentPath: content,
		OutPath:     out,
		Trackers:    []string{"udp://tracker.example:1337/announce"},
		Comment:     "test build",
		Private:     true,
	})
	if err != nil {
		t.Fatalf("CreateTorrent: %v", err)
	}

	mi, err := metainfo.LoadFromFile(out)
	if err != nil {
		t.Fatalf("load result: %v", err)
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		t.Fatalf("unmarshal info: %v", err)
	}
	if info.Name != "payload.bin" {
		t.Errorf("name = %q, want payload.bin", info.Name)
	}
	if info.Private == nil || !*info.Private {
		t.Error("private flag not set")
	}
	if mi.Announce != "udp://tracker.example:1337/announce" {
		t.Errorf("announce = %q", mi.Announce)
	}
	if mi.Comment != "test build" {
		t.Errorf("comment = %q", mi.Comment)
	}
}

func TestCreateTorrentMissingContent(t *testing.T) {
	s := testSession()
	err := s.CreateTorrent(CreateOptions{
		ContentPath: filepath.Join(t.TempDir(), "nope"),
		OutPath:     filepath.Join(t.TempDir(), "out.torrent"),
	})
	if err == nil {
		t.Fatal("expected error for missing content")
	}
}
