package app

import (
	"reflect"
	"testing"
)

func TestExtractLocations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "magnet link",
			in:   "magnet:?xt=urn:btih:abc",
			want: []string{"magnet:?xt=urn:btih:abc"},
		},
		{
			name: "http url",
			in:   "https://example.com/linux.torrent",
			want: []string{"https://example.com/linux.torrent"},
		},
		{
			name: "file url becomes a path",
			in:   "file:///home/me/linux.torrent",
			want: []string{"/home/me/linux.torrent"},
		},
		{
			name: "bare torrent path",
			in:   "/home/me/Linux.TORRENT",
			want: []string{"/home/me/Linux.TORRENT"},
		},
		{
			name: "mixed lines with noise",
			in:   "magnet:?xt=urn:btih:abc\r\n\n# comment\nnot a link\nhttp://x/y.torrent\n",
			want: []string{"magnet:?xt=urn:btih:abc", "http://x/y.torrent"},
		},
		{
			name: "plain prose",
			in:   "hello world",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractLocations(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOnFilesDroppedFiltersByExtension(t *testing.T) {
	a, engine, _ := newTestApp(t)
	a.OnFilesDropped([]string{"/tmp/a.torrent", "/tmp/b.txt", "/tmp/c.Torrent"})
	drain(t, a)

	engine.mu.Lock()
	added := append([]string(nil), engine.added...)
	engine.mu.Unlock()
	want := []string{"/tmp/a.torrent", "/tmp/c.Torrent"}
	if !reflect.DeepEqual(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}
}

func TestOnTextDroppedAddsEachLocation(t *testing.T) {
	a, engine, _ := newTestApp(t)
	a.OnTextDropped("magnet:?xt=urn:btih:abc\nhttps://example.com/b.torrent")

	eventually(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.added) == 2
	}, "dropped locations were not added")
}
