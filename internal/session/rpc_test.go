package session

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/anacrolix/torrent/metainfo"
)

func testSession(order ...int) *Session {
	return &Session{
		log:      slog.New(slog.DiscardHandler),
		torrents: make(map[int]*Torrent),
		byHash:   make(map[metainfo.Hash]int),
		nextID:   1,
		order:    order,
	}
}

func TestResolveIDs(t *testing.T) {
	s := testSession(3, 1, 2)

	tests := []struct {
		name    string
		in      any
		want    []int
		wantErr bool
	}{
		{name: "absent means all in queue order", in: nil, want: []int{3, 1, 2}},
		{name: "int slice", in: []int{2, 3}, want: []int{2, 3}},
		{name: "single int", in: 7, want: []int{7}},
		{name: "json number", in: float64(4), want: []int{4}},
		{name: "json array", in: []any{float64(1), float64(2)}, want: []int{1, 2}},
		{name: "mixed array", in: []any{1, float64(2)}, want: []int{1, 2}},
		{name: "bad element", in: []any{"x"}, wantErr: true},
		{name: "bad type", in: "all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.resolveIDs(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecUnknownMethod(t *testing.T) {
	s := testSession()
	err := s.Exec("torrent-levitate", nil)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}
	if !strings.Contains(err.Error(), "torrent-levitate") {
		t.Errorf("error should name the method, got %v", err)
	}
}

func TestExecMissingTorrent(t *testing.T) {
	s := testSession()
	err := s.Exec("torrent-start", Args{"ids": []int{99}})
	if !errors.Is(err, ErrNoSuchTorrent) {
		t.Errorf("got %v, want ErrNoSuchTorrent", err)
	}
}

func TestExecQueueMoveEmitsEvent(t *testing.T) {
	s := testSession(1, 2, 3)
	var events []Event
	s.OnEvent(func(ev Event) { events = append(events, ev) })

	if err := s.Exec("queue-move-top", Args{"ids": []int{3}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{3, 1, 2}; !reflect.DeepEqual(s.order, want) {
		t.Errorf("order = %v, want %v", s.order, want)
	}
	if len(events) != 1 || events[0].Type != QueuePositionsChanged {
		t.Errorf("events = %v, want one QueuePositionsChanged", events)
	}
}
