package app

import (
	"testing"

	"github.com/rkost/transmission/internal/prefs"
	"github.com/rkost/transmission/internal/session"
)

func TestUnknownEngineEventPanics(t *testing.T) {
	a, _, _ := newTestApp(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown event type")
		}
	}()
	a.onEngineEvent(session.Event{Type: session.EventType(99)})
}

func TestRemovalEventPrunesSelection(t *testing.T) {
	a, engine, _ := newTestApp(t)
	engine.torrents = []*fakeTorrent{{id: 1}, {id: 2}, {id: 3}}
	a.SetSelection([]int{1, 2, 3})
	drain(t, a)

	a.onEngineEvent(session.Event{Type: session.TorrentRemoving, TorrentID: 2})
	drain(t, a)

	if got := a.selectedIDs(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("selection = %v, want [1 3]", got)
	}
}

func TestSessionChangedAdoptsEngineSettings(t *testing.T) {
	a, engine, frontend := newTestApp(t)
	engine.settings = map[string]any{
		prefs.KeyPeerPort:   6882,
		prefs.KeyDHTEnabled: true, // matches the default, not a change
	}

	a.onEngineEvent(session.Event{Type: session.SessionChanged})
	drain(t, a)

	if got := a.prefs.Int(prefs.KeyPeerPort); got != 6882 {
		t.Errorf("peer-port = %d, want 6882", got)
	}
	events := frontend.emitted("prefs-changed")
	if len(events) != 1 {
		t.Fatalf("prefs-changed events = %d, want 1", len(events))
	}
	changed := events[0].payload.([]string)
	if len(changed) != 1 || changed[0] != prefs.KeyPeerPort {
		t.Errorf("changed keys = %v, want only peer-port", changed)
	}
}

func TestRefreshEmitsSortedViews(t *testing.T) {
	a, engine, frontend := newTestApp(t)
	engine.torrents = []*fakeTorrent{
		{id: 1, name: "b", pos: 1, activity: session.ActivityDownloading,
			stats: session.Stats{BytesCompleted: 50, Length: 100}},
		{id: 2, name: "a", pos: 0, activity: session.ActivitySeeding},
	}

	a.loop.Post(a.refresh)
	drain(t, a)

	events := frontend.emitted("torrents")
	if len(events) != 1 {
		t.Fatalf("torrents events = %d, want 1", len(events))
	}
	views := events[0].payload.([]TorrentView)
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if views[0].ID != 2 || views[1].ID != 1 {
		t.Errorf("view order = [%d %d], want queue order [2 1]", views[0].ID, views[1].ID)
	}
	if views[1].Percent != 0.5 {
		t.Errorf("percent = %v, want 0.5", views[1].Percent)
	}
	if views[0].Activity != "seeding" {
		t.Errorf("activity = %q, want seeding", views[0].Activity)
	}
}

func TestRefreshSoonCoalesces(t *testing.T) {
	a, _, frontend := newTestApp(t)

	for i := 0; i < 10; i++ {
		a.RefreshSoon()
	}
	eventually(t, func() bool {
		return len(frontend.emitted("torrents")) >= 1
	}, "coalesced refresh never ran")
	drain(t, a)

	if got := len(frontend.emitted("torrents")); got != 1 {
		t.Errorf("refreshes = %d, want a single coalesced one", got)
	}
}
