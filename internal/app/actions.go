package app

import (
	"context"
	"fmt"

	"github.com/skratchdot/open-golang/open"

	"github.com/rkost/transmission/internal/metrics"
	"github.com/rkost/transmission/internal/prefs"
	"github.com/rkost/transmission/internal/session"
	"github.com/rkost/transmission/internal/ui"
)

const (
	donateURL = "https://transmissionbt.com/donate/"
	helpURL   = "https://transmissionbt.com/help/"
)

// actionTable maps every action name the frontend may dispatch to its
// handler. Handlers run on the dispatch loop; anything that blocks on
// the user moves to a goroutine and posts its result back.
var actionTable = map[string]func(*App){
	"open-torrent":                  (*App).actionOpenTorrent,
	"open-torrent-from-url":         (*App).actionOpenTorrentFromURL,
	"new-torrent":                   emitOnly("show-torrent-creator"),
	"torrent-start":                 execSelected("torrent-start"),
	"torrent-start-now":             execSelected("torrent-start-now"),
	"torrent-stop":                  execSelected("torrent-stop"),
	"torrent-verify":                execSelected("torrent-verify"),
	"torrent-reannounce":            execSelected("torrent-reannounce"),
	"queue-move-top":                execSelected("queue-move-top"),
	"queue-move-up":                 execSelected("queue-move-up"),
	"queue-move-down":               execSelected("queue-move-down"),
	"queue-move-bottom":             execSelected("queue-move-bottom"),
	"pause-all-torrents":            execAll("torrent-stop"),
	"start-all-torrents":            execAll("torrent-start"),
	"remove-torrent":                func(a *App) { a.confirmRemove(false) },
	"delete-torrent":                func(a *App) { a.confirmRemove(true) },
	"copy-magnet-link-to-clipboard": (*App).actionCopyMagnetLink,
	"open-torrent-folder":           (*App).actionOpenFolder,
	"relocate-torrent":              (*App).actionRelocate,
	"show-torrent-properties":       (*App).actionShowProperties,
	"select-all":                    emitOnly("select-all"),
	"deselect-all":                  emitOnly("deselect-all"),
	"show-stats":                    (*App).actionShowStats,
	"show-message-log":              (*App).actionShowMessageLog,
	"show-preferences":              (*App).actionShowPreferences,
	"show-about-dialog":             emitOnly("show-about"),
	"toggle-main-window":            (*App).actionToggleWindow,
	"present-main-window":           func(a *App) { a.front().ShowWindow() },
	"alt-speed-enabled":             (*App).actionToggleAltSpeed,
	"donate":                        func(a *App) { a.front().OpenURL(donateURL) },
	"open-help":                     func(a *App) { a.front().OpenURL(helpURL) },
	"quit":                          (*App).Quit,
}

// DispatchAction is bound to the frontend. Dispatching a name that is
// not in the table is a programming error on the frontend side and
// panics rather than being silently dropped.
func (a *App) DispatchAction(name string) {
	handler, ok := actionTable[name]
	if !ok {
		panic(fmt.Sprintf("unhandled action %q", name))
	}
	metrics.ActionsTotal.WithLabelValues(name).Inc()
	a.log.Debug("action", "name", name)
	a.loop.Post(func() { handler(a) })
}

func execSelected(method string) func(*App) {
	return func(a *App) {
		ids := a.selectedIDs()
		if len(ids) == 0 {
			return
		}
		if err := a.engine.Exec(method, session.Args{"ids": ids}); err != nil {
			a.log.Warn("torrent method failed", "method", method, "error", err)
		}
	}
}

func execAll(method string) func(*App) {
	return func(a *App) {
		if err := a.engine.Exec(method, nil); err != nil {
			a.log.Warn("torrent method failed", "method", method, "error", err)
		}
	}
}

func emitOnly(event string) func(*App) {
	return func(a *App) { a.front().EmitEvent(event, nil) }
}

// actionOpenTorrent runs the native file picker off the loop and adds
// whatever was chosen.
func (a *App) actionOpenTorrent() {
	go func() {
		paths, err := a.front().ChooseTorrentFiles()
		if err != nil {
			a.log.Warn("open torrent dialog", "error", err)
			return
		}
		if len(paths) == 0 {
			return
		}
		a.loop.Post(func() { a.addFiles(paths) })
	}()
}

func (a *App) actionOpenTorrentFromURL() {
	a.front().EmitEvent("show-add-url", nil)
}

func (a *App) actionCopyMagnetLink() {
	ids := a.selectedIDs()
	if len(ids) == 0 {
		return
	}
	t := a.engine.Find(ids[0])
	if t == nil {
		return
	}
	if err := a.front().SetClipboard(t.MagnetLink()); err != nil {
		a.log.Warn("copy magnet link", "error", err)
	}
}

func (a *App) actionOpenFolder() {
	ids := a.selectedIDs()
	if len(ids) == 0 {
		return
	}
	t := a.engine.Find(ids[0])
	if t == nil {
		return
	}
	if err := open.Start(t.Dir()); err != nil {
		a.log.Warn("open folder", "dir", t.Dir(), "error", err)
	}
}

func (a *App) actionRelocate() {
	ids := a.selectedIDs()
	if len(ids) == 0 {
		return
	}
	go func() {
		dir, err := a.front().ChooseDirectory("Set Torrent Location",
			a.prefs.String(prefs.KeyDownloadDir))
		if err != nil || dir == "" {
			return
		}
		a.loop.Post(func() {
			for _, id := range ids {
				if err := a.engine.MoveTorrent(id, dir, true); err != nil {
					a.log.Warn("relocate torrent", "id", id, "error", err)
				}
			}
		})
	}()
}

func (a *App) actionShowProperties() {
	a.ShowDetails(a.selectedIDs())
}

func (a *App) actionShowStats() {
	down, up, active := a.engine.TotalStats()
	a.front().EmitEvent("show-stats", map[string]any{
		"downloaded": down,
		"uploaded":   up,
		"active":     active,
		"total":      a.engine.Count(),
	})
}

func (a *App) actionShowMessageLog() {
	a.front().EmitEvent("show-message-log", a.MessageLog())
}

func (a *App) actionShowPreferences() {
	a.front().EmitEvent("show-preferences", a.prefs.Snapshot())
}

func (a *App) actionToggleWindow() {
	a.mu.Lock()
	shown := !a.windowShown
	a.windowShown = shown
	a.mu.Unlock()
	if shown {
		a.front().ShowWindow()
	} else {
		a.front().HideWindow()
	}
}

func (a *App) actionToggleAltSpeed() {
	// The engine is the source of truth here; the scheduler can have
	// flipped the limits without the pref changing.
	a.SetPref(prefs.KeyAltSpeedEnabled, !a.engine.AltSpeedEnabled())
}

// confirmRemove asks before dropping the selected torrents, with the
// stronger wording when data is deleted too.
func (a *App) confirmRemove(deleteData bool) {
	ids := a.selectedIDs()
	if len(ids) == 0 {
		return
	}
	title := "Remove torrent?"
	message := fmt.Sprintf("Remove %d torrent(s) from the list?", len(ids))
	if deleteData {
		title = "Delete torrent and data?"
		message = fmt.Sprintf("Remove %d torrent(s) and delete their downloaded data? This cannot be undone.", len(ids))
	}
	go func() {
		choice, err := a.front().ShowDialog(ui.DialogQuestion, title, message,
			[]string{"Cancel", "Remove"})
		if err != nil || choice != "Remove" {
			return
		}
		a.loop.Post(func() {
			for _, id := range ids {
				if err := a.engine.RemoveTorrent(id, deleteData); err != nil {
					a.log.Warn("remove torrent", "id", id, "error", err)
				}
			}
		})
	}()
}

// refreshActions recomputes which actions make sense for the current
// selection and pushes the result to the frontend.
func (a *App) refreshActions() {
	ids := a.selectedIDs()
	var selStopped, selRunning, selCanUpdate int
	for _, id := range ids {
		t := a.engine.Find(id)
		if t == nil {
			continue
		}
		if t.Activity() == session.ActivityStopped {
			selStopped++
		} else {
			selRunning++
		}
		if t.CanManualUpdate() {
			selCanUpdate++
		}
	}

	var anyStopped, anyRunning bool
	for _, t := range a.engine.Torrents() {
		if t.Activity() == session.ActivityStopped {
			anyStopped = true
		} else {
			anyRunning = true
		}
	}

	selected := len(ids)
	total := a.engine.Count()
	sensitivity := map[string]bool{
		"torrent-start":                 selStopped > 0,
		"torrent-start-now":             selStopped > 0,
		"torrent-stop":                  selRunning > 0,
		"torrent-verify":                selected > 0,
		"torrent-reannounce":            selCanUpdate > 0,
		"queue-move-top":                selected > 0,
		"queue-move-up":                 selected > 0,
		"queue-move-down":               selected > 0,
		"queue-move-bottom":             selected > 0,
		"remove-torrent":                selected > 0,
		"delete-torrent":                selected > 0,
		"copy-magnet-link-to-clipboard": selected > 0,
		"open-torrent-folder":           selected == 1,
		"relocate-torrent":              selected > 0,
		"show-torrent-properties":       selected > 0,
		"select-all":                    total > 0,
		"deselect-all":                  selected > 0,
		"pause-all-torrents":            anyRunning,
		"start-all-torrents":            anyStopped,
	}
	a.front().EmitEvent("actions", sensitivity)
}

// AddFromURL is bound to the frontend's URL entry.
func (a *App) AddFromURL(loc string) {
	go func() {
		_, err := a.engine.AddURL(context.Background(), loc)
		if err != nil {
			a.reportAddError(err)
		}
	}()
}

// CreateTorrent is bound to the torrent creator dialog. Hashing the
// content can take a while, so it runs off the loop and reports back
// through an event.
func (a *App) CreateTorrent(contentPath, outPath string, trackers []string, comment string, private bool) {
	go func() {
		err := a.engine.CreateTorrent(session.CreateOptions{
			ContentPath: contentPath,
			OutPath:     outPath,
			Trackers:    trackers,
			Comment:     comment,
			Private:     private,
		})
		a.loop.Post(func() {
			if err != nil {
				a.log.Warn("create torrent", "content", contentPath, "error", err)
				a.front().EmitEvent("torrent-creator-failed", err.Error())
				return
			}
			a.front().EmitEvent("torrent-creator-done", outPath)
		})
	}()
}
