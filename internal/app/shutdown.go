package app

import (
	"time"

	"github.com/rkost/transmission/internal/prefs"
)

// Quit starts the teardown sequence. The session close blocks until
// the engine has hung up on every peer, so it runs on its own
// goroutine; the window stays up (showing the frontend's closing
// state) until the session is done, then the runtime is told to shut
// down for real.
func (a *App) Quit() {
	if !a.quitting.CompareAndSwap(false, true) {
		return
	}
	a.log.Info("shutting down")
	a.front().EmitEvent("closing", nil)
	a.saveWindowGeometry()
	close(a.stopRefresh)

	go func() {
		started := time.Now()
		a.engine.Close()
		a.log.Info("session close finished", "took", time.Since(started))

		a.loop.Post(func() {
			if a.metrics != nil {
				a.metrics.Stop()
			}
			if err := a.prefs.Save(); err != nil {
				a.log.Warn("save settings", "error", err)
			}
			a.readyToClose.Store(true)
			a.front().Quit()
		})
	}()
}

// saveWindowGeometry records the window size so the next launch opens
// the same way. Maximized windows keep their last normal size.
func (a *App) saveWindowGeometry() {
	width, height, maximized := a.front().WindowGeometry()
	a.prefs.Set(prefs.KeyMainWindowMaximized, maximized)
	if !maximized && width > 0 && height > 0 {
		a.prefs.Set(prefs.KeyMainWindowWidth, width)
		a.prefs.Set(prefs.KeyMainWindowHeight, height)
	}
}

// OnBeforeClose is the runtime's close interception hook. Returning
// true keeps the window open. The first close request turns into a
// hide when the tray setting is on, and otherwise starts Quit; only
// once the session has finished closing is the window allowed to go.
func (a *App) OnBeforeClose() bool {
	if a.readyToClose.Load() {
		return false
	}
	if a.trayEnabled() && !a.quitting.Load() {
		a.loop.Post(func() {
			a.mu.Lock()
			a.windowShown = false
			a.mu.Unlock()
			a.front().HideWindow()
		})
		return true
	}
	a.Quit()
	return true
}

// WaitClosed blocks until the refresh loop has exited.
func (a *App) WaitClosed() {
	<-a.refreshDone
	a.loop.Stop()
}
