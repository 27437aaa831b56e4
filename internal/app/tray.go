package app

// Tray mode approximates a notification area icon: with the setting
// on, closing the window hides the app and keeps it transferring in
// the background; the frontend shows its own tray affordance.

func (a *App) trayEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trayMode
}

func (a *App) setTrayMode(on bool) {
	a.mu.Lock()
	wasOn := a.trayMode
	a.trayMode = on
	hidden := !a.windowShown
	if !on && hidden {
		a.windowShown = true
	}
	a.mu.Unlock()

	if on == wasOn {
		return
	}
	a.log.Debug("tray mode", "enabled", on)
	a.front().EmitEvent("tray", on)
	// Turning the tray off while hidden would leave no way back to
	// the window.
	if !on && hidden {
		a.front().ShowWindow()
	}
}
