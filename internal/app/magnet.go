package app

import (
	"log/slog"
	"os/exec"
	"runtime"
)

// registerMagnetHandler makes this app the system handler for
// magnet: links. Registration is best effort: a failure is worth a
// warning, never an error, since most desktops work fine without it.
func registerMagnetHandler(log *slog.Logger) {
	if runtime.GOOS != "linux" {
		log.Debug("magnet handler registration not supported", "os", runtime.GOOS)
		return
	}
	cmd := exec.Command("xdg-mime", "default", "transmission.desktop", "x-scheme-handler/magnet")
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Warn("could not register magnet link handler",
			"error", err, "output", string(out))
		return
	}
	log.Debug("magnet link handler registered")
}
