package app

import (
	"log/slog"
	"strings"

	"github.com/rkost/transmission/internal/prefs"
)

// prefRelay maps a changed settings key to the code that acts on it.
// Several keys share a handler when the engine takes them as a group;
// handlers read the current values from the store so they are safe to
// run for any one key of the group. Keys not in the table are stored
// but acted on nowhere, like window geometry.
var prefRelay = map[string]func(*App){
	prefs.KeyDownloadDir: func(a *App) {
		a.engine.SetDownloadDir(a.prefs.String(prefs.KeyDownloadDir))
	},
	prefs.KeyIncompleteDir:        relayIncompleteDir,
	prefs.KeyIncompleteDirEnabled: relayIncompleteDir,
	prefs.KeyRenamePartialFiles: func(a *App) {
		a.engine.SetRenamePartialFiles(a.prefs.Bool(prefs.KeyRenamePartialFiles))
	},

	prefs.KeySpeedLimitDown:        relaySpeedLimits,
	prefs.KeySpeedLimitDownEnabled: relaySpeedLimits,
	prefs.KeySpeedLimitUp:          relaySpeedLimits,
	prefs.KeySpeedLimitUpEnabled:   relaySpeedLimits,

	prefs.KeyAltSpeedDown:    relayAltSpeed,
	prefs.KeyAltSpeedUp:      relayAltSpeed,
	prefs.KeyAltSpeedEnabled: relayAltSpeed,

	prefs.KeyRatioLimit:        relayRatioLimit,
	prefs.KeyRatioLimitEnabled: relayRatioLimit,

	prefs.KeyIdleSeedingLimit:        relayIdleLimit,
	prefs.KeyIdleSeedingLimitEnabled: relayIdleLimit,

	prefs.KeyDownloadQueueSize: func(a *App) {
		a.engine.SetQueueSize(a.prefs.Int(prefs.KeyDownloadQueueSize))
	},
	prefs.KeyQueueStalledMinutes: func(a *App) {
		a.engine.SetStalledMinutes(a.prefs.Int(prefs.KeyQueueStalledMinutes))
	},

	prefs.KeyPeerLimitGlobal:     relayPeerLimits,
	prefs.KeyPeerLimitPerTorrent: relayPeerLimits,

	prefs.KeyEncryption: func(a *App) {
		a.engine.SetEncryption(a.prefs.Int(prefs.KeyEncryption))
	},
	prefs.KeyPeerPort: func(a *App) {
		a.engine.SetPeerPort(a.prefs.Int(prefs.KeyPeerPort))
	},
	prefs.KeyPeerPortRandomOnStart: func(a *App) {
		a.engine.SetPeerPortRandomOnStart(a.prefs.Bool(prefs.KeyPeerPortRandomOnStart))
	},
	prefs.KeyDHTEnabled: func(a *App) {
		a.engine.SetDHTEnabled(a.prefs.Bool(prefs.KeyDHTEnabled))
	},
	prefs.KeyPEXEnabled: func(a *App) {
		a.engine.SetPEXEnabled(a.prefs.Bool(prefs.KeyPEXEnabled))
	},
	prefs.KeyLPDEnabled: func(a *App) {
		a.engine.SetLPDEnabled(a.prefs.Bool(prefs.KeyLPDEnabled))
	},
	prefs.KeyUTPEnabled: func(a *App) {
		a.engine.SetUTPEnabled(a.prefs.Bool(prefs.KeyUTPEnabled))
	},
	prefs.KeyPortForwardingEnabled: func(a *App) {
		a.engine.SetPortForwarding(a.prefs.Bool(prefs.KeyPortForwardingEnabled))
	},
	prefs.KeyDefaultTrackers: func(a *App) {
		a.engine.SetDefaultTrackers(a.prefs.String(prefs.KeyDefaultTrackers))
	},

	prefs.KeyRPCEnabled: relayRPCListener,
	prefs.KeyRPCPort:    relayRPCListener,

	prefs.KeyRPCUsername:     relayRPCCredentials,
	prefs.KeyRPCPassword:     relayRPCCredentials,
	prefs.KeyRPCAuthRequired: relayRPCCredentials,

	prefs.KeyRPCWhitelist:        relayRPCWhitelist,
	prefs.KeyRPCWhitelistEnabled: relayRPCWhitelist,

	prefs.KeyScriptTorrentDoneEnabled:  relayDoneScript,
	prefs.KeyScriptTorrentDoneFilename: relayDoneScript,

	prefs.KeyScriptTorrentDoneSeedingEnabled:  relaySeedingDoneScript,
	prefs.KeyScriptTorrentDoneSeedingFilename: relaySeedingDoneScript,

	prefs.KeyStartAddedTorrents: func(a *App) {
		a.engine.SetStartAddedTorrents(a.prefs.Bool(prefs.KeyStartAddedTorrents))
	},
	prefs.KeyTrashOriginalTorrentFiles: func(a *App) {
		a.engine.SetTrashOriginalTorrentFiles(a.prefs.Bool(prefs.KeyTrashOriginalTorrentFiles))
	},

	prefs.KeyMessageLevel: (*App).applyMessageLevel,
	prefs.KeyMetricsEnabled: func(a *App) {
		a.applyMetricsPref()
	},
	prefs.KeyMetricsBindAddr: func(a *App) {
		a.applyMetricsPref()
	},
	prefs.KeyShowTrayIcon: func(a *App) {
		a.setTrayMode(a.prefs.Bool(prefs.KeyShowTrayIcon))
	},
}

// relayPref runs the handler for one changed key, if any.
func (a *App) relayPref(key string) {
	handler, ok := prefRelay[key]
	if !ok {
		a.log.Debug("setting stored without relay", "key", key)
		return
	}
	a.log.Debug("setting relayed", "key", key)
	handler(a)
}

func relayIncompleteDir(a *App) {
	a.engine.SetIncompleteDir(
		a.prefs.String(prefs.KeyIncompleteDir),
		a.prefs.Bool(prefs.KeyIncompleteDirEnabled))
}

func relaySpeedLimits(a *App) {
	a.engine.SetSpeedLimit(
		a.prefs.Int64(prefs.KeySpeedLimitDown),
		a.prefs.Int64(prefs.KeySpeedLimitUp),
		a.prefs.Bool(prefs.KeySpeedLimitDownEnabled),
		a.prefs.Bool(prefs.KeySpeedLimitUpEnabled))
}

func relayAltSpeed(a *App) {
	a.engine.SetAltSpeed(
		a.prefs.Int64(prefs.KeyAltSpeedDown),
		a.prefs.Int64(prefs.KeyAltSpeedUp),
		a.prefs.Bool(prefs.KeyAltSpeedEnabled))
}

func relayRatioLimit(a *App) {
	a.engine.SetRatioLimit(
		a.prefs.Float(prefs.KeyRatioLimit),
		a.prefs.Bool(prefs.KeyRatioLimitEnabled))
}

func relayIdleLimit(a *App) {
	a.engine.SetIdleLimit(
		a.prefs.Int(prefs.KeyIdleSeedingLimit),
		a.prefs.Bool(prefs.KeyIdleSeedingLimitEnabled))
}

func relayPeerLimits(a *App) {
	a.engine.SetPeerLimits(
		a.prefs.Int(prefs.KeyPeerLimitGlobal),
		a.prefs.Int(prefs.KeyPeerLimitPerTorrent))
}

func relayRPCListener(a *App) {
	a.engine.SetRPCEnabled(
		a.prefs.Bool(prefs.KeyRPCEnabled),
		a.prefs.Int(prefs.KeyRPCPort))
}

func relayRPCCredentials(a *App) {
	a.engine.SetRPCCredentials(
		a.prefs.String(prefs.KeyRPCUsername),
		a.prefs.String(prefs.KeyRPCPassword),
		a.prefs.Bool(prefs.KeyRPCAuthRequired))
}

func relayRPCWhitelist(a *App) {
	a.engine.SetRPCWhitelist(
		a.prefs.String(prefs.KeyRPCWhitelist),
		a.prefs.Bool(prefs.KeyRPCWhitelistEnabled))
}

func relayDoneScript(a *App) {
	a.engine.SetDoneScript(
		a.prefs.String(prefs.KeyScriptTorrentDoneFilename),
		a.prefs.Bool(prefs.KeyScriptTorrentDoneEnabled))
}

func relaySeedingDoneScript(a *App) {
	a.engine.SetSeedingDoneScript(
		a.prefs.String(prefs.KeyScriptTorrentDoneSeedingFilename),
		a.prefs.Bool(prefs.KeyScriptTorrentDoneSeedingEnabled))
}

// applyMessageLevel maps the message-level setting onto the process
// log level.
func (a *App) applyMessageLevel() {
	if a.logLevel == nil {
		return
	}
	var level slog.Level
	switch strings.ToLower(a.prefs.String(prefs.KeyMessageLevel)) {
	case "error":
		level = slog.LevelError
	case "warn", "warning":
		level = slog.LevelWarn
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	a.logLevel.Set(level)
}

func (a *App) applyMetricsPref() {
	if a.metrics == nil {
		return
	}
	if a.prefs.Bool(prefs.KeyMetricsEnabled) {
		a.metrics.Start(a.prefs.String(prefs.KeyMetricsBindAddr))
	} else {
		a.metrics.Stop()
	}
}
