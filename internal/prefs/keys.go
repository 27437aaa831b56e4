package prefs

// Preference keys. The dashed names double as the on-disk settings.json keys
// and as the identifiers the engine reports back when its settings change, so
// they must stay stable.
const (
	KeyDownloadDir          = "download-dir"
	KeyIncompleteDir        = "incomplete-dir"
	KeyIncompleteDirEnabled = "incomplete-dir-enabled"
	KeyRenamePartialFiles   = "rename-partial-files"

	KeySpeedLimitDown        = "speed-limit-down"
	KeySpeedLimitDownEnabled = "speed-limit-down-enabled"
	KeySpeedLimitUp          = "speed-limit-up"
	KeySpeedLimitUpEnabled   = "speed-limit-up-enabled"

	KeyAltSpeedDown        = "alt-speed-down"
	KeyAltSpeedUp          = "alt-speed-up"
	KeyAltSpeedEnabled     = "alt-speed-enabled"
	KeyAltSpeedTimeBegin   = "alt-speed-time-begin"
	KeyAltSpeedTimeEnd     = "alt-speed-time-end"
	KeyAltSpeedTimeEnabled = "alt-speed-time-enabled"
	KeyAltSpeedTimeDay     = "alt-speed-time-day"

	KeyRatioLimit              = "ratio-limit"
	KeyRatioLimitEnabled       = "ratio-limit-enabled"
	KeyIdleSeedingLimit        = "idle-seeding-limit"
	KeyIdleSeedingLimitEnabled = "idle-seeding-limit-enabled"

	KeyDownloadQueueSize   = "download-queue-size"
	KeyQueueStalledMinutes = "queue-stalled-minutes"

	KeyEncryption = "encryption"
	KeyDHTEnabled = "dht-enabled"
	KeyPEXEnabled = "pex-enabled"
	KeyLPDEnabled = "lpd-enabled"
	KeyUTPEnabled = "utp-enabled"

	KeyPeerPort              = "peer-port"
	KeyPeerPortRandomOnStart = "peer-port-random-on-start"
	KeyPortForwardingEnabled = "port-forwarding-enabled"
	KeyPeerLimitGlobal       = "peer-limit-global"
	KeyPeerLimitPerTorrent   = "peer-limit-per-torrent"

	KeyRPCEnabled          = "rpc-enabled"
	KeyRPCPort             = "rpc-port"
	KeyRPCUsername         = "rpc-username"
	KeyRPCPassword         = "rpc-password"
	KeyRPCAuthRequired     = "rpc-authentication-required"
	KeyRPCWhitelist        = "rpc-whitelist"
	KeyRPCWhitelistEnabled = "rpc-whitelist-enabled"

	KeyScriptTorrentDoneEnabled         = "script-torrent-done-enabled"
	KeyScriptTorrentDoneFilename        = "script-torrent-done-filename"
	KeyScriptTorrentDoneSeedingEnabled  = "script-torrent-done-seeding-enabled"
	KeyScriptTorrentDoneSeedingFilename = "script-torrent-done-seeding-filename"

	KeyStartAddedTorrents        = "start-added-torrents"
	KeyTrashOriginalTorrentFiles = "trash-original-torrent-files"
	KeyShowOptionsWindow         = "show-options-window"
	KeyDefaultTrackers           = "default-trackers"

	KeyMessageLevel = "message-level"

	KeyMetricsEnabled  = "metrics-enabled"
	KeyMetricsBindAddr = "metrics-bind-addr"

	KeyShowTrayIcon        = "show-notification-area-icon"
	KeyMainWindowWidth     = "main-window-width"
	KeyMainWindowHeight    = "main-window-height"
	KeyMainWindowMaximized = "main-window-is-maximized"
)

// Encryption modes, in the order the preferences dialog lists them.
const (
	EncryptionTolerated = 0
	EncryptionPreferred = 1
	EncryptionRequired  = 2
)
