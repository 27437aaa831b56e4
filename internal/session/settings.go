package session

import (
	"strings"

	"golang.org/x/time/rate"

	"github.com/rkost/transmission/internal/prefs"
)

// runtimeSettings mirrors the subset of the settings store the engine
// acts on. Guarded by Session.mu.
type runtimeSettings struct {
	downloadDir       string
	incompleteDir     string
	incompleteEnabled bool
	renamePartial     bool

	speedDownKB      int64
	speedUpKB        int64
	speedDownEnabled bool
	speedUpEnabled   bool
	altDownKB        int64
	altUpKB          int64
	altEnabled       bool

	ratioLimit        float64
	ratioLimitEnabled bool
	idleMinutes       int
	idleLimitEnabled  bool

	queueSize      int
	stalledMinutes int

	peerPort            int
	peerPortRandom      bool
	peerLimitGlobal     int
	peerLimitPerTorrent int
	encryption          int
	dhtEnabled          bool
	pexEnabled          bool
	lpdEnabled          bool
	utpEnabled          bool
	portForwarding      bool

	defaultTrackers []string

	rpcEnabled          bool
	rpcPort             int
	rpcUsername         string
	rpcPassword         string
	rpcAuthRequired     bool
	rpcWhitelist        string
	rpcWhitelistEnabled bool

	scriptDoneEnabled        bool
	scriptDone               string
	scriptSeedingDoneEnabled bool
	scriptSeedingDone        string

	startAdded    bool
	trashOriginal bool
}

func settingsFromStore(p *prefs.Store) runtimeSettings {
	return runtimeSettings{
		downloadDir:              p.String(prefs.KeyDownloadDir),
		incompleteDir:            p.String(prefs.KeyIncompleteDir),
		incompleteEnabled:        p.Bool(prefs.KeyIncompleteDirEnabled),
		renamePartial:            p.Bool(prefs.KeyRenamePartialFiles),
		speedDownKB:              p.Int64(prefs.KeySpeedLimitDown),
		speedUpKB:                p.Int64(prefs.KeySpeedLimitUp),
		speedDownEnabled:         p.Bool(prefs.KeySpeedLimitDownEnabled),
		speedUpEnabled:           p.Bool(prefs.KeySpeedLimitUpEnabled),
		altDownKB:                p.Int64(prefs.KeyAltSpeedDown),
		altUpKB:                  p.Int64(prefs.KeyAltSpeedUp),
		altEnabled:               p.Bool(prefs.KeyAltSpeedEnabled),
		ratioLimit:               p.Float(prefs.KeyRatioLimit),
		ratioLimitEnabled:        p.Bool(prefs.KeyRatioLimitEnabled),
		idleMinutes:              p.Int(prefs.KeyIdleSeedingLimit),
		idleLimitEnabled:         p.Bool(prefs.KeyIdleSeedingLimitEnabled),
		queueSize:                p.Int(prefs.KeyDownloadQueueSize),
		stalledMinutes:           p.Int(prefs.KeyQueueStalledMinutes),
		peerPort:                 p.Int(prefs.KeyPeerPort),
		peerPortRandom:           p.Bool(prefs.KeyPeerPortRandomOnStart),
		peerLimitGlobal:          p.Int(prefs.KeyPeerLimitGlobal),
		peerLimitPerTorrent:      p.Int(prefs.KeyPeerLimitPerTorrent),
		encryption:               p.Int(prefs.KeyEncryption),
		dhtEnabled:               p.Bool(prefs.KeyDHTEnabled),
		pexEnabled:               p.Bool(prefs.KeyPEXEnabled),
		lpdEnabled:               p.Bool(prefs.KeyLPDEnabled),
		utpEnabled:               p.Bool(prefs.KeyUTPEnabled),
		portForwarding:           p.Bool(prefs.KeyPortForwardingEnabled),
		defaultTrackers:          splitTrackers(p.String(prefs.KeyDefaultTrackers)),
		rpcEnabled:               p.Bool(prefs.KeyRPCEnabled),
		rpcPort:                  p.Int(prefs.KeyRPCPort),
		rpcUsername:              p.String(prefs.KeyRPCUsername),
		rpcPassword:              p.String(prefs.KeyRPCPassword),
		rpcAuthRequired:          p.Bool(prefs.KeyRPCAuthRequired),
		rpcWhitelist:             p.String(prefs.KeyRPCWhitelist),
		rpcWhitelistEnabled:      p.Bool(prefs.KeyRPCWhitelistEnabled),
		scriptDoneEnabled:        p.Bool(prefs.KeyScriptTorrentDoneEnabled),
		scriptDone:               p.String(prefs.KeyScriptTorrentDoneFilename),
		scriptSeedingDoneEnabled: p.Bool(prefs.KeyScriptTorrentDoneSeedingEnabled),
		scriptSeedingDone:        p.String(prefs.KeyScriptTorrentDoneSeedingFilename),
		startAdded:               p.Bool(prefs.KeyStartAddedTorrents),
		trashOriginal:            p.Bool(prefs.KeyTrashOriginalTorrentFiles),
	}
}

func splitTrackers(s string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ','
	}) {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// applyRateLimitsLocked recomputes the effective limits from the
// normal and alternate speed settings and pushes them into the shared
// limiters that the engine's connections draw from.
func (s *Session) applyRateLimitsLocked() {
	down := rate.Inf
	up := rate.Inf
	if s.settings.altEnabled {
		if s.settings.altDownKB > 0 {
			down = rate.Limit(s.settings.altDownKB * 1024)
		}
		if s.settings.altUpKB > 0 {
			up = rate.Limit(s.settings.altUpKB * 1024)
		}
	} else {
		if s.settings.speedDownEnabled && s.settings.speedDownKB > 0 {
			down = rate.Limit(s.settings.speedDownKB * 1024)
		}
		if s.settings.speedUpEnabled && s.settings.speedUpKB > 0 {
			up = rate.Limit(s.settings.speedUpKB * 1024)
		}
	}
	setLimiter(s.dlLimiter, down)
	setLimiter(s.ulLimiter, up)
}

func setLimiter(l *rate.Limiter, limit rate.Limit) {
	l.SetLimit(limit)
	if limit == rate.Inf {
		l.SetBurst(0)
		return
	}
	burst := int(limit)
	if burst < 64*1024 {
		burst = 64 * 1024
	}
	l.SetBurst(burst)
}

// SetDownloadDir records a new content root. The engine stores every
// torrent under the root it was built with, so the change takes
// effect on next launch.
func (s *Session) SetDownloadDir(dir string) {
	s.mu.Lock()
	s.settings.downloadDir = dir
	s.mu.Unlock()
	s.log.Warn("download dir change takes effect after restart", "dir", dir)
}

// SetIncompleteDir records the staging directory for the settings
// file. The engine writes content straight to the download dir.
func (s *Session) SetIncompleteDir(dir string, enabled bool) {
	s.mu.Lock()
	s.settings.incompleteDir = dir
	s.settings.incompleteEnabled = enabled
	s.mu.Unlock()
}

// SetRenamePartialFiles records whether incomplete files carry a
// ".part" suffix. The engine writes files under their final names, so
// the value is kept for the settings file only.
func (s *Session) SetRenamePartialFiles(on bool) {
	s.mu.Lock()
	s.settings.renamePartial = on
	s.mu.Unlock()
}

// SetSpeedLimit sets the normal transfer caps in KB/s. A torrent
// direction with enabled false is unlimited.
func (s *Session) SetSpeedLimit(downKB, upKB int64, downEnabled, upEnabled bool) {
	s.mu.Lock()
	s.settings.speedDownKB = downKB
	s.settings.speedUpKB = upKB
	s.settings.speedDownEnabled = downEnabled
	s.settings.speedUpEnabled = upEnabled
	s.applyRateLimitsLocked()
	s.mu.Unlock()
}

// SetAltSpeed sets the alternate ("turtle") caps in KB/s and whether
// they are active.
func (s *Session) SetAltSpeed(downKB, upKB int64, enabled bool) {
	s.mu.Lock()
	s.settings.altDownKB = downKB
	s.settings.altUpKB = upKB
	s.settings.altEnabled = enabled
	s.applyRateLimitsLocked()
	s.mu.Unlock()
	s.log.Info("alternate speed limits", "enabled", enabled, "down_kb", downKB, "up_kb", upKB)
}

// AltSpeedEnabled reports whether the alternate caps are active.
func (s *Session) AltSpeedEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.altEnabled
}

// SetRatioLimit caps seeding at the given upload/download ratio.
func (s *Session) SetRatioLimit(limit float64, enabled bool) {
	s.mu.Lock()
	s.settings.ratioLimit = limit
	s.settings.ratioLimitEnabled = enabled
	s.mu.Unlock()
}

// SetIdleLimit stops seeding torrents idle for the given minutes.
func (s *Session) SetIdleLimit(minutes int, enabled bool) {
	s.mu.Lock()
	s.settings.idleMinutes = minutes
	s.settings.idleLimitEnabled = enabled
	s.mu.Unlock()
}

// SetQueueSize changes how many incomplete torrents download at once.
// Zero or less means unlimited.
func (s *Session) SetQueueSize(n int) {
	var changed bool
	s.mu.Lock()
	s.settings.queueSize = n
	changed = s.recomputeQueueLocked()
	s.mu.Unlock()
	if changed {
		s.emit(Event{Type: QueuePositionsChanged})
	}
}

// SetStalledMinutes changes how long a torrent may sit without
// progress before it stops counting against the download queue.
func (s *Session) SetStalledMinutes(n int) {
	s.mu.Lock()
	s.settings.stalledMinutes = n
	s.recomputeQueueLocked()
	s.mu.Unlock()
}

// SetPeerLimits changes the global and per-torrent connection caps.
// The per-torrent cap applies to running torrents immediately.
func (s *Session) SetPeerLimits(global, perTorrent int) {
	s.mu.Lock()
	s.settings.peerLimitGlobal = global
	s.settings.peerLimitPerTorrent = perTorrent
	for _, t := range s.torrents {
		if !t.stopped && !t.queued {
			t.t.SetMaxEstablishedConns(perTorrent)
		}
	}
	s.mu.Unlock()
}

// SetEncryption changes the peer connection encryption mode. Applies
// to connections made from now on.
func (s *Session) SetEncryption(mode int) {
	s.mu.Lock()
	s.settings.encryption = mode
	s.clientCfg.HeaderObfuscationPolicy = obfuscationPolicy(mode)
	s.mu.Unlock()
	s.log.Info("encryption mode changed", "mode", mode)
}

// SetPeerPort records a new listening port. The engine binds its
// listeners at startup, so the change takes effect on next launch.
func (s *Session) SetPeerPort(port int) {
	s.mu.Lock()
	s.settings.peerPort = port
	s.mu.Unlock()
	s.log.Warn("peer port change takes effect after restart", "port", port)
}

// SetPeerPortRandomOnStart records whether the next launch picks a
// random listening port instead of the configured one.
func (s *Session) SetPeerPortRandomOnStart(on bool) {
	s.mu.Lock()
	s.settings.peerPortRandom = on
	s.mu.Unlock()
}

// SetDHTEnabled records the DHT preference for the next launch.
func (s *Session) SetDHTEnabled(on bool) {
	s.mu.Lock()
	s.settings.dhtEnabled = on
	s.mu.Unlock()
	s.log.Warn("dht change takes effect after restart", "enabled", on)
}

// SetPEXEnabled records the peer exchange preference for the next
// launch.
func (s *Session) SetPEXEnabled(on bool) {
	s.mu.Lock()
	s.settings.pexEnabled = on
	s.mu.Unlock()
	s.log.Warn("pex change takes effect after restart", "enabled", on)
}

// SetLPDEnabled records the local peer discovery preference. The
// engine has no local discovery; the value is kept for the settings
// file only.
func (s *Session) SetLPDEnabled(on bool) {
	s.mu.Lock()
	s.settings.lpdEnabled = on
	s.mu.Unlock()
}

// SetUTPEnabled records the uTP preference for the next launch.
func (s *Session) SetUTPEnabled(on bool) {
	s.mu.Lock()
	s.settings.utpEnabled = on
	s.mu.Unlock()
	s.log.Warn("utp change takes effect after restart", "enabled", on)
}

// SetPortForwarding records the UPnP/NAT-PMP preference for the next
// launch.
func (s *Session) SetPortForwarding(on bool) {
	s.mu.Lock()
	s.settings.portForwarding = on
	s.mu.Unlock()
	s.log.Warn("port forwarding change takes effect after restart", "enabled", on)
}

// SetDefaultTrackers replaces the tracker list added to new torrents.
// Accepts one tracker per line or a comma separated list.
func (s *Session) SetDefaultTrackers(list string) {
	trackers := splitTrackers(list)
	s.mu.Lock()
	s.settings.defaultTrackers = trackers
	s.mu.Unlock()
}

// SetRPCEnabled records whether the remote control listener should run
// and on which port. The listener binds at startup, so the change takes
// effect on next launch.
func (s *Session) SetRPCEnabled(on bool, port int) {
	s.mu.Lock()
	s.settings.rpcEnabled = on
	s.settings.rpcPort = port
	s.mu.Unlock()
	if on {
		s.log.Warn("rpc change takes effect after restart", "port", port)
	}
}

// SetRPCCredentials changes the remote control login. New connections
// are checked against the updated values.
func (s *Session) SetRPCCredentials(username, password string, required bool) {
	s.mu.Lock()
	s.settings.rpcUsername = username
	s.settings.rpcPassword = password
	s.settings.rpcAuthRequired = required
	s.mu.Unlock()
}

// SetRPCWhitelist replaces the comma separated list of addresses
// allowed to use the remote control listener.
func (s *Session) SetRPCWhitelist(list string, enabled bool) {
	s.mu.Lock()
	s.settings.rpcWhitelist = list
	s.settings.rpcWhitelistEnabled = enabled
	s.mu.Unlock()
}

// SetDoneScript configures the hook run when a download completes.
func (s *Session) SetDoneScript(path string, enabled bool) {
	s.mu.Lock()
	s.settings.scriptDone = path
	s.settings.scriptDoneEnabled = enabled
	s.mu.Unlock()
}

// SetSeedingDoneScript configures the hook run when a torrent stops
// because it reached its seeding limit.
func (s *Session) SetSeedingDoneScript(path string, enabled bool) {
	s.mu.Lock()
	s.settings.scriptSeedingDone = path
	s.settings.scriptSeedingDoneEnabled = enabled
	s.mu.Unlock()
}

// SetStartAddedTorrents controls whether new torrents start
// immediately or arrive stopped.
func (s *Session) SetStartAddedTorrents(on bool) {
	s.mu.Lock()
	s.settings.startAdded = on
	s.mu.Unlock()
}

// SetTrashOriginalTorrentFiles controls whether source .torrent files
// are deleted after a successful add.
func (s *Session) SetTrashOriginalTorrentFiles(on bool) {
	s.mu.Lock()
	s.settings.trashOriginal = on
	s.mu.Unlock()
}

// Settings snapshots the engine-side settings keyed the same way as
// the settings store, for refreshing the store after a session-level
// change.
func (s *Session) Settings() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		prefs.KeyDownloadDir:                      s.settings.downloadDir,
		prefs.KeyIncompleteDir:                    s.settings.incompleteDir,
		prefs.KeyIncompleteDirEnabled:             s.settings.incompleteEnabled,
		prefs.KeyRenamePartialFiles:               s.settings.renamePartial,
		prefs.KeySpeedLimitDown:                   s.settings.speedDownKB,
		prefs.KeySpeedLimitUp:                     s.settings.speedUpKB,
		prefs.KeySpeedLimitDownEnabled:            s.settings.speedDownEnabled,
		prefs.KeySpeedLimitUpEnabled:              s.settings.speedUpEnabled,
		prefs.KeyAltSpeedDown:                     s.settings.altDownKB,
		prefs.KeyAltSpeedUp:                       s.settings.altUpKB,
		prefs.KeyAltSpeedEnabled:                  s.settings.altEnabled,
		prefs.KeyRatioLimit:                       s.settings.ratioLimit,
		prefs.KeyRatioLimitEnabled:                s.settings.ratioLimitEnabled,
		prefs.KeyIdleSeedingLimit:                 s.settings.idleMinutes,
		prefs.KeyIdleSeedingLimitEnabled:          s.settings.idleLimitEnabled,
		prefs.KeyDownloadQueueSize:                s.settings.queueSize,
		prefs.KeyQueueStalledMinutes:              s.settings.stalledMinutes,
		prefs.KeyPeerPort:                         s.settings.peerPort,
		prefs.KeyPeerPortRandomOnStart:            s.settings.peerPortRandom,
		prefs.KeyPeerLimitGlobal:                  s.settings.peerLimitGlobal,
		prefs.KeyPeerLimitPerTorrent:              s.settings.peerLimitPerTorrent,
		prefs.KeyEncryption:                       s.settings.encryption,
		prefs.KeyDHTEnabled:                       s.settings.dhtEnabled,
		prefs.KeyPEXEnabled:                       s.settings.pexEnabled,
		prefs.KeyLPDEnabled:                       s.settings.lpdEnabled,
		prefs.KeyUTPEnabled:                       s.settings.utpEnabled,
		prefs.KeyPortForwardingEnabled:            s.settings.portForwarding,
		prefs.KeyDefaultTrackers:                  strings.Join(s.settings.defaultTrackers, "\n"),
		prefs.KeyRPCEnabled:                       s.settings.rpcEnabled,
		prefs.KeyRPCPort:                          s.settings.rpcPort,
		prefs.KeyRPCUsername:                      s.settings.rpcUsername,
		prefs.KeyRPCPassword:                      s.settings.rpcPassword,
		prefs.KeyRPCAuthRequired:                  s.settings.rpcAuthRequired,
		prefs.KeyRPCWhitelist:                     s.settings.rpcWhitelist,
		prefs.KeyRPCWhitelistEnabled:              s.settings.rpcWhitelistEnabled,
		prefs.KeyScriptTorrentDoneEnabled:         s.settings.scriptDoneEnabled,
		prefs.KeyScriptTorrentDoneFilename:        s.settings.scriptDone,
		prefs.KeyScriptTorrentDoneSeedingEnabled:  s.settings.scriptSeedingDoneEnabled,
		prefs.KeyScriptTorrentDoneSeedingFilename: s.settings.scriptSeedingDone,
		prefs.KeyStartAddedTorrents:               s.settings.startAdded,
		prefs.KeyTrashOriginalTorrentFiles:        s.settings.trashOriginal,
	}
}
