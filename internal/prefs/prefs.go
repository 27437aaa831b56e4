package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

const settingsFile = "settings.json"

// Store is the persistent preference set, backed by settings.json in the
// configuration directory. Getters fall back to defaults for keys the file
// does not carry, so a fresh profile works without any seeding.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

func Open(configDir string) (*Store, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetConfigFile(filepath.Join(configDir, settingsFile))
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read %s: %w", settingsFile, err)
			}
		}
	}

	return &Store{v: v, path: v.ConfigFileUsed()}, nil
}

func defaults() map[string]any {
	home, _ := os.UserHomeDir()

	return map[string]any{
		KeyDownloadDir:          filepath.Join(home, "Downloads"),
		KeyIncompleteDir:        filepath.Join(home, "Downloads"),
		KeyIncompleteDirEnabled: false,
		KeyRenamePartialFiles:   true,

		KeySpeedLimitDown:        100,
		KeySpeedLimitDownEnabled: false,
		KeySpeedLimitUp:          100,
		KeySpeedLimitUpEnabled:   false,

		KeyAltSpeedDown:        50,
		KeyAltSpeedUp:          50,
		KeyAltSpeedEnabled:     false,
		KeyAltSpeedTimeBegin:   540,  // 9am, minutes past midnight
		KeyAltSpeedTimeEnd:     1020, // 5pm
		KeyAltSpeedTimeEnabled: false,
		KeyAltSpeedTimeDay:     127, // every day

		KeyRatioLimit:              2.0,
		KeyRatioLimitEnabled:       false,
		KeyIdleSeedingLimit:        30,
		KeyIdleSeedingLimitEnabled: false,

		KeyDownloadQueueSize:   5,
		KeyQueueStalledMinutes: 30,

		KeyEncryption: EncryptionPreferred,
		KeyDHTEnabled: true,
		KeyPEXEnabled: true,
		KeyLPDEnabled: false,
		KeyUTPEnabled: true,

		KeyPeerPort:              51413,
		KeyPeerPortRandomOnStart: false,
		KeyPortForwardingEnabled: true,
		KeyPeerLimitGlobal:       200,
		KeyPeerLimitPerTorrent:   50,

		KeyRPCEnabled:          false,
		KeyRPCPort:             9091,
		KeyRPCUsername:         "",
		KeyRPCPassword:         "",
		KeyRPCAuthRequired:     false,
		KeyRPCWhitelist:        "127.0.0.1,::1",
		KeyRPCWhitelistEnabled: true,

		KeyScriptTorrentDoneEnabled:         false,
		KeyScriptTorrentDoneFilename:        "",
		KeyScriptTorrentDoneSeedingEnabled:  false,
		KeyScriptTorrentDoneSeedingFilename: "",

		KeyStartAddedTorrents:        true,
		KeyTrashOriginalTorrentFiles: false,
		KeyShowOptionsWindow:         true,
		KeyDefaultTrackers:           "",

		KeyMessageLevel: "info",

		KeyMetricsEnabled:  false,
		KeyMetricsBindAddr: ":9190",

		KeyShowTrayIcon:        false,
		KeyMainWindowWidth:     1024,
		KeyMainWindowHeight:    768,
		KeyMainWindowMaximized: false,
	}
}

func (s *Store) Bool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(key)
}

func (s *Store) Int(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetInt(key)
}

func (s *Store) Int64(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetInt64(key)
}

func (s *Store) Float(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetFloat64(key)
}

func (s *Store) String(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(key)
}

// Set stores a value without writing it out; call Save to persist.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.v.Set(key, value)
	s.mu.Unlock()
}

// Snapshot returns a canonical copy of every setting, normalized for Diff.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any)
	for key, value := range s.v.AllSettings() {
		out[key] = Canonical(value)
	}
	return out
}

// Save writes the current settings to settings.json.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.WriteConfigAs(s.path)
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}
