package config

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"netwatch-client/pkg/signal"
)

// Settings is the user-tunable notification state persisted between runs.
// Field keys match the on-disk JSON blob.
type Settings struct {
	Notifications              bool   `mapstructure:"notifications" json:"notifications"`
	NotificationSeverityFilter string `mapstructure:"notificationSeverityFilter" json:"notificationSeverityFilter"`
	MaxToasts                  int    `mapstructure:"maxToasts" json:"maxToasts"`
	ToastDurationSeconds       int    `mapstructure:"toastDuration" json:"toastDuration"`
	AlertDedupWindowSeconds    int    `mapstructure:"alertDeduplicationWindow" json:"alertDeduplicationWindow"`
}

// DefaultSettings returns the values written when no blob exists yet.
func DefaultSettings() Settings {
	return Settings{
		Notifications:              false,
		NotificationSeverityFilter: "critical-high",
		MaxToasts:                  3,
		ToastDurationSeconds:       5,
		AlertDedupWindowSeconds:    30,
	}
}

// Validate checks values that would break the notification pipeline if
// a hand-edited blob set them out of range.
func (s Settings) Validate() error {
	switch s.NotificationSeverityFilter {
	case "all", "critical-high", "critical":
	default:
		return fmt.Errorf("unknown severity filter %q", s.NotificationSeverityFilter)
	}
	if s.MaxToasts < 1 {
		return fmt.Errorf("maxToasts must be at least 1, got %d", s.MaxToasts)
	}
	if s.ToastDurationSeconds < 1 {
		return fmt.Errorf("toastDuration must be at least 1 second, got %d", s.ToastDurationSeconds)
	}
	if s.AlertDedupWindowSeconds < 0 {
		return fmt.Errorf("alertDeduplicationWindow must not be negative, got %d", s.AlertDedupWindowSeconds)
	}
	return nil
}

// SettingsStore persists Settings as a JSON blob and broadcasts changes,
// including edits made to the file by another process.
type SettingsStore struct {
	mu      sync.RWMutex
	v       *viper.Viper
	current Settings
	hub     *signal.Hub
	logger  *log.Logger
}

// OpenSettings loads the blob at path, creating it with defaults when
// missing. The returned store does not watch the file until Watch is called.
func OpenSettings(path string, logger *log.Logger) (*SettingsStore, error) {
	if logger == nil {
		logger = log.Default()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	defaults := DefaultSettings()
	v.SetDefault("notifications", defaults.Notifications)
	v.SetDefault("notificationSeverityFilter", defaults.NotificationSeverityFilter)
	v.SetDefault("maxToasts", defaults.MaxToasts)
	v.SetDefault("toastDuration", defaults.ToastDurationSeconds)
	v.SetDefault("alertDeduplicationWindow", defaults.AlertDedupWindowSeconds)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read settings blob: %w", err)
			}
		}
		// First run: write the defaults so the watcher has a file to follow
		if err := v.SafeWriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("failed to create settings blob: %w", err)
		}
		logger.Printf("Created settings blob at %s", path)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings blob: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings blob: %w", err)
	}

	return &SettingsStore{
		v:       v,
		current: s,
		hub:     signal.NewHub(),
		logger:  logger,
	}, nil
}

// Current returns the settings as last loaded or saved.
func (ss *SettingsStore) Current() Settings {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.current
}

// Update persists the given settings and notifies subscribers.
func (ss *SettingsStore) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	ss.mu.Lock()
	ss.v.Set("notifications", s.Notifications)
	ss.v.Set("notificationSeverityFilter", s.NotificationSeverityFilter)
	ss.v.Set("maxToasts", s.MaxToasts)
	ss.v.Set("toastDuration", s.ToastDurationSeconds)
	ss.v.Set("alertDeduplicationWindow", s.AlertDedupWindowSeconds)
	if err := ss.v.WriteConfig(); err != nil {
		ss.mu.Unlock()
		return fmt.Errorf("failed to write settings blob: %w", err)
	}
	ss.current = s
	ss.mu.Unlock()

	ss.hub.Publish(s)
	return nil
}

// Watch starts following the blob on disk. External edits are reloaded
// and broadcast; an unparseable edit is logged and the last good
// settings stay in effect.
func (ss *SettingsStore) Watch() {
	ss.v.OnConfigChange(func(_ fsnotify.Event) {
		var s Settings
		if err := ss.v.Unmarshal(&s); err != nil {
			ss.logger.Printf("Ignoring settings blob change: %v", err)
			return
		}
		if err := s.Validate(); err != nil {
			ss.logger.Printf("Ignoring settings blob change: %v", err)
			return
		}

		ss.mu.Lock()
		changed := s != ss.current
		ss.current = s
		ss.mu.Unlock()

		if changed {
			ss.hub.Publish(s)
		}
	})
	ss.v.WatchConfig()
}

// Subscribe registers fn for settings changes and returns a token for
// Unsubscribe.
func (ss *SettingsStore) Subscribe(fn func(Settings)) signal.Token {
	return ss.hub.Subscribe(func(v any) {
		if s, ok := v.(Settings); ok {
			fn(s)
		}
	})
}

func (ss *SettingsStore) Unsubscribe(token signal.Token) {
	ss.hub.Release(token)
}
