package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Trigger modifiers accepted for the hotkey gesture.
const (
	ModifierCtrl  = "ctrl"
	ModifierAlt   = "alt"
	ModifierShift = "shift"
)

// Config holds application configuration.
type Config struct {
	// TriggerModifier is the key that must be held while right-clicking to
	// open the credential picker: "ctrl", "alt" or "shift".
	TriggerModifier string `json:"trigger_modifier,omitempty"`

	// ShowDelayMS delays showing the picker after a trigger so the focus
	// change caused by the triggering click settles first.
	ShowDelayMS int `json:"show_delay_ms,omitempty"`

	// OneClickDelayMS is the pause between closing the picker and typing
	// a username/Tab/password/Enter sequence.
	OneClickDelayMS int `json:"oneclick_delay_ms,omitempty"`

	// SingleFieldDelayMS is the pause before typing only a username or only a password.
	SingleFieldDelayMS int `json:"single_field_delay_ms,omitempty"`

	// TriggerQueueSize bounds the hook-to-UI trigger buffer.
	TriggerQueueSize int `json:"trigger_queue_size,omitempty"`

	// AllowWindowOnly keeps the agent running without the hotkey when the
	// input hook cannot be installed. nil means the default (true).
	AllowWindowOnly *bool `json:"allow_window_only,omitempty"`

	// PasswordLength and PasswordCharset drive the password generator.
	PasswordLength  int    `json:"password_length,omitempty"`
	PasswordCharset string `json:"password_charset,omitempty"`

	// WebBind and WebPort address the local management UI.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	allow := true
	return &Config{
		TriggerModifier:    ModifierCtrl,
		ShowDelayMS:        50,
		OneClickDelayMS:    50,
		SingleFieldDelayMS: 100,
		TriggerQueueSize:   16,
		AllowWindowOnly:    &allow,
		PasswordLength:     8,
		PasswordCharset:    "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*",
		WebBind:            "127.0.0.1",
		WebPort:            8765,
		LogLevel:           "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.easypass.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		TriggerModifier:    pickString(overlay.TriggerModifier, base.TriggerModifier),
		ShowDelayMS:        pickInt(overlay.ShowDelayMS, base.ShowDelayMS),
		OneClickDelayMS:    pickInt(overlay.OneClickDelayMS, base.OneClickDelayMS),
		SingleFieldDelayMS: pickInt(overlay.SingleFieldDelayMS, base.SingleFieldDelayMS),
		TriggerQueueSize:   pickInt(overlay.TriggerQueueSize, base.TriggerQueueSize),
		PasswordLength:     pickInt(overlay.PasswordLength, base.PasswordLength),
		PasswordCharset:    pickString(overlay.PasswordCharset, base.PasswordCharset),
		WebBind:            pickString(overlay.WebBind, base.WebBind),
		WebPort:            pickInt(overlay.WebPort, base.WebPort),
		LogLevel:           pickString(overlay.LogLevel, base.LogLevel),
		DBMaxOpenConns:     pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:     pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	// Tri-state: overlay wins when explicitly set
	result.AllowWindowOnly = base.AllowWindowOnly
	if overlay.AllowWindowOnly != nil {
		result.AllowWindowOnly = overlay.AllowWindowOnly
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Validate checks values that would otherwise fail late inside the agent.
func (c *Config) Validate() error {
	switch strings.ToLower(c.TriggerModifier) {
	case ModifierCtrl, ModifierAlt, ModifierShift:
	default:
		return fmt.Errorf("trigger_modifier must be one of ctrl, alt, shift (got %q)", c.TriggerModifier)
	}
	if c.ShowDelayMS < 0 || c.OneClickDelayMS < 0 || c.SingleFieldDelayMS < 0 {
		return fmt.Errorf("delays must be non-negative")
	}
	if c.TriggerQueueSize < 0 {
		return fmt.Errorf("trigger_queue_size must be non-negative")
	}
	if c.PasswordLength < 0 {
		return fmt.Errorf("password_length must be non-negative")
	}
	if c.WebPort < 0 || c.WebPort > 65535 {
		return fmt.Errorf("web_port out of range: %d", c.WebPort)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// WindowOnlyAllowed reports whether the agent may run without its input hook.
func (c *Config) WindowOnlyAllowed() bool {
	return c.AllowWindowOnly == nil || *c.AllowWindowOnly
}

// ShowDelay returns ShowDelayMS as a duration.
func (c *Config) ShowDelay() time.Duration {
	return time.Duration(c.ShowDelayMS) * time.Millisecond
}

// OneClickDelay returns OneClickDelayMS as a duration.
func (c *Config) OneClickDelay() time.Duration {
	return time.Duration(c.OneClickDelayMS) * time.Millisecond
}

// SingleFieldDelay returns SingleFieldDelayMS as a duration.
func (c *Config) SingleFieldDelay() time.Duration {
	return time.Duration(c.SingleFieldDelayMS) * time.Millisecond
}

// SlogLevel maps LogLevel to a slog.Level. Empty means info.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
