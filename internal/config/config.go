/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Keys missing from the file keep their defaults.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Logging       LoggingConfig `yaml:"logging"`
	Editor        EditorConfig  `yaml:"editor"`
	Display       DisplayConfig `yaml:"display"`
	Index         IndexConfig   `yaml:"index"`
	Undo          UndoConfig    `yaml:"undo"`
	Remote        RemoteConfig  `yaml:"remote"`
	Text          TextConfig    `yaml:"text"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// RectConfig is an axis-aligned rectangle in canvas units.
type RectConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SnapConfig struct {
	Edges     bool    `yaml:"edges"`
	Centers   bool    `yaml:"centers"`
	Threshold float64 `yaml:"threshold"`
}

// EditorConfig holds the interaction policy.
type EditorConfig struct {
	HandleSize   float64 `yaml:"handle_size"`
	RotateOffset float64 `yaml:"rotate_offset"`
	MinSize      float64 `yaml:"min_size"`
	MinGroupSize float64 `yaml:"min_group_size"`

	// CheckBounds turns on containment in EditableArea for new documents.
	CheckBounds   bool       `yaml:"check_bounds"`
	EditableArea  RectConfig `yaml:"editable_area"`
	ContainGroups bool       `yaml:"contain_groups"`
	ContainKinds  []string   `yaml:"contain_kinds"`

	Snap SnapConfig `yaml:"snap"`
}

// DisplayConfig decides which kinds can be picked with the pointer.
type DisplayConfig struct {
	ShowObstacle bool `yaml:"show_obstacle"`
	ShowText     bool `yaml:"show_text"`
	ShowPhoto    bool `yaml:"show_photo"`
}

// IndexConfig sizes the spatial indices.
type IndexConfig struct {
	Bounds     RectConfig `yaml:"bounds"`
	MaxObjects int        `yaml:"max_objects"`
	MaxLevels  int        `yaml:"max_levels"`
}

type UndoConfig struct {
	MaxDepth   int `yaml:"max_depth"`
	MaxBytes   int `yaml:"max_bytes"`
	CoalesceMs int `yaml:"coalesce_ms"`
}

type RemoteConfig struct {
	TimeoutMs   int  `yaml:"timeout_ms"`
	TLSInsecure bool `yaml:"tls_insecure"`
	MaxBytes    int  `yaml:"max_bytes"`
	// Token is not stored on disk; it lives in the OS keychain.
}

// TextConfig registers font files for text measurement and overrides the
// builtin text styles ("booth", "description").
type TextConfig struct {
	Fonts  []FontFileConfig       `yaml:"fonts"`
	Styles map[string]StyleConfig `yaml:"styles"`
}

type FontFileConfig struct {
	Family string `yaml:"family"`
	Weight int    `yaml:"weight"`
	Italic bool   `yaml:"italic"`
	Path   string `yaml:"path"`
}

type StyleConfig struct {
	Family  string  `yaml:"family"`
	Size    float64 `yaml:"size"`
	Weight  int     `yaml:"weight"`
	Italic  bool    `yaml:"italic"`
	Padding float64 `yaml:"padding"`
	Leading float64 `yaml:"leading"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console", MaxSizeMB: 10, MaxBackups: 3},
		Editor: EditorConfig{
			HandleSize:    10,
			RotateOffset:  24,
			MinSize:       1,
			MinGroupSize:  5,
			EditableArea:  RectConfig{Width: 2000, Height: 1500},
			ContainGroups: true,
			ContainKinds:  []string{"obstacle"},
			Snap:          SnapConfig{Threshold: 6},
		},
		Display: DisplayConfig{ShowObstacle: true, ShowText: true, ShowPhoto: true},
		Index:   IndexConfig{Bounds: RectConfig{X: -10000, Y: -10000, Width: 20000, Height: 20000}, MaxObjects: 10, MaxLevels: 8},
		Undo:    UndoConfig{MaxDepth: 100, MaxBytes: 16 * 1024 * 1024},
		Remote:  RemoteConfig{TimeoutMs: 15000, MaxBytes: 8 * 1024 * 1024},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile = "BPL_CONFIG"

	EnvLogLevel  = "BPL_LOG_LEVEL"
	EnvLogFormat = "BPL_LOG_FORMAT"
	EnvLogSource = "BPL_LOG_SOURCE"
	EnvLogFile   = "BPL_LOG_FILE"

	EnvCheckBounds   = "BPL_CHECK_BOUNDS"
	EnvSnap          = "BPL_SNAP"
	EnvUndoMaxDepth  = "BPL_UNDO_MAX_DEPTH"
	EnvRemoteTimeout = "BPL_REMOTE_TIMEOUT_MS"
	EnvRemoteTLSInsc = "BPL_REMOTE_TLS_INSECURE"
)

// envKeys maps dotted config keys to their override variables.
var envKeys = map[string]string{
	"logging.level":       EnvLogLevel,
	"logging.format":      EnvLogFormat,
	"logging.source":      EnvLogSource,
	"logging.file":        EnvLogFile,
	"editor.check_bounds": EnvCheckBounds,
	"editor.snap":         EnvSnap,
	"undo.max_depth":      EnvUndoMaxDepth,
	"remote.timeout_ms":   EnvRemoteTimeout,
	"remote.tls_insecure": EnvRemoteTLSInsc,
}

// ConfigPath returns the per-user config file path. BPL_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "BoothPlan")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "BoothPlan")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "boothplan")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present) over the defaults and merges environment overrides.
// The remote token comes from the keyring and is returned separately.
// A file that exists but does not parse is reported together with the defaults.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			cfg = fileCfg
		}
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)
	tok, _ := Token()
	return cfg, tok, fileErr
}

// Save writes the user config YAML and persists the token into the OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		return SetToken(token)
	}
	return nil
}

func normalize(cfg *AppConfig) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	for i, k := range cfg.Editor.ContainKinds {
		cfg.Editor.ContainKinds[i] = strings.ToLower(strings.TrimSpace(k))
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCheckBounds)); v != "" {
		cfg.Editor.CheckBounds = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnap)); v != "" {
		on := envBool(v)
		cfg.Editor.Snap.Edges, cfg.Editor.Snap.Centers = on, on
	}
	if v := strings.TrimSpace(os.Getenv(EnvUndoMaxDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Undo.MaxDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemoteTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Remote.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemoteTLSInsc)); v != "" {
		cfg.Remote.TLSInsecure = envBool(v)
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Timeout returns the remote timeout, falling back to the default for non-positive values.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutMs <= 0 {
		return time.Duration(Defaults().Remote.TimeoutMs) * time.Millisecond
	}
	return time.Duration(r.TimeoutMs) * time.Millisecond
}

// Coalesce returns the undo coalescing window.
func (u UndoConfig) Coalesce() time.Duration { return time.Duration(u.CoalesceMs) * time.Millisecond }
