package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultProfile = "default"

	DefaultDirMode   os.FileMode = 0755
	DefaultFileMode  os.FileMode = 0644
	DefaultThumbSize             = 90

	minThumbBound = 20
	maxThumbBound = 400
)

var ErrNoDefaultProfile = errors.New("no default profile configured")

// Config is the resolved configuration of one connector. It is built once
// per request by Resolve and treated as read-only afterwards.
type Config struct {
	BaseDir        string
	DirMode        os.FileMode
	FileMode       os.FileMode
	Overwrite      bool
	ThumbMaxWidth  int
	ThumbMaxHeight int

	// Hidden holds glob patterns of entry names never listed. The cache
	// sidecar is always hidden regardless of this list.
	Hidden []string

	// Confine rejects paths that resolve outside BaseDir.
	Confine bool
}

// NewConfig returns the default configuration rooted at baseDir.
func NewConfig(baseDir string) Config {
	return Config{
		BaseDir:        strings.TrimSpace(baseDir),
		DirMode:        DefaultDirMode,
		FileMode:       DefaultFileMode,
		Overwrite:      true,
		ThumbMaxWidth:  DefaultThumbSize,
		ThumbMaxHeight: DefaultThumbSize,
		Hidden:         []string{".*"},
		Confine:        true,
	}
}

// WithThumbBounds returns a copy of c with the given thumbnail bounds.
// A bound outside [20,400] is ignored and the current value kept.
func (c Config) WithThumbBounds(width, height int) Config {
	if validThumbBound(width) {
		c.ThumbMaxWidth = width
	}
	if validThumbBound(height) {
		c.ThumbMaxHeight = height
	}
	return c
}

func validThumbBound(v int) bool {
	return v >= minThumbBound && v <= maxThumbBound
}

// Profile is one named entry of the settings table. Unset fields inherit
// from the default profile.
type Profile struct {
	RootDir        string    `yaml:"root_dir"`
	DirMode        string    `yaml:"dir_mode"`
	FileMode       string    `yaml:"file_mode"`
	Overwrite      *bool     `yaml:"overwrite"`
	ThumbMaxWidth  *int      `yaml:"thumb_max_width"`
	ThumbMaxHeight *int      `yaml:"thumb_max_height"`
	Hidden         *[]string `yaml:"hidden"`
	Confine        *bool     `yaml:"confine"`
}

// Profiles maps a configuration key to its profile. The "default" entry
// is mandatory.
type Profiles map[string]Profile

// Resolve builds the configuration for key: built-in defaults, then the
// default profile, then the profile named key if there is one. Unknown
// keys resolve to the default profile.
func Resolve(key string, profiles Profiles) (Config, error) {
	base, ok := profiles[DefaultProfile]
	if !ok {
		return Config{}, ErrNoDefaultProfile
	}

	cfg, err := base.apply(NewConfig(""))
	if err != nil {
		return Config{}, fmt.Errorf("profile %s: %w", DefaultProfile, err)
	}

	if key != "" && key != DefaultProfile {
		if p, ok := profiles[key]; ok {
			if cfg, err = p.apply(cfg); err != nil {
				return Config{}, fmt.Errorf("profile %s: %w", key, err)
			}
		}
	}

	if cfg.BaseDir == "" {
		return Config{}, fmt.Errorf("profile %s: root_dir is empty", key)
	}
	return cfg, nil
}

func (p Profile) apply(cfg Config) (Config, error) {
	if root := strings.TrimSpace(p.RootDir); root != "" {
		cfg.BaseDir = filepath.Clean(root)
	}
	if p.DirMode != "" {
		mode, err := parseMode(p.DirMode)
		if err != nil {
			return cfg, err
		}
		cfg.DirMode = mode
	}
	if p.FileMode != "" {
		mode, err := parseMode(p.FileMode)
		if err != nil {
			return cfg, err
		}
		cfg.FileMode = mode
	}
	if p.Overwrite != nil {
		cfg.Overwrite = *p.Overwrite
	}

	width, height := cfg.ThumbMaxWidth, cfg.ThumbMaxHeight
	if p.ThumbMaxWidth != nil {
		width = *p.ThumbMaxWidth
	}
	if p.ThumbMaxHeight != nil {
		height = *p.ThumbMaxHeight
	}
	cfg = cfg.WithThumbBounds(width, height)

	if p.Hidden != nil {
		cfg.Hidden = append([]string(nil), (*p.Hidden)...)
	}
	if p.Confine != nil {
		cfg.Confine = *p.Confine
	}
	return cfg, nil
}

// parseMode reads an octal permission string such as "0755" or "0o644".
func parseMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(s), "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return os.FileMode(v).Perm(), nil
}
