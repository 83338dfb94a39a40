package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/babarot/rmt/internal/env"
	"github.com/babarot/rmt/internal/utils/fs"
	"github.com/babarot/rmt/internal/xattr"
	"github.com/k1LoW/duration"
)

// Attribute keys holding the settings
const (
	AttrTrashDir    = "trash_dir"
	AttrGracePeriod = "grace_period_in_days"
)

// DefaultGracePeriodInDays is used when the trash directory carries no
// valid grace period
const DefaultGracePeriodInDays = 7

// Key names a setting on the command line
type Key string

const (
	KeyTrashDir    Key = "trash-dir"
	KeyGracePeriod Key = "grace-period"
)

var ErrUnknownKey = errors.New("unknown configuration key")

// Config holds the resolved settings. The trash directory location is
// stored on the anchor file (the running executable by default) and the
// grace period on the trash directory itself.
type Config struct {
	TrashDir          string
	GracePeriodInDays int

	store  xattr.Store
	anchor string
}

type options struct {
	anchor          string
	defaultTrashDir string
}

// Option configures Load
type Option func(*options)

// WithAnchor stores the trash directory setting on path instead of the
// running executable
func WithAnchor(path string) Option {
	return func(o *options) {
		o.anchor = path
	}
}

// WithDefaultTrashDir replaces the trash directory used when none is configured
func WithDefaultTrashDir(path string) Option {
	return func(o *options) {
		o.defaultTrashDir = path
	}
}

// Load resolves both settings through store, creating the trash directory
// when it does not exist yet. Missing, unreadable or malformed values fall
// back to the defaults.
func Load(store xattr.Store, opts ...Option) (*Config, error) {
	o := options{defaultTrashDir: env.RMT_TRASH_DIR}
	for _, opt := range opts {
		opt(&o)
	}

	if o.anchor == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		o.anchor = exe
	}

	cfg := &Config{
		TrashDir:          o.defaultTrashDir,
		GracePeriodInDays: DefaultGracePeriodInDays,
		store:             store,
		anchor:            o.anchor,
	}

	switch value, ok, err := store.Get(o.anchor, AttrTrashDir); {
	case err != nil:
		slog.Warn("failed to read trash dir setting, using default",
			"anchor", o.anchor, "default", cfg.TrashDir, "error", err)
	case ok && value != "":
		cfg.TrashDir = value
	}

	if err := ensureDir(cfg.TrashDir); err != nil {
		return nil, err
	}

	switch value, ok, err := store.Get(cfg.TrashDir, AttrGracePeriod); {
	case err != nil:
		slog.Warn("failed to read grace period setting, using default",
			"trash_dir", cfg.TrashDir, "error", err)
	case ok:
		days, err := strconv.Atoi(value)
		if err != nil || days < 0 {
			slog.Warn("invalid grace period setting, using default",
				"value", value, "default", DefaultGracePeriodInDays)
			break
		}
		cfg.GracePeriodInDays = days
	}

	slog.Debug("config loaded",
		"trash_dir", cfg.TrashDir,
		"grace_period_in_days", cfg.GracePeriodInDays,
		"anchor", cfg.anchor,
	)
	return cfg, nil
}

func ensureDir(path string) error {
	fi, err := os.Stat(path)
	switch {
	case err == nil:
		if !fi.IsDir() {
			return fmt.Errorf("trash dir %s is not a directory", path)
		}
		return nil
	case os.IsNotExist(err):
		slog.Warn("creating trash dir as it does not exist", "dir", path)
		return os.MkdirAll(path, 0700)
	default:
		return err
	}
}

// GracePeriod returns the configured grace period as a duration
func (c *Config) GracePeriod() (time.Duration, error) {
	return GracePeriod(c.GracePeriodInDays)
}

// GracePeriod converts a number of days to a duration
func GracePeriod(days int) (time.Duration, error) {
	if days < 0 {
		return 0, fmt.Errorf("grace period must not be negative: %d", days)
	}
	if days == 0 {
		return 0, nil
	}
	return duration.Parse(fmt.Sprintf("%d days", days))
}

// Get returns the current value of key
func (c *Config) Get(key Key) (string, error) {
	switch key {
	case KeyTrashDir:
		return c.TrashDir, nil
	case KeyGracePeriod:
		return strconv.Itoa(c.GracePeriodInDays), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates value and persists it as key. It returns the value as stored.
func (c *Config) Set(key Key, value string) (string, error) {
	switch key {
	case KeyTrashDir:
		return c.SetTrashDir(value)
	case KeyGracePeriod:
		days, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("grace period must be a non-negative integer: %q", value)
		}
		if err := c.SetGracePeriod(days); err != nil {
			return "", err
		}
		return strconv.Itoa(days), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// SetTrashDir records path as the trash directory on the anchor file. The
// new location takes effect on the next Load.
func (c *Config) SetTrashDir(path string) (string, error) {
	abs, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if err := validateStruct(trashDirInput{TrashDir: abs}); err != nil {
		return "", err
	}
	if err := c.store.Set(c.anchor, AttrTrashDir, abs); err != nil {
		return "", err
	}
	slog.Info("trash dir updated", "trash_dir", abs, "anchor", c.anchor)
	return abs, nil
}

// SetGracePeriod records days as the grace period on the current trash directory
func (c *Config) SetGracePeriod(days int) error {
	if err := validateStruct(gracePeriodInput{Days: days}); err != nil {
		return err
	}
	if err := c.store.Set(c.TrashDir, AttrGracePeriod, strconv.Itoa(days)); err != nil {
		return err
	}
	c.GracePeriodInDays = days
	slog.Info("grace period updated", "days", days, "trash_dir", c.TrashDir)
	return nil
}

// Anchor returns the file the trash directory setting is stored on
func (c *Config) Anchor() string {
	return c.anchor
}

func expandPath(path string) (string, error) {
	expanded, err := fs.ExpandHome(strings.TrimSpace(path))
	if err != nil {
		return "", err
	}
	if expanded == "" {
		return "", nil
	}
	return filepath.Abs(expanded)
}
