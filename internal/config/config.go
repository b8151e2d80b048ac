// Package config resolves widget settings from flags, environment, and an
// optional TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskprogress-cli/internal/source"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfigDir  = "TASKPROGRESS_CONFIG_DIR"
	EnvConfigFile = "TASKPROGRESS_CONFIG"
	EnvSource     = "TASKPROGRESS_SOURCE"
	EnvSymbol     = "TASKPROGRESS_SYMBOL"
	EnvLogFile    = "TASKPROGRESS_LOG_FILE"
	EnvTimeout    = "TASKPROGRESS_TIMEOUT"
	EnvAddr       = "TASKPROGRESS_ADDR"
	EnvTheme      = "TASKPROGRESS_TUI_THEME"
	EnvGlyphs     = "TASKPROGRESS_TUI_GLYPHS"

	DefaultAddr = "127.0.0.1:3340"
)

// File mirrors config.toml.
type File struct {
	Source  string   `toml:"source"`
	Symbol  string   `toml:"symbol"`
	Timeout Duration `toml:"timeout"`
	Theme   string   `toml:"theme"`
	Glyphs  string   `toml:"glyphs"`
	LogFile string   `toml:"log_file"`
	Addr    string   `toml:"addr"`
}

// Duration decodes TOML strings like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// Settings is the resolved configuration.
type Settings struct {
	Source  string
	Symbol  string
	Timeout time.Duration
	Theme   string
	Glyphs  string
	LogFile string
	Addr    string
}

// Overrides are explicitly set flag values; empty fields fall through.
type Overrides struct {
	Source  string
	Symbol  string
	Timeout time.Duration
	LogFile string
	Addr    string
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching the real config).
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "taskprogress"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "taskprogress"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadFile decodes path. A missing file yields a zero File.
func LoadFile(path string) (File, error) {
	var f File
	if strings.TrimSpace(path) == "" {
		return f, nil
	}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// Resolve merges flag > env > file > defaults. An empty path uses Path(),
// which may be missing; an explicit path must exist.
func Resolve(path string, o Overrides) (Settings, error) {
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return Settings{}, err
		}
		path = p
	} else if _, err := os.Stat(path); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	f, err := LoadFile(path)
	if err != nil {
		return Settings{}, err
	}

	timeout := f.Timeout.Duration
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		timeout = d
	}
	if o.Timeout > 0 {
		timeout = o.Timeout
	}

	return Settings{
		Source:  first(o.Source, os.Getenv(EnvSource), f.Source, source.DefaultURL),
		Symbol:  first(o.Symbol, os.Getenv(EnvSymbol), f.Symbol),
		Timeout: timeout,
		Theme:   first(os.Getenv(EnvTheme), f.Theme),
		Glyphs:  first(os.Getenv(EnvGlyphs), f.Glyphs),
		LogFile: first(o.LogFile, os.Getenv(EnvLogFile), f.LogFile),
		Addr:    first(o.Addr, os.Getenv(EnvAddr), f.Addr, DefaultAddr),
	}, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
