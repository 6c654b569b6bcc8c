package platform

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvBaseURL  = "CLEVERPAD_BASE_URL"
	EnvStateDir = "CLEVERPAD_STATE_DIR"
	EnvDebounce = "CLEVERPAD_DEBOUNCE"
	EnvLogFile  = "CLEVERPAD_LOG_FILE"
)

// ConfigFileName is the name looked up next to the working directory.
const ConfigFileName = ".cleverpad.toml"

// Config is the on-disk client configuration.
type Config struct {
	BaseURL  string         `toml:"base_url"`
	StateDir string         `toml:"state_dir,omitempty"`
	Adapter  string         `toml:"adapter"` // "fs" or "memory"
	Autosave AutosaveConfig `toml:"autosave"`
	Import   ImportConfig   `toml:"import"`
	Log      LogConfig      `toml:"log"`
}

// AutosaveConfig tunes the draft controller.
type AutosaveConfig struct {
	Debounce     Duration `toml:"debounce"`
	SaveTimeout  Duration `toml:"save_timeout"`
	FlushOnLeave bool     `toml:"flush_on_leave"`
}

// ImportConfig bounds import batches.
type ImportConfig struct {
	MaxFiles int `toml:"max_files"`
}

// LogConfig selects the optional JSON log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// Duration is a time.Duration written as "1.5s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Adapter: "fs",
		Autosave: AutosaveConfig{
			Debounce:     Duration{1500 * time.Millisecond},
			SaveTimeout:  Duration{30 * time.Second},
			FlushOnLeave: true,
		},
		Import: ImportConfig{MaxFiles: 20},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultConfigPath is <user config dir>/cleverpad/config.toml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, "cleverpad", "config.toml")
}

// ReadConfig decodes a Config over the defaults.
func ReadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// LoadConfig reads path (a missing file yields the defaults), then applies
// .env and environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer f.Close()
		if cfg, err = ReadConfig(f); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the CLEVERPAD_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvStateDir); ok && v != "" {
		c.StateDir = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := lookup(EnvDebounce); ok && v != "" {
		if err := c.Autosave.Debounce.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvDebounce, err)
		}
	}
	return nil
}

// InitConfig writes cfg to path, refusing to overwrite an existing file.
func InitConfig(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	if err := WriteConfig(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Options turns the configuration into workspace options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithBaseURL(c.BaseURL),
		WithDebounce(c.Autosave.Debounce.Duration),
		WithSaveTimeout(c.Autosave.SaveTimeout.Duration),
		WithFlushOnLeave(c.Autosave.FlushOnLeave),
	}
	if c.Adapter != "" {
		opts = append(opts, WithAdapter(c.Adapter))
	}
	return opts
}
