package platform

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	src := `
base_url = "https://notes.example.com"
adapter = "memory"

[autosave]
debounce = "750ms"
flush_on_leave = false

[log]
file = "/var/log/cleverpad.log"
`
	cfg, err := ReadConfig(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "https://notes.example.com", cfg.BaseURL)
	assert.Equal(t, "memory", cfg.Adapter)
	assert.Equal(t, 750*time.Millisecond, cfg.Autosave.Debounce.Duration)
	assert.False(t, cfg.Autosave.FlushOnLeave)
	assert.Equal(t, 30*time.Second, cfg.Autosave.SaveTimeout.Duration, "unset keys keep defaults")
	assert.Equal(t, 20, cfg.Import.MaxFiles)
	assert.Equal(t, "/var/log/cleverpad.log", cfg.Log.File)
}

func TestReadConfigRejectsBadDuration(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("[autosave]\ndebounce = \"soon\"\n"))
	assert.Error(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, DefaultConfig()))
	assert.Contains(t, buf.String(), `debounce = "1.5s"`)

	cfg, err := ReadConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBaseURL:  "http://override:9000",
		EnvDebounce: "2s",
		EnvLogFile:  "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.Log.File = "from-file.log"
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "http://override:9000", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Autosave.Debounce.Duration)
	assert.Empty(t, cfg.Log.File, "an empty variable disables the file log")
	assert.Empty(t, cfg.StateDir)

	env[EnvDebounce] = "later"
	assert.ErrorContains(t, cfg.ApplyEnv(lookup), EnvDebounce)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvStateDir, "/tmp/from-env")
	t.Setenv(EnvDebounce, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "/tmp/from-env", cfg.StateDir)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, InitConfig(path, DefaultConfig()))
	assert.ErrorContains(t, InitConfig(path, DefaultConfig()), "already exists")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Autosave.FlushOnLeave)
}
