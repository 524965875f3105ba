package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvGoogleCredentials, "")
	t.Setenv(EnvOutlookToken, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "09:00", cfg.Day.Start)
	assert.Equal(t, "18:00", cfg.Day.End)
	assert.Equal(t, 10, cfg.Day.BreakMinutes)
	assert.Equal(t, 50, cfg.Day.DefaultTaskMinutes)
	assert.Equal(t, "json", cfg.Storage.HistoryBackend)
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout())
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())
	t.Setenv(EnvGoogleCredentials, "")
	t.Setenv(EnvOutlookToken, "")

	cfg := Default()
	cfg.Day.Start = "08:30"
	cfg.Storage.HistoryBackend = "sqlite"
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "08:30", loaded.Day.Start)
	assert.Equal(t, "sqlite", loaded.Storage.HistoryBackend)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[outlook]\ntoken = \"from-file\"\n"), 0600))
	t.Setenv(EnvOutlookToken, "from-env")
	t.Setenv(EnvGoogleCredentials, "/tmp/creds.json")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Outlook.Token)
	assert.Equal(t, "/tmp/creds.json", cfg.Google.CredentialsFile)
}

func TestLoadRejectsInvalidWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[day]\nstart = \"18:00\"\nend = \"09:00\"\n"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[day\n"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestDayWindowAndLunch(t *testing.T) {
	cfg := Default()
	day := time.Date(2024, 3, 4, 15, 22, 0, 0, time.UTC)

	start, end, err := cfg.Day.Window(day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC), end)

	ls, le, err := cfg.Day.Lunch(day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 12, 30, 0, 0, time.UTC), ls)
	assert.Equal(t, time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC), le)
}
