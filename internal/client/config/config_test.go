package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"client"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	require.Equal(t, "http://127.0.0.1:8080", cfg.ServerBaseURL)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, "teller.db", cfg.DatabaseDSN)
	require.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_NoOverrides(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()
	require.Equal(t, "http://127.0.0.1:8080", cfg.ServerBaseURL)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_Flags(t *testing.T) {
	withArgs(t, "-a", "https://bank.example:8443", "-d", "/tmp/t.db", "-t", "5", "-i", "30")

	cfg := LoadConfig()
	require.Equal(t, "https://bank.example:8443", cfg.ServerBaseURL)
	require.Equal(t, "/tmp/t.db", cfg.DatabaseDSN)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, 30*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_JsonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"server_base_url": "https://json.example",
		"request_timeout": "3s",
		"online_check_interval": 2000000000
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	withArgs(t, "-c", path)

	cfg := LoadConfig()
	require.Equal(t, "https://json.example", cfg.ServerBaseURL)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout)
	require.Equal(t, 2*time.Second, cfg.OnlineCheckInterval)
	// Fields absent from the file keep their defaults.
	require.Equal(t, "teller.db", cfg.DatabaseDSN)
}

func TestLoadConfig_FlagsBeatJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_base_url": "https://json.example"}`), 0o600))

	withArgs(t, "-c", path, "-a", "https://flag.example")

	cfg := LoadConfig()
	require.Equal(t, "https://flag.example", cfg.ServerBaseURL)
}

func TestLoadConfig_MissingJsonFilePanics(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "nope.json"))

	require.Panics(t, func() { LoadConfig() })
}
