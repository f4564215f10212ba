package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(NewViper(home), home)
	require.NoError(t, err)
	require.Equal(t, Default(home), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0o755))
	require.NoError(t, os.WriteFile(Path(home), []byte(`
blocked_addrs = ["treasury"]

[abci]
transport = "grpc"

[log]
level = "debug"
format = "json"

[relayer]
poll_interval = "500ms"
sweep = false
`), 0o644))

	t.Setenv("ORPSD_LOG_LEVEL", "warn")

	cfg, err := Load(NewViper(home), home)
	require.NoError(t, err)
	require.Equal(t, "grpc", cfg.ABCI.Transport)
	require.Equal(t, "tcp://127.0.0.1:26658", cfg.ABCI.Addr)
	require.Equal(t, "warn", cfg.Log.Level, "env overrides file")
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, 500*time.Millisecond, cfg.Relayer.PollInterval)
	require.False(t, cfg.Relayer.Sweep)
	require.Equal(t, []string{"treasury"}, cfg.BlockedAddrs)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0o755))
	require.NoError(t, os.WriteFile(Path(home), []byte("[abci]\ntransport = \"udp\"\n"), 0o644))

	_, err := Load(NewViper(home), home)
	require.ErrorContains(t, err, "abci.transport")
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	home := t.TempDir()
	path, err := WriteDefault(home)
	require.NoError(t, err)
	require.FileExists(t, path)

	cfg, err := Load(NewViper(home), home)
	require.NoError(t, err)
	require.Equal(t, Default(home), cfg)

	// An existing file is left alone.
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n"), 0o644))
	_, err = WriteDefault(home)
	require.NoError(t, err)
	cfg, err = Load(NewViper(home), home)
	require.NoError(t, err)
	require.Equal(t, "error", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := Default(t.TempDir())
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Relayer.PollInterval = 0
	require.Error(t, bad.Validate())

	bad = cfg
	bad.BlockedAddrs = []string{" "}
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Home = ""
	require.Error(t, bad.Validate())
}
