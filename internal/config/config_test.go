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
	t.Setenv(EnvServer, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	t.Setenv(EnvServer, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: backend:9000\ntimeout: 3s\npalette: tokyo-night\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "backend:9000", cfg.Server)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "tokyo-night", cfg.Palette)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultUnitDomain, cfg.UnitDomain)
}

func TestLoadEnvOverridesServer(t *testing.T) {
	t.Setenv(EnvServer, "env-host:1234")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: file-host:1\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-host:1234", cfg.Server)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSetAndSave(t *testing.T) {
	t.Setenv(EnvServer, "")
	cfg := Default()
	require.NoError(t, cfg.Set("timeout", "250ms"))
	require.NoError(t, cfg.Set("log_level", "-1"))
	require.NoError(t, cfg.Set("unit_domain", "bank"))
	assert.ErrorIs(t, cfg.Set("colour", "red"), ErrUnknownKey)
	assert.Error(t, cfg.Set("timeout", "soon"))

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, loaded.Timeout)
	assert.Equal(t, int8(-1), loaded.LogLevel)
	assert.Equal(t, "bank", loaded.UnitDomain)
}

func TestStateUpdate(t *testing.T) {
	dir := t.TempDir()
	path := StatePath(filepath.Join(dir, "config.yaml"))
	assert.Equal(t, filepath.Join(dir, "state.yaml"), path)

	s, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, State{}, s)

	require.NoError(t, Update(path, func(s *State) { s.SelectedUser = "alice" }))
	require.NoError(t, Update(path, func(s *State) { s.LastDriver = "upi@0.1.0" }))

	s, err = LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, State{SelectedUser: "alice", LastDriver: "upi@0.1.0"}, s)
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	t.Setenv(EnvServer, "env-host:1234")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: file-host:1\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file-host:1", cfg.Server)
}
