package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir mirrors t.Chdir (Go 1.24+), which is unavailable on this toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(body), 0o644))
	chdir(t, dir)
	t.Setenv("CONFIG_ENV", "test")
}

func TestLoad_RefusesEmptySecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	_, err := Load()
	require.ErrorContains(t, err, "secret")
}

func TestLoad_SecretFromFileWithDefaults(t *testing.T) {
	req := require.New(t)
	writeConfig(t, "secret: s3cr3t\nport: 9090\n")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("s3cr3t", cfg.Secret)
	req.Equal(9090, cfg.Port)
	req.Equal("release", cfg.Mode)
	req.Equal("localhost:6379", cfg.RedisAddr)
	req.Equal(5*time.Minute, cfg.HeartbeatThreshold)
	req.Equal(30, cfg.EventRateLimit)
}
