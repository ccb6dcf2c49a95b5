package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const panelYAML = `
http:
  listen_addr: ":9090"
  read_timeout: 5s
backend:
  base_url: http://players.internal:8080
  timeout: 3s
panel:
  default_page_size: 10
  csrf_key: vault:secret/playeradmin#csrf_key
state:
  driver: redis
  redis_addr: localhost:6379
  idle_ttl: 15m
`

type fakeSecrets map[string]string

func (f fakeSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f[path+"#"+key]
	if !ok {
		return "", errors.New("no such secret")
	}
	return v, nil
}

func writeRoot(t *testing.T, yaml, dotenv string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "conf", fileName), []byte(yaml), 0o644))
	}
	if dotenv != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "conf", ".env"), []byte(dotenv), 0o644))
	}
	t.Setenv(EnvRoot, root)
	return root
}

func TestLoad_LayersAndVault(t *testing.T) {
	root := writeRoot(t, panelYAML, "PLAYERADMIN_LOGGING__LEVEL=debug\n")
	t.Cleanup(func() { _ = os.Unsetenv("PLAYERADMIN_LOGGING__LEVEL") })
	t.Setenv("PLAYERADMIN_HTTP__FORCE_HTTPS", "true")
	t.Setenv("PLAYERADMIN_BACKEND__TIMEOUT", "7s")

	cfg, err := Load(context.Background(), fakeSecrets{"secret/playeradmin#csrf_key": "from-vault"})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.ListenAddr)
	assert.True(t, cfg.HTTP.ForceHTTPS)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "http://players.internal:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Backend.Timeout) // env beats YAML
	assert.Equal(t, 10, cfg.Panel.DefaultPageSize)
	assert.Equal(t, "from-vault", cfg.Panel.CSRFKey)
	assert.Equal(t, "redis", cfg.State.Driver)
	assert.Equal(t, 15*time.Minute, cfg.State.IdleTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, root, cfg.Paths.Root)
	assert.Equal(t, filepath.Join(root, "logs"), cfg.Abs(cfg.Logging.Dir))
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	writeRoot(t, "", "")
	t.Setenv("PLAYERADMIN_BACKEND__BASE_URL", "http://localhost:8081")

	cfg, err := Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, 5, cfg.Panel.DefaultPageSize)
	assert.Equal(t, "memory", cfg.State.Driver)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
}

func TestLoad_ValidationNamesKeys(t *testing.T) {
	writeRoot(t, `
backend:
  base_url: http://localhost:8081
panel:
  default_page_size: 7
state:
  driver: mysql
`, "")

	_, err := Load(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panel.default_page_size")
	assert.Contains(t, err.Error(), "state.mysql_dsn")
}

func TestLoad_VaultErrors(t *testing.T) {
	writeRoot(t, panelYAML, "")

	_, err := Load(context.Background(), nil)
	assert.ErrorContains(t, err, "no vault client")

	_, err = Load(context.Background(), fakeSecrets{})
	assert.ErrorContains(t, err, "panel.csrf_key")

	t.Setenv("PLAYERADMIN_PANEL__CSRF_KEY", "vault:nokey")
	_, err = Load(context.Background(), fakeSecrets{})
	assert.ErrorContains(t, err, "malformed vault reference")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "state.redis_addr", envKey("PLAYERADMIN_STATE__REDIS_ADDR"))
	assert.Equal(t, "http.listen_addr", envKey("PLAYERADMIN_HTTP__LISTEN_ADDR"))
}
