package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	viper.Reset()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "jwt:\n  secret: test-secret\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "coaching_app", cfg.Database.Name)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "uploads", cfg.Storage.LocalRoot)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ClientExpiration)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TrainerExpiration)
	assert.Equal(t, 12*time.Hour, cfg.JWT.AdminExpiration)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowOrigins)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	dir := writeConfig(t, "server:\n  address: \":9090\"\n")

	_, err := LoadConfig(dir)
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := writeConfig(t, `
server:
  address: ":9090"
storage:
  driver: s3
jwt:
  secret: test-secret
  client_expiration: 1h
  admin_expiration: 30m
admin:
  email: root@example.com
  password: rootpass
  static_token: ops-token
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.ClientExpiration)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AdminExpiration)
	assert.Equal(t, "ops-token", cfg.Admin.StaticToken)
}
