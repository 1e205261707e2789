package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 72*time.Hour, cfg.Auth.ActivationTTL)
	assert.True(t, cfg.Auth.SendActivationEmail)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
database:
  driver: sqlite
  dsn: "file::memory:"
jwt:
  access_ttl: 15m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PRICEOYE_MAIL_HOST", "smtp.example.com")
	t.Setenv("PRICEOYE_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port, "环境变量优先于文件")
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PRICEOYE_DATABASE_DRIVER", "oracle")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
