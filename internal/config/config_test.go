package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: \"9090\"\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Practice.FreeDailyQuestionLimit)
	assert.Equal(t, 24*time.Hour, cfg.Practice.SessionExpiry())
	assert.Equal(t, 500*time.Millisecond, cfg.Practice.GeneratorTimeout())
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.File)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, "practice:\n  free_daily_question_limit: 10\ndatabase:\n  driver: sqlite\n")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := LoadConfig(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Practice.FreeDailyQuestionLimit)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestLoadConfig_ReleaseNeedsStrongSecret(t *testing.T) {
	dir := writeConfig(t, "server:\n  mode: release\njwt:\n  secret: short\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestLoadConfig_InvalidPractice(t *testing.T) {
	dir := writeConfig(t, "practice:\n  session_expiry_hours: 0\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)
}
