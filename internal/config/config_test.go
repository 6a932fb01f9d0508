package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("missing.json")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "bordered-inset", cfg.Render.DefaultTemplate)
	assert.Equal(t, 15*time.Second, cfg.Render.RemoteTimeout.Std())
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
	assert.False(t, cfg.Storage.PublishingEnabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("CERTGEN_S3_REGION") })

	path := filepath.Join(dir, "config.json")
	data := `{
		"server": {"port": 9090},
		"render": {"default_template": "compact-inset", "remote_timeout": "5s"},
		"storage": {"bucket": "from-file", "presign_expiry": 3600000000000}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CERTGEN_S3_REGION=eu-west-1\nCERTGEN_LOG_LEVEL=debug\n"), 0o644))

	t.Setenv("CERTGEN_S3_BUCKET", "from-env")
	t.Setenv("CERTGEN_BATCH_MAX_CONCURRENT", "8")
	t.Setenv("CERTGEN_S3_USE_PATH_STYLE", "true")
	// godotenv leaves already-set variables alone
	t.Setenv("CERTGEN_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "compact-inset", cfg.Render.DefaultTemplate)
	assert.Equal(t, 5*time.Second, cfg.Render.RemoteTimeout.Std())
	assert.Equal(t, time.Hour, cfg.Storage.PresignExpiry.Std())
	assert.Equal(t, "from-env", cfg.Storage.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrent)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"render": {"remote_timeout": "soon"}}`), 0o644))
	_, err := LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	t.Setenv("CERTGEN_SERVER_PORT", "eighty")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "CERTGEN_SERVER_PORT")
}

func TestNewLogger(t *testing.T) {
	logger, err := (&LoggingConfig{Level: "WARN", Format: "json"}).NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = (&LoggingConfig{Level: "loud"}).NewLogger()
	assert.Error(t, err)
}
