package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	viper.Reset()
	err := LoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoadDotEnv_EmptyPath(t *testing.T) {
	viper.Reset()
	assert.NoError(t, LoadDotEnv(""))
}

func TestLoadDotEnv_ReadsValues(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SENDER_EMAIL=me@example.com\nMODEL=qwen\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "me@example.com", viper.GetString(ENV_SENDER_EMAIL))
	assert.Equal(t, "qwen", viper.GetString(ENV_MODEL))
}

func TestBindNotificationEnv_ReadsBareAndPrefixedNames(t *testing.T) {
	viper.Reset()
	t.Setenv("SENDER_EMAIL", "bare@example.com")
	t.Setenv(GetEnvWithPrefix(ENV_RECIPIENT_EMAIL), "prefixed@example.com")

	BindNotificationEnv()

	assert.Equal(t, "bare@example.com", viper.GetString(ENV_SENDER_EMAIL))
	assert.Equal(t, "prefixed@example.com", viper.GetString(ENV_RECIPIENT_EMAIL))
	assert.Equal(t, DEFAULT_SMTP_HOST, viper.GetString(ENV_SMTP_HOST))
	assert.Equal(t, DEFAULT_SMTP_PORT, viper.GetInt(ENV_SMTP_PORT))
}

func TestGetEnvWithPrefix(t *testing.T) {
	assert.Equal(t, "LMSTUDIO_WEBAPP_MODEL", GetEnvWithPrefix(ENV_MODEL))
}
