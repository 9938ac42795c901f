package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// unprefixedEnv are read from the process environment under their bare names
// as well as with ENV_PREFIX.
var unprefixedEnv = []string{
	ENV_SENDER_EMAIL,
	ENV_SENDER_PASSWORD,
	ENV_RECIPIENT_EMAIL,
	ENV_SMTP_HOST,
	ENV_SMTP_PORT,
}

func BindNotificationEnv() {
	for _, key := range unprefixedEnv {
		viper.BindEnv(key, GetEnvWithPrefix(key), key)
	}
	viper.SetDefault(ENV_SMTP_HOST, DEFAULT_SMTP_HOST)
	viper.SetDefault(ENV_SMTP_PORT, DEFAULT_SMTP_PORT)
}

// LoadDotEnv merges KEY=VALUE pairs from path into viper. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	if err := viper.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s: %v", path, err)
	}
	return nil
}
