// Package config loads process configuration from a TOML file alongside
// the binary, overridable through OBSERV_-prefixed environment
// variables. A default file, including a freshly generated cookie
// secret, is written on first run.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/observatory-hq/observatory/internal/security"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string
	DBPath     string
	SecretKey  string
	BaseURL    string
	AuditLog   string
	Production bool
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "observatory.db")
	v.SetDefault("secret_key", "")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("audit_log", "audit.log")
	v.SetDefault("production", false)

	v.SetEnvPrefix("OBSERV")
	v.AutomaticEnv()

	firstRun := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		firstRun = true
	}

	if v.GetString("secret_key") == "" {
		secret, err := security.NewSecretKey()
		if err != nil {
			return Config{}, fmt.Errorf("generate cookie secret: %w", err)
		}
		v.Set("secret_key", secret)
		firstRun = true
	}

	if firstRun {
		if err := v.WriteConfigAs(path); err != nil {
			return Config{}, fmt.Errorf("write default config %s: %w", path, err)
		}
	}

	return Config{
		Port:       v.GetString("port"),
		DBPath:     v.GetString("db_path"),
		SecretKey:  v.GetString("secret_key"),
		BaseURL:    v.GetString("base_url"),
		AuditLog:   v.GetString("audit_log"),
		Production: v.GetBool("production"),
	}, nil
}
