package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and optionally a
// config file. Environment variables (prefix HERALD_, nesting with
// underscores, e.g. HERALD_DATABASE_URL) take precedence over values from
// the config file. Returns a populated Config struct or an error if
// loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config.yaml in the working directory; absence is fine,
	// any other read failure is not.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("HERALD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so bind
	// the nested keys explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"database.url",
		"scheduler.poll_interval",
		"scheduler.grace_hours",
		"scheduler.max_per_tick",
		"scheduler.send_timeout",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every setting that has one.
// The database URL deliberately has no default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("scheduler.poll_interval", "60s")
	v.SetDefault("scheduler.grace_hours", 24)
	v.SetDefault("scheduler.max_per_tick", 50)
	v.SetDefault("scheduler.send_timeout", "10s")
}
