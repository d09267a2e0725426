package main

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("endpoint.url", "http://localhost:8000")
	viper.SetDefault("endpoint.timeout", 2*time.Minute)
	viper.SetDefault("quota.collection", "shouban")
	viper.SetDefault("quota.store_path", "figview-usage.yaml")
	viper.SetDefault("viewer.fit_delay", 100*time.Millisecond)
	viper.SetDefault("viewer.download_dir", ".")
	viper.SetDefault("viewer.width", 1024)
	viper.SetDefault("viewer.height", 768)
}

// loadConfig reads config.toml from the working directory. Running without one is fine;
// defaults and flags cover everything.
func loadConfig() error {
	setDefaults()

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	log.Debug().Msg("reading config file...")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Msg("no config file, using defaults")
	}

	zerolog.SetGlobalLevel(logLevel(viper.GetString("app.log_level")))

	return nil
}

func logLevel(name string) zerolog.Level {
	switch name {
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
