package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	SessionSecret  string
	DatabaseURL    string
	RedisURL       string
	HealthAdminKey string

	// FrontendURLEndsWith allows cross-origin requests from any origin with
	// this suffix (besides localhost in dev).
	FrontendURLEndsWith string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	return &Config{
		Env:            env,
		Port:           port,
		SessionSecret:  viper.GetString("SESSION_SECRET"),
		DatabaseURL:    dbURL,
		RedisURL:       viper.GetString("REDIS_URL"),
		HealthAdminKey: viper.GetString("HEALTH_ADMIN_KEY"),

		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
	}, nil
}
