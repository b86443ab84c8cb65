package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment holds all settings read from env vars. A .env file in
// the working directory is loaded first when present.
type Environment struct {
	AppEnv         string
	ServerAddress  string
	JWTSecret      string
	DatabaseURL    string
	MigrationsPath string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string
}

// Load reads the environment and fails on missing required variables.
func Load() (Environment, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("loaded .env file")
	}

	env := Environment{
		AppEnv:         getOr("APP_ENV", "development"),
		ServerAddress:  getOr("SERVER_ADDRESS", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getOr("MIGRATIONS_PATH", "./migrations"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
	}

	if env.DatabaseURL == "" {
		return Environment{}, fmt.Errorf("DATABASE_URL is required")
	}
	if env.JWTSecret == "" {
		return Environment{}, fmt.Errorf("JWT_SECRET is required")
	}
	return env, nil
}

// SetupLogging configures the global zerolog logger; pretty console
// output in development, JSON elsewhere.
func SetupLogging(appEnv string) {
	if appEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
