package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

type Config struct {
	Port                    string `envconfig:"PORT" default:"8080"`
	Env                     string `envconfig:"ENV" default:"development"`
	LogLevel                string `envconfig:"LOG_LEVEL" default:"info"`
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`
	PostgresConnStr         string `envconfig:"POSTGRES_CONN_STR"`
	MongoURI                string `envconfig:"MONGO_URI"`
	MongoDatabase           string `envconfig:"MONGO_DATABASE" default:"socialmedia"`
	JWTSecret               string `envconfig:"JWT_SECRET" default:"supersecretjwtkey"`
	MetricsPort             string `envconfig:"METRICS_PORT" default:"9090"`
	// AuthMode selects the bearer scheme of /api/v1: "jwt" or "firebase".
	AuthMode string `envconfig:"AUTH_MODE" default:"jwt"`

	// Notification pipeline
	AsyncFanout bool `envconfig:"NOTIFY_ASYNC_FANOUT" default:"false"`
	BatchSize   int  `envconfig:"NOTIFY_BATCH_SIZE" default:"500"`
}

// Load reads the .env file if present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AuthMode {
	case AuthModeJWT, AuthModeFirebase:
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeJWT, AuthModeFirebase, c.AuthMode)
	}
	if c.AuthMode == AuthModeFirebase && c.FirebaseCredentialsPath == "" {
		return fmt.Errorf("AUTH_MODE=%s requires FIREBASE_CREDENTIALS_PATH", AuthModeFirebase)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("NOTIFY_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	return nil
}
