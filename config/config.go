package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	StoreAPIURL       string        `envconfig:"STORE_API_URL"       default:"https://686b82f3e559eba90872d92c.mockapi.io"`
	HTTPPort          string        `envconfig:"HTTP_PORT"           default:":8080"`
	GrpcPort          string        `envconfig:"GRPC_PORT"           default:":50051"`
	LogLevel          string        `envconfig:"LOG_LEVEL"           default:"info"`
	HTTPClientTimeout time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"5s"`

	// Optional: enables the Postgres reconciliation log.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Optional: enables Redis-backed sessions instead of in-memory ones.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB"    default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

var (
	config  Config
	loadErr error
	once    sync.Once
)

// LoadConfig reads .env (if present) and then the process environment.
// It only does the work once per process.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		loadErr = Process(&config)
		if loadErr != nil {
			return
		}

		logger.Infof("Configuration loaded: Store API=%s, HTTP Port=%s, GRPC Port=%s, LogLevel=%s",
			config.StoreAPIURL, config.HTTPPort, config.GrpcPort, config.LogLevel)
		if config.DatabaseURL != "" {
			logger.Info("Configuration loaded: DatabaseURL is set, reconciliation log enabled")
		}
		if config.RedisAddr != "" {
			logger.Infof("Configuration loaded: Redis sessions at %s", config.RedisAddr)
		}
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return &config, nil
}

// Process fills cfg from the environment without touching .env files.
func Process(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if cfg.StoreAPIURL == "" {
		return fmt.Errorf("configuration error: STORE_API_URL is empty")
	}
	if cfg.HTTPClientTimeout <= 0 {
		return fmt.Errorf("configuration error: HTTP_CLIENT_TIMEOUT must be positive")
	}
	return nil
}

// NewLogger builds the process logger the way every entrypoint expects it.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", level, logLevel.String())
	}
	logger.SetLevel(logLevel)
	return logger
}
