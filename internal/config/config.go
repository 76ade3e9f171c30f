package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultWSURL = "ws://localhost:3001"

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	WSURL          string
	DebugAddr      string
	LogLevel       string
	LogDev         bool
	SendTimeout    time.Duration
	ReadLimitBytes int64
}

func Default() Config {
	return Config{
		WSURL:          DefaultWSURL,
		LogLevel:       "info",
		SendTimeout:    3 * time.Second,
		ReadLimitBytes: 1 << 20,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("WS_URL"); raw != "" {
		cfg.WSURL = raw
	}
	if raw := os.Getenv("DEBUG_ADDR"); raw != "" {
		cfg.DebugAddr = raw
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("LOG_DEV"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LogDev = value
		}
	}
	if raw := os.Getenv("SEND_TIMEOUT_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.SendTimeout = time.Duration(value) * time.Millisecond
		}
	}
	if raw := os.Getenv("READ_LIMIT_BYTES"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.ReadLimitBytes = value
		}
	}
	return cfg
}
