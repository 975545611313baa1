package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cursorwatch/cursorwatch/pkg/poller"
)

const (
	defaultAddr      = "127.0.0.1:7197"
	defaultRetention = 30 * 24 * time.Hour
)

type Config struct {
	DBPath       string
	ConfigPath   string // credentials JSON; empty means environment variables
	Addr         string
	PollInterval time.Duration
	RedisAddr    string
	Retention    time.Duration
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	dbPath := envOrDefault("CURSORWATCH_DB_PATH", filepath.Join(cwd, "cursorwatch.db"))
	configPath := os.Getenv("CURSORWATCH_CONFIG_PATH")
	addr := addrFromEnv(defaultAddr)
	redisAddr := os.Getenv("CURSORWATCH_REDIS_ADDR")

	pollInterval := poller.DefaultInterval
	if v := os.Getenv("CURSORWATCH_POLL_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CURSORWATCH_POLL_INTERVAL: %w", err)
		}
		pollInterval = parsed
	}

	retention := defaultRetention
	if v := os.Getenv("CURSORWATCH_RETENTION"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CURSORWATCH_RETENTION: %w", err)
		}
		retention = parsed
	}

	flagSet := flag.NewFlagSet("cursorwatch-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagDB := flagSet.String("db", dbPath, "path to SQLite database")
	flagConfig := flagSet.String("config", configPath, "path to credentials JSON (default: environment variables)")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagPollInterval := flagSet.String("poll-interval", pollInterval.String(), "usage poll interval")
	flagRedis := flagSet.String("redis", redisAddr, "Redis address for the summary mirror (empty disables)")
	flagRetention := flagSet.String("retention", retention.String(), "fetch history retention")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	pollIntervalParsed, err := time.ParseDuration(*flagPollInterval)
	if err != nil {
		return Config{}, fmt.Errorf("invalid poll interval: %w", err)
	}
	retentionParsed, err := time.ParseDuration(*flagRetention)
	if err != nil {
		return Config{}, fmt.Errorf("invalid retention: %w", err)
	}

	config := Config{
		DBPath:       resolvePath(*flagDB, cwd),
		ConfigPath:   resolvePath(*flagConfig, cwd),
		Addr:         strings.TrimSpace(*flagAddr),
		PollInterval: pollIntervalParsed,
		RedisAddr:    strings.TrimSpace(*flagRedis),
		Retention:    retentionParsed,
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.PollInterval <= 0 {
		return Config{}, errors.New("poll interval must be positive")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("CURSORWATCH_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("CURSORWATCH_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
