package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Addr != defaultAddr {
		t.Errorf("Expected default addr %s, got %s", defaultAddr, cfg.Addr)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Errorf("Expected 60s poll interval, got %v", cfg.PollInterval)
	}
	if !strings.HasSuffix(cfg.DBPath, "cursorwatch.db") {
		t.Errorf("Unexpected default db path: %s", cfg.DBPath)
	}
	if cfg.ConfigPath != "" {
		t.Errorf("Expected empty config path by default, got %s", cfg.ConfigPath)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("Expected redis disabled by default, got %s", cfg.RedisAddr)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CURSORWATCH_DB_PATH", "/tmp/watch.db")
	t.Setenv("CURSORWATCH_ADDR", "127.0.0.1:9999")
	t.Setenv("CURSORWATCH_POLL_INTERVAL", "2m")
	t.Setenv("CURSORWATCH_REDIS_ADDR", "127.0.0.1:6379")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DBPath != "/tmp/watch.db" {
		t.Errorf("Expected env db path, got %s", cfg.DBPath)
	}
	if cfg.Addr != "127.0.0.1:9999" {
		t.Errorf("Expected env addr, got %s", cfg.Addr)
	}
	if cfg.PollInterval != 2*time.Minute {
		t.Errorf("Expected 2m interval, got %v", cfg.PollInterval)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Errorf("Expected redis addr, got %s", cfg.RedisAddr)
	}
}

func TestLoadConfigPortEnv(t *testing.T) {
	t.Setenv("CURSORWATCH_PORT", "8123")
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8123" {
		t.Errorf("Expected port-derived addr, got %s", cfg.Addr)
	}
}

func TestLoadConfigFlagsBeatEnv(t *testing.T) {
	t.Setenv("CURSORWATCH_ADDR", "127.0.0.1:9999")
	cfg, err := LoadConfig([]string{"-addr", "127.0.0.1:7001", "-poll-interval", "30s"})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Addr != "127.0.0.1:7001" {
		t.Errorf("Expected flag addr to win, got %s", cfg.Addr)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("Expected 30s, got %v", cfg.PollInterval)
	}
}

func TestLoadConfigRelativePathsResolved(t *testing.T) {
	cfg, err := LoadConfig([]string{"-db", "data/watch.db", "-config", "creds.json"})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cwd, _ := os.Getwd()
	if cfg.DBPath != filepath.Join(cwd, "data/watch.db") {
		t.Errorf("Expected resolved db path, got %s", cfg.DBPath)
	}
	if cfg.ConfigPath != filepath.Join(cwd, "creds.json") {
		t.Errorf("Expected resolved config path, got %s", cfg.ConfigPath)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	if _, err := LoadConfig([]string{"-poll-interval", "soon"}); err == nil {
		t.Errorf("Expected error for bad poll interval")
	}
	if _, err := LoadConfig([]string{"-addr", "  "}); err == nil {
		t.Errorf("Expected error for empty addr")
	}
	t.Setenv("CURSORWATCH_POLL_INTERVAL", "bogus")
	if _, err := LoadConfig(nil); err == nil {
		t.Errorf("Expected error for bad env interval")
	}
}
