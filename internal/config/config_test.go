package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("KERNELGATE_HOST", "")
	t.Setenv("KERNELGATE_PORT", "")
	t.Setenv("KERNELGATE_LOG_LEVEL", "")
	t.Setenv("KERNELGATE_CONFIG_DIR", "")
	t.Setenv("KERNELGATE_DB_PATH", "")

	cfg := LoadConfig()
	if cfg.ListenHost != "127.0.0.1" {
		t.Fatalf("expected loopback default, got %q", cfg.ListenHost)
	}
	if cfg.ListenPort != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.ListenPort)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected info default, got %q", cfg.LogLevel)
	}
	if cfg.DBPath != filepath.Join(cfg.ConfigDir, "kernelgate.db") {
		t.Fatalf("db path must live in config dir: %+v", cfg)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("KERNELGATE_HOST", "0.0.0.0")
	t.Setenv("KERNELGATE_PORT", "9000")
	t.Setenv("KERNELGATE_LOG_LEVEL", "debug")
	t.Setenv("KERNELGATE_CONFIG_DIR", "/tmp/kernelgate-test")
	t.Setenv("KERNELGATE_DB_PATH", "/tmp/other/events.db")

	cfg := LoadConfig()
	if cfg.ListenHost != "0.0.0.0" || cfg.ListenPort != 9000 {
		t.Fatalf("listen overrides lost: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level override lost: %q", cfg.LogLevel)
	}
	if cfg.ConfigDir != "/tmp/kernelgate-test" || cfg.DBPath != "/tmp/other/events.db" {
		t.Fatalf("path overrides lost: %+v", cfg)
	}
}

func TestLoadConfig_BadPortFallsBack(t *testing.T) {
	t.Setenv("KERNELGATE_PORT", "not-a-port")
	if cfg := LoadConfig(); cfg.ListenPort != 8000 {
		t.Fatalf("expected fallback port, got %d", cfg.ListenPort)
	}
}
