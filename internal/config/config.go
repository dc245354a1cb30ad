package config

import (
	"os"
	"path/filepath"
)

type Config struct {
	ListenHost string
	ListenPort int
	LogLevel   string
	ConfigDir  string
	DBPath     string
}

func LoadConfig() Config {
	host := os.Getenv("KERNELGATE_HOST")
	if host == "" {
		host = "127.0.0.1"
	}

	port := 8000
	if p := os.Getenv("KERNELGATE_PORT"); p != "" {
		if n := atoiOrDefault(p, 8000); n > 0 {
			port = n
		}
	}

	level := os.Getenv("KERNELGATE_LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	configDir := os.Getenv("KERNELGATE_CONFIG_DIR")
	if configDir == "" {
		configDir = defaultConfigDir()
	}

	dbPath := os.Getenv("KERNELGATE_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(configDir, "kernelgate.db")
	}

	return Config{
		ListenHost: host,
		ListenPort: port,
		LogLevel:   level,
		ConfigDir:  configDir,
		DBPath:     dbPath,
	}
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".kernelgate"
	}
	return filepath.Join(home, ".kernelgate")
}

func atoiOrDefault(v string, fallback int) int {
	n := 0
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return fallback
		}
		n = n*10 + int(v[i]-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
