// Package config handles application configuration via TOML files.
// Configuration is stored at ~/.config/rarbg-cli/config.toml and covers
// the search defaults, the data directory, the challenge solver script,
// and optional qBittorrent hand-off.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration
type Config struct {
	Search      SearchConfig      `toml:"search"`
	Data        DataConfig        `toml:"data"`
	Solver      SolverConfig      `toml:"solver"`
	QBittorrent QBittorrentConfig `toml:"qbittorrent"`
	Logging     LoggingConfig     `toml:"logging"`
}

// SearchConfig holds defaults applied when the matching flag is unset
type SearchConfig struct {
	Domain string `toml:"domain"`
	Unit   string `toml:"unit"`
}

// DataConfig holds the on-disk state location
type DataConfig struct {
	// Dir holds cookies.json and the history/ cache.
	Dir string `toml:"dir"`
}

// SolverConfig holds the external challenge solver settings
type SolverConfig struct {
	// Script is run with the challenge URL as its only argument and
	// must print cookies on stdout. Empty disables the script solver.
	Script string `toml:"script"`
}

// QBittorrentConfig holds qBittorrent Web API settings
type QBittorrentConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `toml:"level"`
}

// Default returns the default configuration
func Default() Config {
	home, _ := os.UserHomeDir()

	return Config{
		Search: SearchConfig{
			Domain: "rarbgunblocked.org",
			Unit:   "",
		},
		Data: DataConfig{
			Dir: filepath.Join(home, ".rarbg-cli"),
		},
		Solver: SolverConfig{
			Script: "",
		},
		QBittorrent: QBittorrentConfig{
			Host:     "localhost",
			Port:     8080,
			Username: "admin",
			Password: "adminadmin",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rarbg-cli", "config.toml")
}

// Load reads config from path, or from ConfigPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// No config file, return defaults
		return cfg, nil
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes config to disk
func Save(cfg Config) error {
	path := ConfigPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureDataDir creates the data directory if it doesn't exist
func EnsureDataDir(cfg Config) error {
	return os.MkdirAll(cfg.Data.Dir, 0755)
}
