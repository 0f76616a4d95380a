package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalogue CatalogueConfig `toml:"catalogue"`
	Library   LibraryConfig   `toml:"library"`
	State     StateConfig     `toml:"state"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
}

// CatalogueConfig contains settings for the remote catalogue site and its backends.
type CatalogueConfig struct {
	BaseURL     string  `toml:"base_url"`
	SessionFile string  `toml:"session_file"`
	BridgeURL   string  `toml:"bridge_url"`
	RateLimit   float64 `toml:"rate_limit"`
	CrawlMonths int     `toml:"crawl_months"`
}

// LibraryConfig contains paths for the local music library and the capture list.
type LibraryConfig struct {
	MusicDirs    []string `toml:"music_dirs"`
	CapturesPath string   `toml:"captures_path"`
	DownloadDir  string   `toml:"download_dir"`
}

// StateConfig contains the location of the persisted track state file.
type StateConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig contains scan cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the read-only status HTTP server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidInput, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
