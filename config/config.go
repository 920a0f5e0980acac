package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LocalNetworks are the networks treated as local when no source of
// networks is configured.
var LocalNetworks = []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

// Config holds the application configuration loaded from a YAML file.
type Config struct {
	// Networks are inline network patterns (host, CIDR or addr1..=addr2).
	Networks []string `yaml:"networks"`
	// NetworksFile is an optional file with one pattern per line.
	NetworksFile string `yaml:"networksFile"`
	// SPFDomains are domains whose SPF records contribute patterns.
	SPFDomains []string `yaml:"spfDomains"`
	// Resolver is the DNS server (host:port) used for SPF lookups.
	Resolver string `yaml:"resolver"`
	// ConcurrencyLimit for parallel DNS lookups.
	ConcurrencyLimit int `yaml:"concurrencyLimit"`
	// MaxLookups is the limit of TXT lookups per SPF domain, typically 10.
	MaxLookups int `yaml:"maxLookups"`
	// ServicesFile maps port/proto to service names (/etc/services format).
	ServicesFile string `yaml:"servicesFile"`
	// ServerThreshold is the number of flows above which a local
	// destination port is reported as a server.
	ServerThreshold int `yaml:"serverThreshold"`
	// ReloadDelay debounces networks file changes in watch mode.
	ReloadDelay time.Duration `yaml:"reloadDelay"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the logger output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads and unmarshals the configuration from the specified YAML file path.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %s: %w", filePath, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// HasNetworks reports whether any source of local networks is configured.
func (cfg *Config) HasNetworks() bool {
	return len(cfg.Networks) > 0 || cfg.NetworksFile != "" || len(cfg.SPFDomains) > 0
}

// applyDefaults fills in sensible defaults for missing or invalid values.
func (cfg *Config) applyDefaults() {
	if cfg.Resolver == "" {
		cfg.Resolver = "1.1.1.1:53"
	}
	if cfg.MaxLookups <= 0 {
		cfg.MaxLookups = 10 // Default SPF lookup limit
	}
	if cfg.ConcurrencyLimit <= 0 {
		cfg.ConcurrencyLimit = 4
	}
	if cfg.ServicesFile == "" {
		cfg.ServicesFile = "/etc/services"
	}
	if cfg.ServerThreshold <= 0 {
		cfg.ServerThreshold = 3
	}
	if cfg.ReloadDelay <= 0 {
		cfg.ReloadDelay = 500 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File != "" && cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 10
	}
}
