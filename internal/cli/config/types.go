// Package config provides configuration management for the nordsite CLI.
//
// Configuration is layered with koanf. Precedence (highest to lowest):
// explicitly set flags > NORDSITE_* environment variables > config file
// (nordsite.yaml) > defaults.
package config

import (
	"time"

	"github.com/Grainular-Nord/nord.dev/internal/registry"
)

// Default configuration values.
const (
	DefaultOutput   = ".vitepress/nord.config.json"
	DefaultFormat   = "json"
	DefaultLogLevel = "info"
	DefaultPort     = 5174
	DefaultRate     = 0 // unlimited
)

// DefaultTimeout is the default per-request registry timeout.
const DefaultTimeout = registry.DefaultTimeout

// configFileNames are searched, in order, in each candidate directory.
var configFileNames = []string{"nordsite.yaml", "nordsite.yml"}

// RegistryConfig configures the npm registry client.
type RegistryConfig struct {
	URL     string        `koanf:"url"`
	Scope   string        `koanf:"scope"`
	Timeout time.Duration `koanf:"timeout"`
	Rate    float64       `koanf:"rate"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Port int `koanf:"port"`
}

// Config holds all CLI configuration options.
type Config struct {
	SiteFile    string         `koanf:"site_file"`
	Output      string         `koanf:"output"`
	Format      string         `koanf:"format"`
	Verbose     bool           `koanf:"verbose"`
	LogLevel    string         `koanf:"log_level"`
	Registry    RegistryConfig `koanf:"registry"`
	Serve       ServeConfig    `koanf:"serve"`
	ProjectRoot string         `koanf:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Output:   DefaultOutput,
		Format:   DefaultFormat,
		LogLevel: DefaultLogLevel,
		Registry: RegistryConfig{
			URL:     registry.DefaultBaseURL,
			Scope:   registry.DefaultScope,
			Timeout: DefaultTimeout,
			Rate:    DefaultRate,
		},
		Serve: ServeConfig{Port: DefaultPort},
	}
}
