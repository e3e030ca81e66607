package docfill

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the docfill engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// DateDisplay is the Go reference layout used when rendering date-format
	// fields (ISO-8601 input, display output)
	DateDisplay string `yaml:"date_display"`
	// IncludeUnmapped controls whether data values without a mapping entry are
	// appended to the output as a readable listing
	IncludeUnmapped bool `yaml:"include_unmapped"`
	// StrictMode promotes mapping validation warnings to errors at generation
	StrictMode bool `yaml:"strict_mode"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		DateDisplay:     "January 2, 2006",
		IncludeUnmapped: true,
		StrictMode:      false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// DOCFILL_LOG_LEVEL
	if val := os.Getenv("DOCFILL_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// DOCFILL_DATE_DISPLAY
	if val := os.Getenv("DOCFILL_DATE_DISPLAY"); val != "" {
		config.DateDisplay = val
	}

	// DOCFILL_INCLUDE_UNMAPPED
	if val := os.Getenv("DOCFILL_INCLUDE_UNMAPPED"); val != "" {
		config.IncludeUnmapped = parseBool(val)
	}

	// DOCFILL_STRICT_MODE
	if val := os.Getenv("DOCFILL_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}

	return config
}

// LoadConfigFile reads a YAML configuration file and applies it on top of the
// defaults. Missing keys keep their default values.
func LoadConfigFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultConfig().LogLevel
	}
	if config.DateDisplay == "" {
		config.DateDisplay = DefaultConfig().DateDisplay
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.DateDisplay == "" {
		return errors.New("date display layout cannot be empty")
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
