package keyfill

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config contains all configuration options for the keyfill engine
type Config struct {
	// Separator is the single character splitting keyword fields, e.g. '!'
	// in {{XL!CELL!A1}}.
	Separator string
	// MaxIncludeDepth bounds template inclusion recursion. A direct or
	// mutual include cycle fails once the depth is exhausted.
	MaxIncludeDepth int
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// StrictMode turns the fail-open policy into fail-fast: the first
	// unresolvable keyword aborts the run instead of being recorded.
	StrictMode bool
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
		Separator:       "!",
		MaxIncludeDepth: 10,
		LogLevel:        "info",
		StrictMode:      false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	if val := os.Getenv("KEYFILL_SEPARATOR"); val != "" {
		config.Separator = val
	}

	if val := os.Getenv("KEYFILL_MAX_INCLUDE_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxIncludeDepth = depth
		}
	}

	if val := os.Getenv("KEYFILL_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv("KEYFILL_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}

	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Separator) != 1 {
		return errors.New("separator must be a single character")
	}
	if c.Separator == "{" || c.Separator == "}" {
		return errors.New("separator must not be a brace character")
	}

	if c.MaxIncludeDepth <= 0 {
		return errors.New("max include depth must be positive")
	}

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

	return nil
}

// GetGlobalConfig returns a copy of the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
