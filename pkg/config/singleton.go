package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the global configuration instance.
	globalConfig *Config

	// configPath remembers the file the global configuration came from.
	configPath string

	// configMutex protects concurrent access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures Initialize is only called once.
	initOnce sync.Once
)

// Initialize loads the configuration from the specified path, with
// environment overrides, and sets it as the global configuration.
// This function should be called once at application startup.
// Subsequent calls are no-ops and return the first call's result.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configPath = path
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the global configuration instance.
// Returns nil if Initialize has not been called or if initialization failed.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig sets the global configuration instance.
// This is primarily useful for testing.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()
}

// ReloadConfig reloads the configuration from the specified path and swaps
// it in. The previous configuration stays active if loading fails.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configPath = path
	configMutex.Unlock()

	return cfg, nil
}

// Path returns the file the global configuration was loaded from.
func Path() string {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return configPath
}

// MustGetConfig returns the global configuration or panics if not initialized.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized - call config.Initialize() first")
	}
	return cfg
}
