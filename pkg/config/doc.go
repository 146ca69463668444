// Package config loads and validates the configuration of the tag service.
//
// Configuration is read from a YAML file, or a TOML file when the name ends
// in .toml, decoded on top of built-in
// defaults, optionally overridden from TAG_-prefixed environment variables
// and validated as a whole:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// A process-wide instance is kept behind Initialize and GetConfig. Watcher
// reloads the file when it changes on disk; only settings that can change
// at runtime, such as the log level, take effect without a restart.
package config
