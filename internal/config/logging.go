package config

import "fmt"

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string         `yaml:"level"`  // debug, info, warn, error
	Format   string         `yaml:"format"` // text, json
	Dir      string         `yaml:"dir"`
	Rotation RotationConfig `yaml:"rotation"`
	Console  ConsoleConfig  `yaml:"console"`
	File     FileConfig     `yaml:"file"`
}

// RotationConfig holds log rotation settings.
type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"`    // MB
	MaxBackups int  `yaml:"max_backups"` // number of files
	MaxAge     int  `yaml:"max_age"`     // days
	Compress   bool `yaml:"compress"`
}

// ConsoleConfig holds console output configuration.
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // optional override
	Format  string `yaml:"format"` // optional override
}

// FileConfig holds file output configuration.
type FileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // optional override
	Format  string `yaml:"format"` // optional override
}

// DefaultLoggingConfig returns the default logging configuration: console
// only, info level, text format.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "text",
		Dir:    "logs",
		Rotation: RotationConfig{
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
		},
		Console: ConsoleConfig{
			Enabled: true,
		},
	}
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	if !validLogLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	if !validLogFormats[c.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Format)
	}
	if c.File.Enabled && c.Dir == "" {
		return fmt.Errorf("logging.dir cannot be empty when file output is enabled")
	}

	if c.Console.Level != "" && !validLogLevels[c.Console.Level] {
		return fmt.Errorf("invalid console log level: %s", c.Console.Level)
	}
	if c.Console.Format != "" && !validLogFormats[c.Console.Format] {
		return fmt.Errorf("invalid console log format: %s", c.Console.Format)
	}
	if c.File.Level != "" && !validLogLevels[c.File.Level] {
		return fmt.Errorf("invalid file log level: %s", c.File.Level)
	}
	if c.File.Format != "" && !validLogFormats[c.File.Format] {
		return fmt.Errorf("invalid file log format: %s", c.File.Format)
	}
	return nil
}

// ConsoleLevel returns the effective console level.
func (c *LoggingConfig) ConsoleLevel() string {
	if c.Console.Level != "" {
		return c.Console.Level
	}
	return c.Level
}

// ConsoleFormat returns the effective console format.
func (c *LoggingConfig) ConsoleFormat() string {
	if c.Console.Format != "" {
		return c.Console.Format
	}
	return c.Format
}

// FileLevel returns the effective file level.
func (c *LoggingConfig) FileLevel() string {
	if c.File.Level != "" {
		return c.File.Level
	}
	return c.Level
}

// FileFormat returns the effective file format.
func (c *LoggingConfig) FileFormat() string {
	if c.File.Format != "" {
		return c.File.Format
	}
	return c.Format
}
