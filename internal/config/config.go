// Package config loads the layered application configuration: defaults,
// then config/config.yml, then config/config.local.yml, then environment
// overrides.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	PubSub     PubSubConfig     `yaml:"pubsub"`
	Projection ProjectionConfig `yaml:"projection"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds the HTTP listen addresses.
type ServerConfig struct {
	APIAddr      string `yaml:"api_addr"`
	RealtimeAddr string `yaml:"realtime_addr"`
}

// StorageConfig selects the persistence backend for the event log and the
// read model.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // memory, mongo
	Mongo   MongoConfig `yaml:"mongo"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// PubSubConfig selects the notification transport.
type PubSubConfig struct {
	Backend       string     `yaml:"backend"` // memory, nats
	NATS          NATSConfig `yaml:"nats"`
	StreamName    string     `yaml:"stream_name"`
	SubjectPrefix string     `yaml:"subject_prefix"`
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ProjectionConfig controls read-model maintenance.
type ProjectionConfig struct {
	// RebuildOnStart replays the whole event log into the read model
	// before serving. Useful after changing projection logic.
	RebuildOnStart bool `yaml:"rebuild_on_start"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			APIAddr:      ":8080",
			RealtimeAddr: ":8081",
		},
		Storage: StorageConfig{
			Backend: "memory",
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "doodledocs",
			},
		},
		PubSub: PubSubConfig{
			Backend: "memory",
			NATS: NATSConfig{
				URL: "nats://localhost:4222",
			},
			StreamName:    "DOODLEDOCS",
			SubjectPrefix: "doodledocs.notifications",
		},
		Logging: DefaultLoggingConfig(),
	}
}

// LoadConfig loads configuration in layers:
// defaults -> config.yml -> config.local.yml -> env overrides -> Validate.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	loadFile("config/config.yml", cfg)
	loadFile("config/config.local.yml", cfg)

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(filename string, cfg *Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		log.Printf("Warning: Error reading %s: %v", filename, err)
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("Warning: Error parsing %s: %v", filename, err)
	}
}

func (c *Config) applyEnvOverrides() {
	setFromEnv(&c.Server.APIAddr, "DOODLEDOCS_API_ADDR")
	setFromEnv(&c.Server.RealtimeAddr, "DOODLEDOCS_REALTIME_ADDR")
	setFromEnv(&c.Storage.Backend, "DOODLEDOCS_STORAGE_BACKEND")
	setFromEnv(&c.Storage.Mongo.URI, "DOODLEDOCS_MONGO_URI")
	setFromEnv(&c.Storage.Mongo.Database, "DOODLEDOCS_MONGO_DATABASE")
	setFromEnv(&c.PubSub.Backend, "DOODLEDOCS_PUBSUB_BACKEND")
	setFromEnv(&c.PubSub.NATS.URL, "DOODLEDOCS_NATS_URL")
	setFromEnv(&c.Logging.Level, "DOODLEDOCS_LOG_LEVEL")
}

func setFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "mongo":
		if c.Storage.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri is required for the mongo backend")
		}
		if c.Storage.Mongo.Database == "" {
			return fmt.Errorf("storage.mongo.database is required for the mongo backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be memory or mongo)", c.Storage.Backend)
	}

	switch c.PubSub.Backend {
	case "memory":
	case "nats":
		if c.PubSub.NATS.URL == "" {
			return fmt.Errorf("pubsub.nats.url is required for the nats backend")
		}
	default:
		return fmt.Errorf("invalid pubsub backend: %s (must be memory or nats)", c.PubSub.Backend)
	}

	if c.Server.APIAddr == "" {
		return fmt.Errorf("server.api_addr cannot be empty")
	}

	return c.Logging.Validate()
}
