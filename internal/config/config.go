// Package config loads platform settings from a YAML file, falling back to
// defaults when the file is absent so a bare checkout runs locally.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Server  ServerConfig  `yaml:"server"`
		Mongo   MongoConfig   `yaml:"mongo"`
		Redis   RedisConfig   `yaml:"redis"`
		Sacred  SacredConfig  `yaml:"sacred"`
		History HistoryConfig `yaml:"history"`
	}

	ServerConfig struct {
		Addr string `yaml:"addr"`
		// PacingDelay spaces the staged INTENTION broadcasts.
		PacingDelay Duration `yaml:"pacing_delay"`
	}

	// Duration accepts the usual "500ms" notation in YAML, which the
	// decoder does not do for time.Duration on its own.
	Duration time.Duration

	MongoConfig struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	}

	RedisConfig struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	}

	SacredConfig struct {
		SourceDevice string `yaml:"source_device"`
	}

	HistoryConfig struct {
		Enabled bool  `yaml:"enabled"`
		Depth   int64 `yaml:"depth"`
	}
)

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        "localhost:9090",
			PacingDelay: Duration(500 * time.Millisecond),
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "sacred_computing",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Sacred: SacredConfig{
			SourceDevice: "sacred-go-platform",
		},
		History: HistoryConfig{
			Enabled: true,
			Depth:   32,
		},
	}
}

// Load reads the config at path. A missing file is not an error: defaults
// are returned so the platform can start without any setup.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
