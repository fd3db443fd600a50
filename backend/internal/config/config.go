// Package config holds the server settings read from the environment.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains the server settings
type Config struct {
	// PlanetsDir holds one YAML body document per file
	PlanetsDir string `env:"ORRERY_PLANETS_DIR" envDefault:"planets"`

	// AssetsDir holds one directory per asset bundle
	AssetsDir string `env:"ORRERY_ASSETS_DIR" envDefault:"assets"`

	// Owner is the namespace the configured bodies resolve their bundles against
	Owner string `env:"ORRERY_OWNER" envDefault:"orrery"`

	TargetFPS int `env:"ORRERY_TARGET_FPS" envDefault:"60"`

	// RemovalDelayFrames is how long a destroyed body stays in the world
	RemovalDelayFrames int `env:"ORRERY_REMOVAL_DELAY_FRAMES" envDefault:"2"`

	ListenAddr string `env:"ORRERY_LISTEN_ADDR" envDefault:":8080"`
	GRPCAddr   string `env:"ORRERY_GRPC_ADDR" envDefault:":50052"`

	// FeedRate and FeedBurst limit messages per second to each feed client
	FeedRate  float64 `env:"ORRERY_FEED_RATE" envDefault:"50"`
	FeedBurst int     `env:"ORRERY_FEED_BURST" envDefault:"100"`

	CORSOrigins []string `env:"ORRERY_CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// DefaultAnchor is the body used when a primary reference cannot be resolved
	DefaultAnchor string `env:"ORRERY_DEFAULT_ANCHOR" envDefault:"SUN"`
}

// Default returns the configuration used when no variable is set
func Default() *Config {
	cfg := &Config{}
	// parsing an empty environment only applies the defaults
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads an optional .env file, then the environment
func Load(logger *log.Logger) (*Config, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := godotenv.Load(); err != nil {
		logger.Printf("[Config] No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	var problems []string
	if c.TargetFPS <= 0 {
		problems = append(problems, "target FPS must be positive")
	}
	if c.RemovalDelayFrames < 0 {
		problems = append(problems, "removal delay cannot be negative")
	}
	if strings.TrimSpace(c.PlanetsDir) == "" {
		problems = append(problems, "planets directory is required")
	}
	if strings.TrimSpace(c.AssetsDir) == "" {
		problems = append(problems, "assets directory is required")
	}
	if c.FeedRate <= 0 || c.FeedBurst <= 0 {
		problems = append(problems, "feed rate and burst must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
