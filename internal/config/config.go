// Package config loads the process configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Adps75/irrigation-editor/internal/logging"
	"github.com/Adps75/irrigation-editor/pkg/cost"
	"github.com/Adps75/irrigation-editor/pkg/geodesy"
	"github.com/Adps75/irrigation-editor/pkg/plan"
	"github.com/Adps75/irrigation-editor/pkg/routing"
)

// DefaultPort matches the original map client's backend address.
const DefaultPort = 5000

// Config is the complete process configuration.
type Config struct {
	Server     Server         `yaml:"server"`
	Projection string         `yaml:"projection"`
	Network    Network        `yaml:"network"`
	Equipment  plan.Equipment `yaml:"equipment"`
	Costs      cost.UnitCosts `yaml:"costs"`
	Logging    logging.Config `yaml:"logging"`
}

// Server configures the HTTP listener.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Network configures topology construction.
type Network struct {
	AllowZoneLinks bool `yaml:"allow_zone_links"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a YAML configuration file. Unknown keys are rejected; missing
// keys take their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 4 << 20
	}
	if c.Projection == "" {
		c.Projection = string(geodesy.WebMercator)
	}
	c.Equipment = c.Equipment.WithDefaults()
	c.Costs = c.Costs.WithDefaults()
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	if _, err := geodesy.ParseKind(c.Projection); err != nil {
		return fmt.Errorf("projection: %w", err)
	}
	if err := c.Equipment.Validate(); err != nil {
		return err
	}
	if err := c.Costs.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// Planner returns the planner settings of c.
func (c *Config) Planner() plan.Config {
	return plan.Config{
		Projection: geodesy.Kind(c.Projection),
		Network:    routing.Options{AllowZoneLinks: c.Network.AllowZoneLinks},
		Equipment:  c.Equipment,
		Costs:      c.Costs,
	}
}
