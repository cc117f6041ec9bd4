package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/farmops/inputplan/pkg/domain/entities"
)

// Config is the YAML configuration shared by the CLI and the HTTP server
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Readiness struct {
		CommittedStatuses []string `yaml:"committed_statuses"`
	} `yaml:"readiness"`
	Freight struct {
		UnitWeights map[string]float64 `yaml:"unit_weights"`
	} `yaml:"freight"`
	Import struct {
		Encoding string `yaml:"encoding"`
	} `yaml:"import"`
	Log struct {
		Level   string `yaml:"level"`
		Format  string `yaml:"format"`
		Tracing bool   `yaml:"tracing"`
	} `yaml:"log"`
}

var supportedEncodings = map[string]bool{
	"":             true,
	"utf-8":        true,
	"windows-1252": true,
	"shift-jis":    true,
}

// Default returns a config with every default applied
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "inputplan.db"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if len(c.Readiness.CommittedStatuses) == 0 {
		for _, s := range entities.DefaultCommittedStatuses {
			c.Readiness.CommittedStatuses = append(c.Readiness.CommittedStatuses, string(s))
		}
	}
	if c.Import.Encoding == "" {
		c.Import.Encoding = "utf-8"
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	for _, s := range c.Readiness.CommittedStatuses {
		if !entities.ParseOrderStatus(s).Valid() {
			return fmt.Errorf("readiness.committed_statuses: unknown status '%s'", s)
		}
	}
	for unit, mult := range c.Freight.UnitWeights {
		if strings.TrimSpace(unit) == "" {
			return errors.New("freight.unit_weights: unit cannot be empty")
		}
		if mult < 0 {
			return fmt.Errorf("freight.unit_weights[%s] cannot be negative, got %.4f", unit, mult)
		}
	}
	if !supportedEncodings[strings.ToLower(c.Import.Encoding)] {
		return fmt.Errorf("import.encoding must be 'utf-8', 'windows-1252' or 'shift-jis', got '%s'", c.Import.Encoding)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json', got '%s'", c.Log.Format)
	}
	return nil
}

// CommittedStatuses returns the configured statuses as order statuses
func (c *Config) CommittedStatuses() []entities.OrderStatus {
	statuses := make([]entities.OrderStatus, 0, len(c.Readiness.CommittedStatuses))
	for _, s := range c.Readiness.CommittedStatuses {
		statuses = append(statuses, entities.ParseOrderStatus(s))
	}
	return statuses
}

// WeightTable returns the default weight table extended with configured units
func (c *Config) WeightTable() entities.WeightTable {
	return entities.NewWeightTable(c.Freight.UnitWeights)
}

// Load reads path (if non-empty), applies env overrides and defaults, and validates
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("INPUTPLAN_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("INPUTPLAN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INPUTPLAN_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}
