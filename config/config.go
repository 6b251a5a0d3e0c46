package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/clo/batch"
	"github.com/rustyeddy/clo/dataset"
	"github.com/rustyeddy/clo/scenario"
)

// Config represents a complete run configuration
type Config struct {
	Data        DataConfig         `json:"data" yaml:"data"`
	Run         RunConfig          `json:"run" yaml:"run"`
	Assumptions scenario.Overrides `json:"assumptions" yaml:"assumptions"`
	Journal     JournalConfig      `json:"journal" yaml:"journal"`
	Sweep       SweepConfig        `json:"sweep" yaml:"sweep"`
}

// DataConfig locates the deal, tranche and loan extracts
type DataConfig struct {
	Deals    string `json:"deals" yaml:"deals"`
	Tranches string `json:"tranches" yaml:"tranches"`
	Loans    string `json:"loans" yaml:"loans"`
}

// Paths converts the config into loader paths.
func (d DataConfig) Paths() dataset.Paths {
	return dataset.Paths{Deals: d.Deals, Tranches: d.Tranches, Loans: d.Loans}
}

// RunConfig selects what a single simulation reports
type RunConfig struct {
	Deal   string `json:"deal,omitempty" yaml:"deal,omitempty"`
	Ledger bool   `json:"ledger,omitempty" yaml:"ledger,omitempty"` // print the full tranche ledger
	OrgDir string `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// SweepConfig contains the sensitivity grid
type SweepConfig struct {
	Grid    batch.Grid `json:"grid" yaml:"grid"`
	Workers int        `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Data.Deals == "" || c.Data.Tranches == "" || c.Data.Loans == "" {
		return fmt.Errorf("data.deals, data.tranches and data.loans are required")
	}
	if err := c.Assumptions.Check(); err != nil {
		return fmt.Errorf("assumptions: %w", err)
	}

	switch c.Journal.Type {
	case "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	if c.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers must not be negative")
	}
	for _, d := range c.Sweep.Grid.CallDates {
		if err := (scenario.Overrides{CallDate: d}).Check(); err != nil {
			return fmt.Errorf("sweep.grid: %w", err)
		}
	}
	for _, axis := range []struct {
		name   string
		values []float64
	}{
		{"cdr", c.Sweep.Grid.CDR},
		{"cpr", c.Sweep.Grid.CPR},
		{"was", c.Sweep.Grid.WAS},
	} {
		for _, v := range axis.values {
			if v < 0 || v >= 1 {
				return fmt.Errorf("sweep.grid.%s value %v must be in [0, 1)", axis.name, v)
			}
		}
	}
	for _, p := range c.Sweep.Grid.Price {
		if p <= 0 {
			return fmt.Errorf("sweep.grid.price value %v must be positive", p)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Deals:    "./data/deals.csv",
			Tranches: "./data/tranches.csv",
			Loans:    "./data/loans.csv",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./clo.db",
		},
		Sweep: SweepConfig{
			Grid: batch.Grid{
				CDR: []float64{0.01, 0.02, 0.04},
				CPR: []float64{0.10, 0.20},
			},
		},
	}
}
