package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/clo/scenario"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.Equal(t, "./data/deals.csv", cfg.Data.Paths().Deals)
	assert.Len(t, cfg.Sweep.Grid.CDR, 3)
	assert.Zero(t, cfg.Sweep.Grid.Size(), "no deals selected")
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	bad := 1.2

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing loans path",
			mutate:  func(c *Config) { c.Data.Loans = "" },
			wantErr: true,
			errMsg:  "data.deals, data.tranches and data.loans are required",
		},
		{
			name:    "bad assumption",
			mutate:  func(c *Config) { c.Assumptions.CDR = &bad },
			wantErr: true,
			errMsg:  "assumptions: invalid cdr",
		},
		{
			name:    "unknown journal",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Journal.DBPath = "" },
			wantErr: true,
			errMsg:  "journal db_path required",
		},
		{
			name:    "csv without dir",
			mutate:  func(c *Config) { c.Journal = JournalConfig{Type: "csv"} },
			wantErr: true,
			errMsg:  "journal dir required",
		},
		{
			name:   "no journal",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "none"} },
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Sweep.Workers = -1 },
			wantErr: true,
			errMsg:  "sweep.workers",
		},
		{
			name:    "grid rate out of range",
			mutate:  func(c *Config) { c.Sweep.Grid.CPR = []float64{0.1, 1} },
			wantErr: true,
			errMsg:  "sweep.grid.cpr value 1",
		},
		{
			name:    "grid price",
			mutate:  func(c *Config) { c.Sweep.Grid.Price = []float64{0} },
			wantErr: true,
			errMsg:  "sweep.grid.price",
		},
		{
			name:    "grid call date",
			mutate:  func(c *Config) { c.Sweep.Grid.CallDates = []string{"none", "soon"} },
			wantErr: true,
			errMsg:  "invalid call_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorIsWrapped(t *testing.T) {
	cfg := Default()
	cfg.Assumptions.Frequency = "weekly"

	var ve *scenario.ValidationError
	require.True(t, errors.As(cfg.Validate(), &ve))
	assert.Equal(t, "frequency", ve.Field)
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cdr := 0.03
			cfg.Run.Deal = "ACME-2021-1"
			cfg.Assumptions.CDR = &cdr
			cfg.Assumptions.CallDate = "none"
			cfg.Sweep.Grid.Deals = []string{"TEST1", "ACME-2021-1"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Data, loaded.Data)
			assert.Equal(t, cfg.Run, loaded.Run)
			assert.Equal(t, cfg.Journal, loaded.Journal)
			require.NotNil(t, loaded.Assumptions.CDR)
			assert.Equal(t, 0.03, *loaded.Assumptions.CDR)
			assert.Nil(t, loaded.Assumptions.CPR)
			assert.Equal(t, "none", loaded.Assumptions.CallDate)
			assert.Equal(t, cfg.Sweep.Grid.Deals, loaded.Sweep.Grid.Deals)
			assert.Equal(t, cfg.Sweep.Grid.CDR, loaded.Sweep.Grid.CDR)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := "data:\n  deals: d.csv\n  tranches: t.csv\n  loans: l.csv\nassumptions:\n  cpr: 0.15\n  as_of: \"2024-01-15\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "d.csv", cfg.Data.Deals)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	require.NotNil(t, cfg.Assumptions.CPR)
	assert.Equal(t, 0.15, *cfg.Assumptions.CPR)
	assert.Equal(t, "2024-01-15", cfg.Assumptions.AsOf)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}
