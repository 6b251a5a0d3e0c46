package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/clo/config"
	"github.com/rustyeddy/clo/deal"
	"github.com/rustyeddy/clo/journal"
	"github.com/rustyeddy/clo/scenario"
)

var dataFlags = []string{
	"--deals", filepath.Join("..", "..", "testdata", "deals.csv"),
	"--tranches", filepath.Join("..", "..", "testdata", "tranches.csv"),
	"--loans", filepath.Join("..", "..", "testdata", "loans.csv"),
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func withData(args ...string) []string {
	return append(append([]string{}, args...), dataFlags...)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "clo dev\n", out)
}

func TestSimulateTEST1(t *testing.T) {
	out, err := execute(t, withData(
		"simulate", "--deal", "TEST1", "--journal", "none",
		"--as-of", "2024-01-15", "--cdr", "0", "--cpr", "0", "--price", "0.95", "--ledger",
		"--day-count", "ACT/365F", "--cdr-lockout-months", "6",
	)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Deal:          TEST1")
	assert.Contains(t, out, "Termination:   legal maturity")
	assert.Contains(t, out, "Price:         95.00%")
	assert.Contains(t, out, "Day Count:     ACT/365F")
	assert.Contains(t, out, "Collateral:    100.00")
	assert.Contains(t, out, "Collateral")
	assert.Contains(t, out, "Tranche ledger")
	assert.NotContains(t, out, "Equity IRR:    undefined")
}

func TestSimulateErrors(t *testing.T) {
	_, err := execute(t, withData("simulate", "--deal", "NOPE", "--journal", "none")...)
	var nf *deal.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = execute(t, withData("simulate", "--deal", "TEST1", "--journal", "none", "--cdr", "lots")...)
	var ve *scenario.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "cdr", ve.Field)

	_, err = execute(t, withData("simulate", "--journal", "none")...)
	assert.ErrorContains(t, err, "no deal")

	_, err = execute(t, withData("simulate", "--deal", "TEST1", "--journal", "csv")...)
	assert.ErrorContains(t, err, "journal dir required")
}

func TestSimulateJournalAndQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "clo.db")
	t.Setenv("CLO_DB", db)

	_, err := execute(t, withData(
		"simulate", "--deal", "acme-2021-1", "--as-of", "2024-01-15", "--cdr", "0.03",
	)...)
	require.NoError(t, err)

	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	runs, err := j.ListRuns(0)
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.Len(t, runs, 1)
	runID := runs[0].RunID
	assert.Equal(t, "ACME-2021-1", runs[0].Deal)
	assert.Equal(t, "call", runs[0].Termination)

	out, err := execute(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, runID)

	out, err = execute(t, "runs", "show", runID, "--ledger")
	require.NoError(t, err)
	assert.Contains(t, out, "Run ID:        "+runID)
	assert.Contains(t, out, "CDR:           3.00%")
	assert.Contains(t, out, "Sub")

	out, err = execute(t, "runs", "cashflows", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "Sub")
	assert.NotContains(t, out, "248000000.00", "senior rows excluded")

	_, err = execute(t, "runs", "show", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorContains(t, err, "not found")

	_, err = execute(t, "runs", "cashflows", "missing")
	assert.ErrorContains(t, err, "invalid run id")
}

func TestSimulateCSVJournalAndOrg(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "csv")

	out, err := execute(t, withData(
		"simulate", "--deal", "TEST1", "--as-of", "2024-01-15",
		"--journal", "csv", "--out", outDir, "--org", dir,
	)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Org Report:")

	for _, name := range []string{"runs.csv", "collateral.csv", "tranches.csv"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	orgs, err := filepath.Glob(filepath.Join(dir, "*.org"))
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sweep.yaml")

	cfg := config.Default()
	cfg.Data.Deals = filepath.Join("..", "..", "testdata", "deals.csv")
	cfg.Data.Tranches = filepath.Join("..", "..", "testdata", "tranches.csv")
	cfg.Data.Loans = filepath.Join("..", "..", "testdata", "loans.csv")
	cfg.Journal.DBPath = filepath.Join(dir, "sweep.db")
	cfg.Assumptions.AsOf = "2024-01-15"
	cfg.Sweep.Grid.Deals = []string{"TEST1", "ACME-2021-1", "MISSING"}
	cfg.Sweep.Grid.CDR = []float64{0, 0.03}
	cfg.Sweep.Grid.CPR = []float64{0.2}
	cfg.Sweep.Workers = 2
	require.NoError(t, cfg.SaveToFile(cfgPath))

	out, err := execute(t, "sweep", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Sweep ID:")
	assert.Contains(t, out, "Runs:          6")
	assert.Contains(t, out, "Failed:        2")

	line := strings.SplitN(out, "\n", 2)[0]
	sweepID := strings.TrimSpace(strings.TrimPrefix(line, "Sweep ID:"))

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.ListSweep(sweepID)
	require.NoError(t, err)
	require.Len(t, runs, 6)

	var failed int
	for _, r := range runs {
		if r.Error != "" {
			failed++
			assert.Equal(t, "MISSING", r.Deal)
		}
	}
	assert.Equal(t, 2, failed)

	out, err = execute(t, "runs", "list", "--sweep", sweepID, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "MISSING")
}

func TestSweepDefaultsToEveryDeal(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sweep.yaml")

	cfg := config.Default()
	cfg.Data.Deals = filepath.Join("..", "..", "testdata", "deals.csv")
	cfg.Data.Tranches = filepath.Join("..", "..", "testdata", "tranches.csv")
	cfg.Data.Loans = filepath.Join("..", "..", "testdata", "loans.csv")
	cfg.Journal.Type = "none"
	cfg.Assumptions.AsOf = "2024-01-15"
	cfg.Sweep.Grid.CDR = []float64{0.02}
	cfg.Sweep.Grid.CPR = []float64{0.2}
	require.NoError(t, cfg.SaveToFile(cfgPath))

	out, err := execute(t, "sweep", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Runs:          2")
	assert.Contains(t, out, "Failed:        0")
	assert.Contains(t, out, "TEST1")
	assert.Contains(t, out, "ACME-2021-1")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clo.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Journal: sqlite")

	_, err = execute(t, "config", "validate")
	assert.Error(t, err)
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "version", "--log-level", "loud")
	assert.ErrorContains(t, err, "log level")
}
