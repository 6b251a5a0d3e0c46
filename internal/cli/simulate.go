package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rustyeddy/clo/config"
	"github.com/rustyeddy/clo/engine"
	"github.com/rustyeddy/clo/internal/id"
	"github.com/rustyeddy/clo/journal"
	"github.com/rustyeddy/clo/report"
	"github.com/rustyeddy/clo/scenario"
)

func flagName(option string) string {
	return strings.ReplaceAll(option, "_", "-")
}

// addOverrideFlags registers one string flag per assumption option.
func addOverrideFlags(cmd *cobra.Command) {
	for _, name := range scenario.Options() {
		cmd.Flags().String(flagName(name), "", "override "+name)
	}
}

// overrides layers the changed assumption flags over the config file.
func overrides(cmd *cobra.Command, cfg *config.Config) (scenario.Overrides, error) {
	o := cfg.Assumptions
	for _, name := range scenario.Options() {
		f := cmd.Flags().Lookup(flagName(name))
		if f == nil || !f.Changed {
			continue
		}
		if err := o.Set(name, f.Value.String()); err != nil {
			return o, err
		}
	}
	if o.AsOf == "" {
		o.AsOf = time.Now().UTC().Format(scenario.DateLayout)
	}
	return o, nil
}

func (a *app) style() *table.Style {
	if a.v.GetBool("color") {
		return report.ColorStyle()
	}
	return report.DefaultStyle()
}

// openJournal returns nil when journaling is off.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.Dir)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

func (a *app) newSimulateCmd() *cobra.Command {
	var (
		dealFlag    string
		journalType string
		outDir      string
		ledger      bool
		orgDir      string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project one deal under one set of assumptions",
		Long: `Project the collateral and tranche cashflows of a single deal and solve
the equity IRR.

Assumptions come from the config file and may be overridden per flag.
Unset assumptions default to the deal's own data.

Examples:
  clo simulate --deal TEST1 --as-of 2024-01-15 --cdr 0 --cpr 0 --price 0.95
  clo simulate --config run.yaml --call-date 2026-01-15 --ledger`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if dealFlag != "" {
				cfg.Run.Deal = dealFlag
			}
			if cmd.Flags().Changed("ledger") {
				cfg.Run.Ledger = ledger
			}
			if orgDir != "" {
				cfg.Run.OrgDir = orgDir
			}
			if journalType != "" {
				cfg.Journal.Type = journalType
			}
			if outDir != "" {
				cfg.Journal.Dir = outDir
			}
			if cfg.Run.Deal == "" {
				return fmt.Errorf("no deal: pass --deal or set run.deal")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			o, err := overrides(cmd, cfg)
			if err != nil {
				return err
			}
			tables, err := a.tables(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := engine.Simulate(cfg.Run.Deal, tables, o)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"deal":    res.Deal.Ticker,
				"periods": len(res.Collateral) - 1,
				"elapsed": time.Since(start),
			}).Debug("simulation finished")

			run := journal.Run{ID: id.New(), Created: time.Now().UTC(), Deal: res.Deal.Ticker}

			j, err := openJournal(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			if j != nil {
				defer func() { err = multierr.Append(err, j.Close()) }()
				if err := journal.RecordResult(j, run, res); err != nil {
					return fmt.Errorf("journal run: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			header := journal.NewRunRecord(run, res.Assumptions, res, nil)
			trancheRows := journal.TrancheRecords(run.ID, res)
			totals := report.Totals(trancheRows)

			report.PrintRun(out, header, totals)
			report.CollateralTable(out, a.style(), journal.CollateralRecords(run.ID, res))
			report.TotalsTable(out, a.style(), totals)
			if cfg.Run.Ledger {
				report.LedgerTable(out, a.style(), trancheRows)
			}

			if cfg.Run.OrgDir != "" {
				path := filepath.Join(cfg.Run.OrgDir, run.ID+".org")
				if err := (report.RunOrg{Run: header, Tranches: totals}).WriteFile(path); err != nil {
					return fmt.Errorf("write org summary: %w", err)
				}
				fmt.Fprintf(out, "Org Report:    %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dealFlag, "deal", "", "deal ticker")
	cmd.Flags().StringVar(&journalType, "journal", "", "journal type: sqlite|csv|none (overrides config)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for the csv journal")
	cmd.Flags().BoolVar(&ledger, "ledger", false, "print the full tranche ledger")
	cmd.Flags().StringVar(&orgDir, "org", "", "write an org-mode summary into this directory")
	addOverrideFlags(cmd)

	return cmd
}
