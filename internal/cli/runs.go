package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/clo/internal/id"
	"github.com/rustyeddy/clo/journal"
	"github.com/rustyeddy/clo/report"
)

func (a *app) openSQLite() (*journal.SQLite, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

// checkRunID checks that arg is a run ID before the journal is opened.
func checkRunID(arg string) (string, error) {
	if _, err := id.Time(arg); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", arg, err)
	}
	return arg, nil
}

func (a *app) newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Query journaled runs",
		Long: `Query runs recorded in the SQLite journal.

Subcommands:
  list       - List recent runs
  show       - Show one run, its collateral and tranche totals
  cashflows  - Show the equity cashflows of one run

Examples:
  clo runs list --limit 20
  clo runs show 01HV6Z6J3M4Q2W0B1P9T8K7R5S --ledger
  clo runs cashflows 01HV6Z6J3M4Q2W0B1P9T8K7R5S`,
	}

	cmd.AddCommand(a.newRunsListCmd(), a.newRunsShowCmd(), a.newRunsCashflowsCmd())
	return cmd
}

func (a *app) newRunsListCmd() *cobra.Command {
	var (
		limit int
		sweep string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			var runs []journal.RunRecord
			if sweep != "" {
				runs, err = j.ListSweep(sweep)
			} else {
				runs, err = j.ListRuns(limit)
			}
			if err != nil {
				return fmt.Errorf("query runs: %w", err)
			}

			report.RunsTable(cmd.OutOrStdout(), a.style(), runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs, 0 for all")
	cmd.Flags().StringVar(&sweep, "sweep", "", "list the runs of one sweep")
	return cmd
}

func (a *app) newRunsShowCmd() *cobra.Command {
	var ledger bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := checkRunID(args[0])
			if err != nil {
				return err
			}
			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			run, err := j.GetRun(runID)
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}
			coll, err := j.ListCollateral(run.RunID)
			if err != nil {
				return fmt.Errorf("query collateral: %w", err)
			}
			rows, err := j.ListTranches(run.RunID, 0)
			if err != nil {
				return fmt.Errorf("query tranches: %w", err)
			}

			out := cmd.OutOrStdout()
			totals := report.Totals(rows)
			report.PrintRun(out, run, totals)
			if len(coll) > 0 {
				report.CollateralTable(out, a.style(), coll)
				report.TotalsTable(out, a.style(), totals)
			}
			if ledger && len(rows) > 0 {
				report.LedgerTable(out, a.style(), rows)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ledger, "ledger", false, "print the full tranche ledger")
	return cmd
}

func (a *app) newRunsCashflowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cashflows <run-id>",
		Short: "Show the equity cashflows of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := checkRunID(args[0])
			if err != nil {
				return err
			}
			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			if _, err := j.GetRun(runID); err != nil {
				return fmt.Errorf("get run: %w", err)
			}
			rows, err := j.ListEquityCashflows(runID)
			if err != nil {
				return fmt.Errorf("query cashflows: %w", err)
			}

			report.LedgerTable(cmd.OutOrStdout(), a.style(), rows)
			return nil
		},
	}
}
