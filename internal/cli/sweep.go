package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rustyeddy/clo/batch"
	"github.com/rustyeddy/clo/internal/id"
	"github.com/rustyeddy/clo/journal"
	"github.com/rustyeddy/clo/report"
)

func (a *app) newSweepCmd() *cobra.Command {
	var (
		deals       []string
		workers     int
		journalType string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a sensitivity grid in parallel",
		Long: `Simulate every combination of the sweep grid in the config file
(deals x cdr x cpr x was x call dates x price) with a bounded worker pool.

With no deals in the grid or on the command line every deal in the
extracts is swept. A failing combination is reported and journaled with
its error; the rest of the sweep continues. Interrupting abandons
combinations not yet started.

Example:
  clo sweep --config sweep.yaml --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if len(deals) > 0 {
				cfg.Sweep.Grid.Deals = deals
			}
			if cmd.Flags().Changed("workers") {
				cfg.Sweep.Workers = workers
			}
			if journalType != "" {
				cfg.Journal.Type = journalType
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			base, err := overrides(cmd, cfg)
			if err != nil {
				return err
			}
			tables, err := a.tables(cfg)
			if err != nil {
				return err
			}
			if len(cfg.Sweep.Grid.Deals) == 0 {
				cfg.Sweep.Grid.Deals = tables.Tickers()
			}

			combos := cfg.Sweep.Grid.Combinations(base)
			sweepID := id.New()
			log.WithFields(logrus.Fields{
				"sweep":        sweepID,
				"combinations": len(combos),
				"workers":      cfg.Sweep.Workers,
			}).Info("sweep started")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			start := time.Now()
			outcomes, runErr := batch.Runner{Tables: tables, Workers: cfg.Sweep.Workers}.Run(ctx, combos)
			log.WithField("elapsed", time.Since(start)).Info("sweep finished")

			j, err := openJournal(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			if j != nil {
				defer func() { err = multierr.Append(err, j.Close()) }()
				if err := recordSweep(j, sweepID, outcomes); err != nil {
					return fmt.Errorf("journal sweep: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sweep ID:      %s\n\n", sweepID)
			report.SweepTable(out, a.style(), outcomes)
			report.PrintSummary(out, batch.Summarize(outcomes))

			if runErr != nil && runErr != context.Canceled {
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&deals, "deal", nil, "deal tickers (overrides sweep.grid.deals, default every deal)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers, 0 uses every CPU")
	cmd.Flags().StringVar(&journalType, "journal", "", "journal type: sqlite|csv|none (overrides config)")
	addOverrideFlags(cmd)

	return cmd
}

// recordSweep journals every outcome under one sweep ID, failures
// included.
func recordSweep(j journal.Journal, sweepID string, outcomes []batch.Outcome) error {
	now := time.Now().UTC()
	for _, o := range outcomes {
		run := journal.Run{ID: id.New(), SweepID: sweepID, Created: now, Deal: o.Deal}
		if o.OK() {
			if err := journal.RecordResult(j, run, o.Result); err != nil {
				return err
			}
			continue
		}
		if err := j.RecordRun(journal.NewRunRecord(run, o.Assumptions, nil, o.Err)); err != nil {
			return err
		}
	}
	return nil
}
