package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rustyeddy/clo/config"
	"github.com/rustyeddy/clo/dataset"
	"github.com/rustyeddy/clo/deal"
)

var log = logrus.WithField("component", "cli")

// app carries the flag and environment bindings shared by every command.
type app struct {
	v *viper.Viper
}

func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "clo",
		Short: "CLO cashflow projection: collateral runoff, waterfall and equity yield",
		Long: `clo projects the collateral pool and tranche waterfall of a CLO deal under
default, prepayment and recovery assumptions and solves the equity IRR.

Deal, tranche and loan data are read from CSV extracts. Runs are journaled
to SQLite or CSV so they can be listed and inspected later.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to config file (YAML or JSON)")
	pf.String("deals", "", "deals.csv extract (overrides config)")
	pf.String("tranches", "", "tranches.csv extract (overrides config)")
	pf.String("loans", "", "loans.csv extract (overrides config)")
	pf.String("db", "", "SQLite journal database (overrides config)")
	pf.String("log-level", "info", "Log level: debug|info|warn|error")
	pf.Bool("debug", false, "Debug logging")
	pf.Bool("log-json", false, "Log in JSON")
	pf.Bool("color", false, "Colored tables")

	a.v.SetEnvPrefix("CLO")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(pf); err != nil {
		log.WithError(err).Error("failed to bind persistent flags")
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setupLogging(cmd.ErrOrStderr())
	}

	cmd.AddCommand(
		a.newSimulateCmd(),
		a.newSweepCmd(),
		a.newRunsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

func (a *app) setupLogging(w io.Writer) error {
	level, err := logrus.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if a.v.GetBool("debug") {
		level = logrus.DebugLevel
	}

	logger := logrus.StandardLogger()
	logger.SetOutput(w)
	logger.SetLevel(level)
	if a.v.GetBool("log-json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// config loads the config file when one is given, otherwise the defaults,
// then applies the path flags.
func (a *app) config() (*config.Config, error) {
	cfg := config.Default()
	if path := a.v.GetString("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.WithField("path", path).Debug("config loaded")
	}

	if s := a.v.GetString("deals"); s != "" {
		cfg.Data.Deals = s
	}
	if s := a.v.GetString("tranches"); s != "" {
		cfg.Data.Tranches = s
	}
	if s := a.v.GetString("loans"); s != "" {
		cfg.Data.Loans = s
	}
	if s := a.v.GetString("db"); s != "" {
		cfg.Journal.DBPath = s
	}
	return cfg, nil
}

func (a *app) tables(cfg *config.Config) (deal.Tables, error) {
	tables, err := dataset.Load(cfg.Data.Paths())
	if err != nil {
		return deal.Tables{}, fmt.Errorf("load data: %w", err)
	}
	log.WithField("deals", len(tables.Deals)).Debug("data loaded")
	return tables, nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
