package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/clo/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage run configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  clo config init -o run.yaml
  clo config validate -f run.yaml`,
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nEdit the file and run with:")
			fmt.Fprintf(out, "  clo simulate --config %s --deal <ticker>\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "clo.yaml", "output config file path")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Data:    %s, %s, %s\n", cfg.Data.Deals, cfg.Data.Tranches, cfg.Data.Loans)
			fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
			if n := cfg.Sweep.Grid.Size(); n > 0 {
				fmt.Fprintf(out, "  Sweep:   %d combinations\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
