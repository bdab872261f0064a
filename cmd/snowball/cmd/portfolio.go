package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/debt-engine/factory"
)

func newPortfolioCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Create and check portfolio files",
	}
	cmd.AddCommand(
		newPortfolioInitCmd(opts),
		newPortfolioValidateCmd(opts),
		newPortfolioPresetsCmd(),
	)
	return cmd
}

func newPortfolioInitCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		preset string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter portfolio file",
		Long: `Init writes one of the built-in portfolios to a file you can edit.
Files ending in .json are written as JSON, anything else as YAML.

Examples:
  snowball portfolio init -o portfolio.yaml
  snowball portfolio init -o cards.json --preset credit-card-stack`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := factory.FindPreset(preset)
			if !ok {
				return fmt.Errorf("unknown preset %q", preset)
			}
			if !force {
				if _, err := os.Stat(output); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", output)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := factory.SaveFile(output, p.Portfolio); err != nil {
				return err
			}
			opts.logger.Debug().Str("preset", p.ID).Str("file", output).Msg("portfolio written")
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", output, p.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "portfolio.yaml", "file to write")
	cmd.Flags().StringVarP(&preset, "preset", "p", "two-card-snowball", "built-in portfolio to start from")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newPortfolioValidateCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a portfolio file without projecting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			pj, input, err := factory.NewPortfolioFactory().LoadFile(file)
			if err != nil {
				return err
			}
			opts.logger.Debug().Str("file", file).Msg("portfolio valid")

			name := pj.Name
			if name == "" {
				name = file
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d accounts, opening balance %s, minimums %s\n",
				name, len(input.Accounts), money(openingBalance(input)), money(minimums(input)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "portfolio file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPortfolioPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in portfolios",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tName\tDescription")
			for _, p := range factory.Presets() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Description)
			}
			return tw.Flush()
		},
	}
}
