// Package cmd implements the snowball command line.
package cmd

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootOptions are flags shared by every command.
type rootOptions struct {
	logLevel string
	logger   zerolog.Logger
}

// NewRootCmd builds the full command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "snowball",
		Short: "Month-by-month debt payoff projections",
		Long: `Snowball projects how a portfolio of credit accounts pays down month by month.

It can:
  - Project a portfolio paying minimums only, or snowballing freed payments
  - Compare account orderings (smallest balance first, highest APR first, ...)
  - Save projections to a SQLite database and list them later
  - Generate starter portfolio files

Portfolios are YAML or JSON files; run "snowball portfolio init" for an example.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newProjectCmd(opts),
		newCompareCmd(opts),
		newPortfolioCmd(opts),
		newRunsCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}
