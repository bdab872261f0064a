package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/debt-engine/store/sqlite"
)

func newRunsCmd(opts *rootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect projections saved with --save",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "snowball.db", "SQLite database holding saved runs")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			opts.logger.Debug().Int("runs", len(runs)).Str("db", dbPath).Msg("listed runs")
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved runs.")
				return nil
			}
			return renderRuns(cmd.OutOrStdout(), runs)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")

	var entries bool
	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the summary of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run %s: %s (saved %s)\n\n", run.ID, run.Name, run.CreatedAt.Local().Format("2006-01-02 15:04"))
			if err := renderSummary(w, run.Summary); err != nil {
				return err
			}
			if !entries {
				return nil
			}

			rows, err := store.Entries(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(w)
			return renderRunEntries(w, rows)
		},
	}
	show.Flags().BoolVar(&entries, "entries", false, "also print every saved ledger entry")

	cmd.AddCommand(list, show)
	return cmd
}
