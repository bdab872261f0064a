package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/debt-engine/api"
	"github.com/warp/debt-engine/finance"
	"github.com/warp/debt-engine/internal/id"
	"github.com/warp/debt-engine/store/sqlite"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	var (
		source    portfolioFlags
		totals    bool
		format    string
		saveDB    string
		name      string
		maxMonths int
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a portfolio month by month until it is paid off",
		Long: `Project runs the amortization schedule of every account in a portfolio.

Without --snowball each account pays its minimum until it is gone. With
--snowball the freed minimums and the extra monthly amount are poured into
the next account in sort order.

Examples:
  snowball project -f portfolio.yaml
  snowball project -f portfolio.yaml --snowball --extra 100 --order balance_asc
  snowball project --preset two-card-snowball --totals
  snowball project -f portfolio.yaml --format json
  snowball project -f portfolio.yaml --save snowball.db --name "March plan"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unknown format %q (table or json)", format)
			}

			pj, input, err := source.load(cmd)
			if err != nil {
				return err
			}

			engine := finance.NewProjectionEngine()
			engine.MaxMonths = maxMonths
			p, err := engine.Project(input)
			if err != nil {
				return err
			}
			opts.logger.Debug().
				Int("accounts", len(input.Accounts)).
				Int("months", p.NumberOfMonths()).
				Str("total_interest", p.TotalInterest().StringFixed(2)).
				Msg("projection complete")

			if saveDB != "" {
				if name == "" {
					name = pj.Name
				}
				if name == "" {
					name = fmt.Sprintf("Projection from %s", p.StartDate)
				}
				runID, err := saveRun(cmd, saveDB, name, input, p)
				if err != nil {
					return err
				}
				opts.logger.Info().Str("run_id", runID).Str("db", saveDB).Msg("run saved")
				if format == formatTable {
					defer fmt.Fprintf(cmd.OutOrStdout(), "\nSaved run %s to %s\n", runID, saveDB)
				}
			}

			if format == formatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.NewProjectionDTO(p, totals))
			}
			return renderSchedule(cmd.OutOrStdout(), p, totals)
		},
	}

	source.register(cmd)
	cmd.Flags().BoolVar(&totals, "totals", false, "append a ledger summing all accounts")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format (table, json)")
	cmd.Flags().StringVar(&saveDB, "save", "", "save the run to this SQLite database")
	cmd.Flags().StringVar(&name, "name", "", "name of the saved run (defaults to the portfolio name)")
	cmd.Flags().IntVar(&maxMonths, "max-months", finance.DefaultMaxMonths, "give up after this many months")
	return cmd
}

func saveRun(cmd *cobra.Command, dbPath, name string, input finance.ProjectionInput, p *finance.Projection) (string, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer store.Close()

	run := finance.NewRun(id.NewRunID(), name, input, p, time.Now())
	if err := store.Save(cmd.Context(), run, finance.Flatten(p)); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return run.ID, nil
}
