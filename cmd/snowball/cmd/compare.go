package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/debt-engine/api"
	"github.com/warp/debt-engine/finance"
)

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		source portfolioFlags
		orders []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare account orderings for the same portfolio",
		Long: `Compare projects the portfolio once per sort order and ranks the results
by total interest. The unsorted order is always included as the baseline.

Ordering only matters when snowballing, so compare snowballs by default.

Examples:
  snowball compare -f portfolio.yaml --extra 200
  snowball compare --preset credit-card-stack --orders apr_desc,balance_asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("snowball") {
				if err := cmd.Flags().Set("snowball", "true"); err != nil {
					return err
				}
			}
			_, input, err := source.load(cmd)
			if err != nil {
				return err
			}

			parsed := make([]finance.SortOrder, 0, len(orders))
			for _, o := range orders {
				order, err := finance.ParseSortOrder(o)
				if err != nil {
					return err
				}
				parsed = append(parsed, order)
			}

			results, err := finance.Compare(finance.NewProjectionEngine(), input, parsed)
			if err != nil {
				return err
			}
			opts.logger.Debug().Int("orders", len(results)).Msg("comparison complete")

			switch format {
			case formatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.NewComparisonDTOs(results))
			case formatTable:
				return renderComparison(cmd.OutOrStdout(), results)
			default:
				return fmt.Errorf("unknown format %q (table or json)", format)
			}
		},
	}

	source.register(cmd)
	cmd.Flags().StringSliceVar(&orders, "orders", nil, "sort orders to compare (default: all)")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format (table, json)")
	return cmd
}
