package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/debt-engine/factory"
	"github.com/warp/debt-engine/finance"
)

// portfolioFlags select a portfolio and override parts of it.
type portfolioFlags struct {
	file     string
	preset   string
	snowball bool
	extra    string
	order    string
	start    string
}

func (pf *portfolioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pf.file, "file", "f", "", "portfolio file (YAML or JSON)")
	cmd.Flags().StringVarP(&pf.preset, "preset", "p", "", "use a built-in portfolio instead of a file")
	cmd.Flags().BoolVar(&pf.snowball, "snowball", false, "override: snowball freed payments")
	cmd.Flags().StringVar(&pf.extra, "extra", "", "override: extra monthly amount")
	cmd.Flags().StringVar(&pf.order, "order", "", "override: sort order (unsorted, apr_asc, apr_desc, balance_asc, balance_desc)")
	cmd.Flags().StringVar(&pf.start, "start", "", "override: first month (YYYY-MM)")
}

// load reads the portfolio and applies the flags that were set.
func (pf *portfolioFlags) load(cmd *cobra.Command) (factory.PortfolioJSON, finance.ProjectionInput, error) {
	f := factory.NewPortfolioFactory()

	var pj factory.PortfolioJSON
	switch {
	case pf.file != "" && pf.preset != "":
		return pj, finance.ProjectionInput{}, errors.New("use either --file or --preset, not both")
	case pf.preset != "":
		preset, ok := factory.FindPreset(pf.preset)
		if !ok {
			return pj, finance.ProjectionInput{}, fmt.Errorf("unknown preset %q (see: snowball portfolio presets)", pf.preset)
		}
		pj = preset.Portfolio
	case pf.file != "":
		data, err := os.ReadFile(pf.file)
		if err != nil {
			return pj, finance.ProjectionInput{}, fmt.Errorf("read portfolio: %w", err)
		}
		if pj, err = f.Decode(data); err != nil {
			return pj, finance.ProjectionInput{}, err
		}
	default:
		return pj, finance.ProjectionInput{}, errors.New("a portfolio is required: --file or --preset")
	}

	if cmd.Flags().Changed("snowball") {
		pj.Snowball = pf.snowball
	}
	if pf.extra != "" {
		extra, err := decimal.NewFromString(pf.extra)
		if err != nil {
			return pj, finance.ProjectionInput{}, fmt.Errorf("--extra: %w", err)
		}
		pj.ExtraMonthlyAmount = factory.NewAmount(extra)
	}
	if pf.order != "" {
		pj.SortOrder = pf.order
	}
	if pf.start != "" {
		pj.StartDate = pf.start
	}

	input, err := f.FromJSON(pj)
	return pj, input, err
}
