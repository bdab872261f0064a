package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/finance"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func percent(apr decimal.Decimal) string {
	return apr.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// renderSchedule prints one month table per ledger.
func renderSchedule(w io.Writer, p *finance.Projection, totals bool) error {
	ledgers := p.Ledgers
	if totals {
		ledgers = append(append([]*finance.AccountLedger{}, ledgers...), p.Totals())
	}

	for _, l := range ledgers {
		a := l.Account
		if a.Name == finance.TotalsName {
			fmt.Fprintf(w, "== %s (opening %s, budget %s) ==\n", a.Name, money(a.Balance), money(p.TotalMonthlyBudget))
		} else {
			fmt.Fprintf(w, "== %s (%s @ %s, minimum %s) ==\n", a.Name, money(a.Balance), percent(a.APR), money(a.MinimumPayment))
		}

		tw := newTable(w)
		fmt.Fprintln(tw, "#\tMonth\tPayment\tInterest\tPrincipal\tBalance\t")
		for _, e := range l.Entries() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
				e.Index+1, e.Month, money(e.Payment), money(e.Interest), money(e.Principal), money(e.Balance))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return renderSummary(w, finance.Summarize(p))
}

// renderSummary prints the headline numbers and per-account payoffs.
func renderSummary(w io.Writer, s finance.Summary) error {
	fmt.Fprintf(w, "Strategy:        %s (%s)\n", s.Strategy, s.SortOrder)
	fmt.Fprintf(w, "Monthly budget:  %s (minimums %s)\n", money(s.TotalMonthlyBudget), money(s.MinimumMonthlyBudget))
	if s.NumberOfMonths == 0 {
		fmt.Fprintln(w, "Nothing owed.")
		return nil
	}
	fmt.Fprintf(w, "Debt free:       %s (%d months from %s)\n", s.PayoffDate, s.NumberOfMonths, s.StartDate)
	fmt.Fprintf(w, "Total interest:  %s\n", money(s.TotalInterest))
	fmt.Fprintf(w, "Total paid:      %s\n\n", money(s.TotalPaid))

	tw := newTable(w)
	fmt.Fprintln(tw, "Account\tPaid off\tMonths\tInterest\tPaid\t")
	for _, a := range s.Accounts {
		payoff := "-"
		if !a.PayoffMonth.IsZero() {
			payoff = a.PayoffMonth.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n", a.Name, payoff, a.Months, money(a.TotalInterest), money(a.TotalPaid))
	}
	return tw.Flush()
}

// renderComparison prints one row per sort order, best first.
func renderComparison(w io.Writer, results []finance.Comparison) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Order\tMonths\tDebt free\tInterest\tSaved vs unsorted\t")
	for _, c := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t\n",
			c.SortOrder, c.NumberOfMonths, c.PayoffDate, money(c.TotalInterest), money(c.InterestSaved))
	}
	return tw.Flush()
}

// renderRuns lists saved runs.
func renderRuns(w io.Writer, runs []finance.Run) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tName\tStrategy\tMonths\tInterest\tCreated\t")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t\n",
			r.ID, r.Name, r.Summary.Strategy, r.Summary.NumberOfMonths,
			money(r.Summary.TotalInterest), r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func openingBalance(input finance.ProjectionInput) decimal.Decimal {
	total := decimal.Zero
	for _, a := range input.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

func minimums(input finance.ProjectionInput) decimal.Decimal {
	total := decimal.Zero
	for _, a := range input.Accounts {
		total = total.Add(a.MinimumPayment)
	}
	return total
}

// renderRunEntries prints flattened rows as saved.
func renderRunEntries(w io.Writer, rows []finance.RunEntry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Month\tAccount\tPayment\tInterest\tPrincipal\tBalance\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Month, r.Account, money(r.Payment), money(r.Interest), money(r.Principal), money(r.Balance))
	}
	return tw.Flush()
}
