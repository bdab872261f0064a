package finance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TotalsName is the account name of the synthetic totals ledger.
const TotalsName = "Totals"

// Totals builds a synthetic ledger summing payment, interest and principal
// across all accounts for each simulated month. Balance is the portfolio
// balance after that month. Reporting only; never part of simulation state.
func (p *Projection) Totals() *AccountLedger {
	totals := newAccountLedger(Account{
		Name:           TotalsName,
		Balance:        p.openingBalance(),
		MinimumPayment: p.MinimumMonthlyBudget,
	})
	for index, month := range p.Months {
		entry := MonthlyEntry{
			Index:     index,
			Month:     month,
			Payment:   decimal.Zero,
			Interest:  decimal.Zero,
			Principal: decimal.Zero,
			Balance:   decimal.Zero,
		}
		for _, l := range p.Ledgers {
			if e, ok := l.Entry(index); ok {
				entry.Payment = entry.Payment.Add(e.Payment)
				entry.Interest = entry.Interest.Add(e.Interest)
				entry.Principal = entry.Principal.Add(e.Principal)
			}
			entry.Balance = entry.Balance.Add(l.BalanceAt(index))
		}
		totals.append(entry)
	}
	return totals
}

func (p *Projection) openingBalance() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Ledgers {
		total = total.Add(l.Account.Balance)
	}
	return total
}

// =============================================================================
// SUMMARY - What stores and APIs keep about a finished projection
// =============================================================================

// AccountPayoff is the per-account outcome of a projection.
type AccountPayoff struct {
	Name          string          `json:"name"`
	PayoffMonth   Month           `json:"payoff_month"`
	Months        int             `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
}

// Summary condenses a projection into its aggregate numbers.
type Summary struct {
	Strategy             string          `json:"strategy"`
	SortOrder            SortOrder       `json:"sort_order"`
	StartDate            Month           `json:"start_date"`
	PayoffDate           Month           `json:"payoff_date"`
	NumberOfMonths       int             `json:"number_of_months"`
	TotalInterest        decimal.Decimal `json:"total_interest"`
	TotalPaid            decimal.Decimal `json:"total_paid"`
	MinimumMonthlyBudget decimal.Decimal `json:"minimum_monthly_budget"`
	TotalMonthlyBudget   decimal.Decimal `json:"total_monthly_budget"`
	Accounts             []AccountPayoff `json:"accounts"`
}

// Summarize derives a Summary from a finished projection.
func Summarize(p *Projection) Summary {
	strategy := "minimum"
	if p.Snowballing {
		strategy = "snowball"
	}
	s := Summary{
		Strategy:             strategy,
		SortOrder:            p.SortOrder,
		StartDate:            p.StartDate,
		PayoffDate:           p.EndDate(),
		NumberOfMonths:       p.NumberOfMonths(),
		TotalInterest:        p.TotalInterest(),
		TotalPaid:            p.TotalPaid(),
		MinimumMonthlyBudget: p.MinimumMonthlyBudget,
		TotalMonthlyBudget:   p.TotalMonthlyBudget,
		Accounts:             make([]AccountPayoff, 0, len(p.Ledgers)),
	}
	for _, l := range p.Ledgers {
		payoff := AccountPayoff{
			Name:          l.Account.Name,
			Months:        l.Len(),
			TotalInterest: l.TotalInterest(),
			TotalPaid:     l.TotalPaid(),
		}
		if last, ok := l.Last(); ok {
			payoff.PayoffMonth = last.Month
		}
		s.Accounts = append(s.Accounts, payoff)
	}
	return s
}

// =============================================================================
// FLATTENED ROWS - For stores and exports
// =============================================================================

// RunEntry is one ledger entry flattened with its account name.
type RunEntry struct {
	Account string `json:"account"`
	MonthlyEntry
}

// Flatten lists every entry month by month, accounts in sequencer order.
func Flatten(p *Projection) []RunEntry {
	var rows []RunEntry
	for index := range p.Months {
		for _, l := range p.Ledgers {
			if e, ok := l.Entry(index); ok {
				rows = append(rows, RunEntry{Account: l.Account.Name, MonthlyEntry: e})
			}
		}
	}
	return rows
}

// =============================================================================
// COMPARISON - Same portfolio, different sequencer orders
// =============================================================================

// Comparison is the outcome of one sort order.
type Comparison struct {
	SortOrder      SortOrder       `json:"sort_order"`
	NumberOfMonths int             `json:"number_of_months"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	PayoffDate     Month           `json:"payoff_date"`

	// InterestSaved is relative to the unsorted baseline (negative = costs more).
	InterestSaved decimal.Decimal `json:"interest_saved"`
}

// Compare projects input once per order and ranks the results by total
// interest, then months. The unsorted order is always included as the
// baseline. The input's own SortOrder is ignored.
func Compare(engine *ProjectionEngine, input ProjectionInput, orders []SortOrder) ([]Comparison, error) {
	if len(orders) == 0 {
		orders = AllSortOrders()
	}
	if !containsOrder(orders, SortUnsorted) {
		orders = append([]SortOrder{SortUnsorted}, orders...)
	}

	results := make([]Comparison, 0, len(orders))
	baseline := decimal.Zero
	for _, order := range orders {
		run := input
		run.SortOrder = order
		p, err := engine.Project(run)
		if err != nil {
			return nil, err
		}
		c := Comparison{
			SortOrder:      order,
			NumberOfMonths: p.NumberOfMonths(),
			TotalInterest:  p.TotalInterest(),
			PayoffDate:     p.EndDate(),
		}
		if order == SortUnsorted {
			baseline = c.TotalInterest
		}
		results = append(results, c)
	}

	for i := range results {
		results[i].InterestSaved = baseline.Sub(results[i].TotalInterest)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].TotalInterest.Equal(results[j].TotalInterest) {
			return results[i].TotalInterest.LessThan(results[j].TotalInterest)
		}
		return results[i].NumberOfMonths < results[j].NumberOfMonths
	})
	return results, nil
}

func containsOrder(orders []SortOrder, target SortOrder) bool {
	for _, o := range orders {
		if o == target {
			return true
		}
	}
	return false
}
