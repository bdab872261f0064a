/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the finance package from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are rendered as strings with two decimals ("1063.54") so clients
  never see float rounding.

TYPES:
  Projection:
    ProjectionRequest, ProjectionDTO, LedgerDTO, EntryDTO, RunDTO

  Compare:
    CompareRequest, ComparisonDTO

  Scenarios:
    ScenarioDTO

SEE ALSO:
  - handlers.go: Uses these types
  - factory/portfolio.go: PortfolioJSON (request body)
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/factory"
	"github.com/warp/debt-engine/finance"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ProjectionRequest is a portfolio plus rendering options.
type ProjectionRequest struct {
	factory.PortfolioJSON `yaml:",inline"`

	// IncludeTotals adds the synthetic "Totals" ledger to the response.
	IncludeTotals bool `json:"include_totals,omitempty" yaml:"include_totals,omitempty"`
}

// CompareRequest is a portfolio plus the orders to compare (all when empty).
type CompareRequest struct {
	factory.PortfolioJSON `yaml:",inline"`

	Orders []string `json:"orders,omitempty" yaml:"orders,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AccountDTO is an input account.
type AccountDTO struct {
	Name           string `json:"name"`
	Balance        string `json:"balance"`
	APR            string `json:"apr"`
	MinimumPayment string `json:"minimum_payment"`
}

// EntryDTO is one month of one ledger.
type EntryDTO struct {
	Index     int    `json:"index"`
	Month     string `json:"month"`
	Payment   string `json:"payment"`
	Interest  string `json:"interest"`
	Principal string `json:"principal"`
	Balance   string `json:"balance"`
}

// LedgerDTO is the schedule of one account.
type LedgerDTO struct {
	Account       AccountDTO `json:"account"`
	PayoffMonth   string     `json:"payoff_month,omitempty"`
	TotalInterest string     `json:"total_interest"`
	TotalPaid     string     `json:"total_paid"`
	Entries       []EntryDTO `json:"entries"`
}

// SummaryDTO is the headline numbers of a projection.
type SummaryDTO struct {
	Strategy             string `json:"strategy"`
	SortOrder            string `json:"sort_order"`
	StartDate            string `json:"start_date"`
	PayoffDate           string `json:"payoff_date,omitempty"`
	NumberOfMonths       int    `json:"number_of_months"`
	TotalInterest        string `json:"total_interest"`
	TotalPaid            string `json:"total_paid"`
	MinimumMonthlyBudget string `json:"minimum_monthly_budget"`
	TotalMonthlyBudget   string `json:"total_monthly_budget"`
}

// ProjectionDTO is a computed projection. ID is empty for previews.
type ProjectionDTO struct {
	ID        string      `json:"id,omitempty"`
	Name      string      `json:"name,omitempty"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
	Summary   SummaryDTO  `json:"summary"`
	Ledgers   []LedgerDTO `json:"ledgers"`
	Totals    *LedgerDTO  `json:"totals,omitempty"`
}

// RunDTO is a saved run without its schedule.
type RunDTO struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	CreatedAt time.Time             `json:"created_at"`
	Summary   SummaryDTO            `json:"summary"`
	Accounts  []AccountPayoffDTO    `json:"accounts"`
	Portfolio factory.PortfolioJSON `json:"portfolio"`
}

// AccountPayoffDTO is the per-account outcome of a saved run.
type AccountPayoffDTO struct {
	Name          string `json:"name"`
	PayoffMonth   string `json:"payoff_month,omitempty"`
	Months        int    `json:"months"`
	TotalInterest string `json:"total_interest"`
	TotalPaid     string `json:"total_paid"`
}

// RunEntryDTO is one flattened schedule row of a saved run.
type RunEntryDTO struct {
	Account string `json:"account"`
	EntryDTO
}

// ComparisonDTO is the outcome of one sort order.
type ComparisonDTO struct {
	SortOrder      string `json:"sort_order"`
	NumberOfMonths int    `json:"number_of_months"`
	TotalInterest  string `json:"total_interest"`
	InterestSaved  string `json:"interest_saved"`
	PayoffDate     string `json:"payoff_date,omitempty"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Portfolio   factory.PortfolioJSON `json:"portfolio"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func monthOrEmpty(m finance.Month) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}

func toAccountDTO(a finance.Account) AccountDTO {
	return AccountDTO{
		Name:           a.Name,
		Balance:        money(a.Balance),
		APR:            a.APR.String(),
		MinimumPayment: money(a.MinimumPayment),
	}
}

func toEntryDTO(e finance.MonthlyEntry) EntryDTO {
	return EntryDTO{
		Index:     e.Index,
		Month:     e.Month.String(),
		Payment:   money(e.Payment),
		Interest:  money(e.Interest),
		Principal: money(e.Principal),
		Balance:   money(e.Balance),
	}
}

func toLedgerDTO(l *finance.AccountLedger) LedgerDTO {
	dto := LedgerDTO{
		Account:       toAccountDTO(l.Account),
		TotalInterest: money(l.TotalInterest()),
		TotalPaid:     money(l.TotalPaid()),
		Entries:       []EntryDTO{},
	}
	for _, e := range l.Entries() {
		dto.Entries = append(dto.Entries, toEntryDTO(e))
	}
	if last, ok := l.Last(); ok {
		dto.PayoffMonth = last.Month.String()
	}
	return dto
}

func toSummaryDTO(s finance.Summary) SummaryDTO {
	return SummaryDTO{
		Strategy:             s.Strategy,
		SortOrder:            string(s.SortOrder),
		StartDate:            s.StartDate.String(),
		PayoffDate:           monthOrEmpty(s.PayoffDate),
		NumberOfMonths:       s.NumberOfMonths,
		TotalInterest:        money(s.TotalInterest),
		TotalPaid:            money(s.TotalPaid),
		MinimumMonthlyBudget: money(s.MinimumMonthlyBudget),
		TotalMonthlyBudget:   money(s.TotalMonthlyBudget),
	}
}

// NewProjectionDTO renders a projection for the wire. Amounts are fixed to cents.
func NewProjectionDTO(p *finance.Projection, includeTotals bool) ProjectionDTO {
	dto := ProjectionDTO{
		Summary: toSummaryDTO(finance.Summarize(p)),
		Ledgers: make([]LedgerDTO, 0, len(p.Ledgers)),
	}
	for _, l := range p.Ledgers {
		dto.Ledgers = append(dto.Ledgers, toLedgerDTO(l))
	}
	if includeTotals {
		totals := toLedgerDTO(p.Totals())
		dto.Totals = &totals
	}
	return dto
}

func toRunDTO(run finance.Run, f *factory.PortfolioFactory) RunDTO {
	dto := RunDTO{
		ID:        run.ID,
		Name:      run.Name,
		CreatedAt: run.CreatedAt,
		Summary:   toSummaryDTO(run.Summary),
		Accounts:  make([]AccountPayoffDTO, 0, len(run.Summary.Accounts)),
		Portfolio: f.ToJSON(run.Name, run.Input),
	}
	for _, a := range run.Summary.Accounts {
		dto.Accounts = append(dto.Accounts, AccountPayoffDTO{
			Name:          a.Name,
			PayoffMonth:   monthOrEmpty(a.PayoffMonth),
			Months:        a.Months,
			TotalInterest: money(a.TotalInterest),
			TotalPaid:     money(a.TotalPaid),
		})
	}
	return dto
}

func toRunEntryDTOs(entries []finance.RunEntry) []RunEntryDTO {
	dtos := make([]RunEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, RunEntryDTO{Account: e.Account, EntryDTO: toEntryDTO(e.MonthlyEntry)})
	}
	return dtos
}

// NewComparisonDTOs renders comparison results in rank order.
func NewComparisonDTOs(results []finance.Comparison) []ComparisonDTO {
	dtos := make([]ComparisonDTO, 0, len(results))
	for _, c := range results {
		dtos = append(dtos, ComparisonDTO{
			SortOrder:      string(c.SortOrder),
			NumberOfMonths: c.NumberOfMonths,
			TotalInterest:  money(c.TotalInterest),
			InterestSaved:  money(c.InterestSaved),
			PayoffDate:     monthOrEmpty(c.PayoffDate),
		})
	}
	return dtos
}
