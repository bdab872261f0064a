/*
Package factory converts portfolio files into projection inputs.

PURPOSE:
  A portfolio is the user-facing description of a debt payoff plan: the
  accounts owed plus the snowball parameters. The factory parses it from
  YAML or JSON, validates it, and hands the engine a finance.ProjectionInput.
  The API, the CLI and the demo scenarios all go through here.

SCHEMA (YAML; JSON uses the same keys):
  name: Credit cards
  start_date: "2025-01"        # YYYY-MM, optional (defaults to this month)
  snowball: true
  extra_monthly_amount: 100
  sort_order: balance_asc      # unsorted | apr_asc | apr_desc | balance_asc | balance_desc
  accounts:
    - name: Visa
      balance: 1200.50
      apr: 0.1999              # 19.99%
      minimum_payment: 35

AMOUNTS:
  Amounts accept numbers or quoted strings and are held as decimals, so
  "0.1" never goes through float64.

USAGE:
  f := factory.NewPortfolioFactory()
  input, err := f.ParsePortfolio(data)

  // Round trip
  pj := f.ToJSON("Credit cards", input)
  data, err := factory.MarshalPortfolio(pj)

SEE ALSO:
  - presets.go: demo portfolios
  - finance/types.go: ProjectionInput
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/finance"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// PortfolioJSON is the file/wire representation of a portfolio.
type PortfolioJSON struct {
	Name               string        `json:"name,omitempty" yaml:"name,omitempty"`
	StartDate          string        `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	Snowball           bool          `json:"snowball" yaml:"snowball"`
	ExtraMonthlyAmount Amount        `json:"extra_monthly_amount" yaml:"extra_monthly_amount"`
	SortOrder          string        `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
	Accounts           []AccountJSON `json:"accounts" yaml:"accounts"`
}

// AccountJSON is one account of a portfolio.
type AccountJSON struct {
	Name           string `json:"name" yaml:"name"`
	Balance        Amount `json:"balance" yaml:"balance"`
	APR            Amount `json:"apr" yaml:"apr"`
	MinimumPayment Amount `json:"minimum_payment" yaml:"minimum_payment"`
}

// Amount is a decimal that reads numbers or strings from JSON and YAML and
// writes plain numbers.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}

func (a Amount) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: a.Decimal.String()}, nil
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	a.Decimal = d
	return nil
}

// =============================================================================
// PORTFOLIO FACTORY
// =============================================================================

// PortfolioFactory converts portfolio documents to projection inputs.
type PortfolioFactory struct{}

// NewPortfolioFactory creates a new portfolio factory.
func NewPortfolioFactory() *PortfolioFactory {
	return &PortfolioFactory{}
}

// Decode parses YAML or JSON without validating the result.
func (f *PortfolioFactory) Decode(data []byte) (PortfolioJSON, error) {
	var pj PortfolioJSON
	// YAML first, JSON as fallback.
	if err := yaml.Unmarshal(data, &pj); err != nil {
		pj = PortfolioJSON{}
		if jerr := json.Unmarshal(data, &pj); jerr != nil {
			return PortfolioJSON{}, fmt.Errorf("failed to parse portfolio (tried YAML and JSON): %w", err)
		}
	}
	return pj, nil
}

// ParsePortfolio parses a YAML or JSON document into a validated input.
func (f *PortfolioFactory) ParsePortfolio(data []byte) (finance.ProjectionInput, error) {
	pj, err := f.Decode(data)
	if err != nil {
		return finance.ProjectionInput{}, err
	}
	return f.FromJSON(pj)
}

// LoadFile reads and parses a portfolio file.
func (f *PortfolioFactory) LoadFile(path string) (PortfolioJSON, finance.ProjectionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PortfolioJSON{}, finance.ProjectionInput{}, fmt.Errorf("read portfolio file: %w", err)
	}
	pj, err := f.Decode(data)
	if err != nil {
		return PortfolioJSON{}, finance.ProjectionInput{}, err
	}
	input, err := f.FromJSON(pj)
	if err != nil {
		return PortfolioJSON{}, finance.ProjectionInput{}, err
	}
	return pj, input, nil
}

// FromJSON converts a PortfolioJSON into a validated ProjectionInput.
func (f *PortfolioFactory) FromJSON(pj PortfolioJSON) (finance.ProjectionInput, error) {
	order, err := finance.ParseSortOrder(pj.SortOrder)
	if err != nil {
		return finance.ProjectionInput{}, err
	}

	input := finance.ProjectionInput{
		Snowballing:        pj.Snowball,
		ExtraMonthlyAmount: pj.ExtraMonthlyAmount.Decimal,
		SortOrder:          order,
	}
	if pj.StartDate != "" {
		start, err := finance.ParseMonth(pj.StartDate)
		if err != nil {
			return finance.ProjectionInput{}, &finance.ValidationError{
				Field:  "start_date",
				Reason: fmt.Sprintf("%q is not a YYYY-MM month", pj.StartDate),
			}
		}
		input.StartDate = start
	}

	for _, aj := range pj.Accounts {
		input.Accounts = append(input.Accounts, finance.Account{
			Name:           strings.TrimSpace(aj.Name),
			Balance:        aj.Balance.Decimal,
			APR:            aj.APR.Decimal,
			MinimumPayment: aj.MinimumPayment.Decimal,
		})
	}

	if err := input.Validate(); err != nil {
		return finance.ProjectionInput{}, err
	}
	return input, nil
}

// ToJSON converts a ProjectionInput back to its document form.
func (f *PortfolioFactory) ToJSON(name string, input finance.ProjectionInput) PortfolioJSON {
	pj := PortfolioJSON{
		Name:               name,
		Snowball:           input.Snowballing,
		ExtraMonthlyAmount: NewAmount(input.ExtraMonthlyAmount),
		SortOrder:          string(input.SortOrder),
		Accounts:           make([]AccountJSON, 0, len(input.Accounts)),
	}
	if !input.StartDate.IsZero() {
		pj.StartDate = input.StartDate.String()
	}
	for _, a := range input.Accounts {
		pj.Accounts = append(pj.Accounts, AccountJSON{
			Name:           a.Name,
			Balance:        NewAmount(a.Balance),
			APR:            NewAmount(a.APR),
			MinimumPayment: NewAmount(a.MinimumPayment),
		})
	}
	return pj
}

// =============================================================================
// WRITING
// =============================================================================

// MarshalPortfolio renders a portfolio as YAML.
func MarshalPortfolio(pj PortfolioJSON) ([]byte, error) {
	return yaml.Marshal(pj)
}

// SaveFile writes a portfolio; .json files get JSON, everything else YAML.
func SaveFile(path string, pj PortfolioJSON) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(pj, "", "  ")
	} else {
		data, err = MarshalPortfolio(pj)
	}
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write portfolio file: %w", err)
	}
	return nil
}
