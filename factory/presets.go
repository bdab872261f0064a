package factory

import "github.com/shopspring/decimal"

// =============================================================================
// PRESET PORTFOLIOS
// =============================================================================
//
// Demo portfolios used by the API scenarios and `snowball portfolio init`.
// Start dates are left empty so each run starts in the current month.

// Preset is a named demo portfolio.
type Preset struct {
	ID          string
	Name        string
	Description string
	Portfolio   PortfolioJSON
}

// Presets lists every demo portfolio in display order.
func Presets() []Preset {
	return []Preset{
		{
			ID:          "single-card",
			Name:        "Single Card",
			Description: "One card paid at its minimum: $1000 at 12% APR, $50 a month",
			Portfolio:   ScenarioA(),
		},
		{
			ID:          "two-card-snowball",
			Name:        "Two-Card Snowball",
			Description: "Small card retired first, freed payment rolls into the large one",
			Portfolio:   ScenarioB(),
		},
		{
			ID:          "credit-card-stack",
			Name:        "Credit Card Stack",
			Description: "Four cards and a store card with $250 extra a month",
			Portfolio:   CreditCardStack(),
		},
	}
}

// FindPreset returns the preset with the given ID.
func FindPreset(id string) (Preset, bool) {
	for _, p := range Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// ScenarioA is a single account paid at its minimum.
func ScenarioA() PortfolioJSON {
	return PortfolioJSON{
		Name: "Single card",
		Accounts: []AccountJSON{
			account("Card", "1000", "0.12", "50"),
		},
	}
}

// ScenarioB is a two-account snowball, smallest balance first.
func ScenarioB() PortfolioJSON {
	return PortfolioJSON{
		Name:               "Two-card snowball",
		Snowball:           true,
		ExtraMonthlyAmount: amount("100"),
		SortOrder:          "balance_asc",
		Accounts: []AccountJSON{
			account("Visa", "5000", "0.15", "80"),
			account("Store Card", "200", "0.22", "30"),
		},
	}
}

// CreditCardStack is a typical multi-card household portfolio.
func CreditCardStack() PortfolioJSON {
	return PortfolioJSON{
		Name:               "Credit card stack",
		Snowball:           true,
		ExtraMonthlyAmount: amount("250"),
		SortOrder:          "balance_asc",
		Accounts: []AccountJSON{
			account("Visa", "4200", "0.2199", "105"),
			account("Mastercard", "2750.40", "0.1824", "70"),
			account("Amex", "1580", "0.2449", "45"),
			account("Discover", "8900", "0.1599", "190"),
			account("Department Store", "640", "0.2799", "35"),
		},
	}
}

func account(name, balance, apr, minimum string) AccountJSON {
	return AccountJSON{
		Name:           name,
		Balance:        amount(balance),
		APR:            amount(apr),
		MinimumPayment: amount(minimum),
	}
}

func amount(s string) Amount {
	return NewAmount(decimal.RequireFromString(s))
}
