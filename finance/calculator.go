package finance

import "github.com/shopspring/decimal"

// =============================================================================
// ROUNDING POLICY - Passed in, never global
// =============================================================================

type RoundingMode string

const (
	RoundHalfUp   RoundingMode = "half_up"   // 0.125 -> 0.13
	RoundHalfEven RoundingMode = "half_even" // 0.125 -> 0.12 (banker's)
	RoundDown     RoundingMode = "down"      // 0.129 -> 0.12
)

// RoundingPolicy rounds money to the currency's minor unit.
type RoundingPolicy struct {
	Places int32
	Mode   RoundingMode
}

// DefaultRounding rounds to cents, half away from zero.
func DefaultRounding() RoundingPolicy {
	return RoundingPolicy{Places: 2, Mode: RoundHalfUp}
}

func (p RoundingPolicy) Round(d decimal.Decimal) decimal.Decimal {
	switch p.Mode {
	case RoundHalfEven:
		return d.RoundBank(p.Places)
	case RoundDown:
		return d.RoundDown(p.Places)
	default:
		return d.Round(p.Places)
	}
}

// =============================================================================
// CYCLE CALCULATOR
// =============================================================================

var monthsPerYear = decimal.NewFromInt(12)

// CycleCalculator computes the interest and payment of one billing cycle.
// It is a value type with no state besides its rounding policy.
type CycleCalculator struct {
	Rounding RoundingPolicy
}

func NewCycleCalculator(rounding RoundingPolicy) CycleCalculator {
	return CycleCalculator{Rounding: rounding}
}

// MonthlyInterest returns balance * apr / 12, rounded by the policy.
func (c CycleCalculator) MonthlyInterest(balance, apr decimal.Decimal) decimal.Decimal {
	return c.Rounding.Round(balance.Mul(apr).Div(monthsPerYear))
}

// CyclePayment returns the payment due for an account this cycle.
// Minimum payments are constant for the life of a projection.
func (c CycleCalculator) CyclePayment(a Account) decimal.Decimal {
	return a.MinimumPayment
}

// Check returns a NonAmortizingPaymentError if an account carrying balance
// would never shrink: payment <= interest.
func (c CycleCalculator) Check(a Account, balance decimal.Decimal, index int, month Month) error {
	if !balance.IsPositive() {
		return nil
	}
	interest := c.MonthlyInterest(balance, a.APR)
	payment := c.CyclePayment(a)
	if payment.LessThanOrEqual(interest) {
		return &NonAmortizingPaymentError{
			Account:    a.Name,
			MonthIndex: index,
			Month:      month,
			Balance:    balance,
			Interest:   interest,
			Payment:    payment,
		}
	}
	return nil
}
