/*
projection.go - Month-by-month payoff simulation

PURPOSE:
  ProjectionEngine turns a ProjectionInput into a fully populated Projection:
  one AccountLedger per account, the list of simulated months, and the
  aggregate numbers callers report (months to payoff, total interest,
  monthly budget).

STATE MACHINE:
  Running -> Done

  Running: one step = record the month, allocate it, append entries,
           advance to the next calendar month.
  Done:    the sum of balances is zero.

  The step function never looks at ledgers to decide anything; the state is
  the vector of balances, which keeps pass 1 and pass 2 of the snowball free
  of hidden coupling.

TERMINATION:
  Every active account's payment strictly exceeds its interest (checked up
  front and every month), so balances strictly decrease. MaxMonths is a hard
  ceiling on top of that in case rounding ever stalls progress.

ATOMICITY:
  Project returns either a complete Projection or an error, never both.

EXAMPLE:
  engine := finance.NewProjectionEngine()
  p, err := engine.Project(input)
  if err != nil {
      return err
  }
  fmt.Println(p.NumberOfMonths(), p.TotalInterest())

SEE ALSO:
  - allocation.go: Per-month allocation strategies
  - sequencer.go: Account ordering
  - summary.go: Derived totals and flattened rows
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROJECTION - The aggregate root
// =============================================================================

// Projection is the output of a run. It is never mutated after Project returns.
type Projection struct {
	// Ledgers are in sequencer order, one per input account.
	Ledgers []*AccountLedger

	StartDate          Month
	Snowballing        bool
	ExtraMonthlyAmount decimal.Decimal
	SortOrder          SortOrder

	// MinimumMonthlyBudget = sum of minimum payments.
	MinimumMonthlyBudget decimal.Decimal
	// TotalMonthlyBudget adds ExtraMonthlyAmount when snowballing.
	// Constant for the whole projection.
	TotalMonthlyBudget decimal.Decimal

	// Months lists every simulated calendar month, in order.
	Months []Month
}

// NewProjection validates the input and builds an empty projection with
// ledgers in sequencer order. No month is simulated.
func NewProjection(input ProjectionInput, start Month) (*Projection, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	order, _ := ParseSortOrder(string(input.SortOrder))
	accounts := AccountSequencer{Order: order}.Sequence(input.Accounts)

	p := &Projection{
		Ledgers:            make([]*AccountLedger, len(accounts)),
		StartDate:          start,
		Snowballing:        input.Snowballing,
		ExtraMonthlyAmount: input.ExtraMonthlyAmount,
		SortOrder:          order,
	}

	minimum := decimal.Zero
	for i, a := range accounts {
		p.Ledgers[i] = newAccountLedger(a)
		minimum = minimum.Add(a.MinimumPayment)
	}
	p.MinimumMonthlyBudget = minimum
	p.TotalMonthlyBudget = minimum
	if input.Snowballing {
		p.TotalMonthlyBudget = minimum.Add(input.ExtraMonthlyAmount)
	}
	return p, nil
}

// Accounts returns the accounts in sequencer order.
func (p *Projection) Accounts() []Account {
	out := make([]Account, len(p.Ledgers))
	for i, l := range p.Ledgers {
		out[i] = l.Account
	}
	return out
}

func (p *Projection) NumberOfMonths() int { return len(p.Months) }

// EndDate is the last simulated month (zero if nothing was owed).
func (p *Projection) EndDate() Month {
	if len(p.Months) == 0 {
		return Month{}
	}
	return p.Months[len(p.Months)-1]
}

// Balance is the sum of the current running balances.
func (p *Projection) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Ledgers {
		total = total.Add(l.Balance())
	}
	return total
}

// TotalInterest sums every interest amount across all ledgers.
func (p *Projection) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Ledgers {
		total = total.Add(l.TotalInterest())
	}
	return total
}

// TotalPaid sums every payment across all ledgers.
func (p *Projection) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Ledgers {
		total = total.Add(l.TotalPaid())
	}
	return total
}

// Ledger finds an account ledger by account name.
func (p *Projection) Ledger(name string) (*AccountLedger, bool) {
	for _, l := range p.Ledgers {
		if l.Account.Name == name {
			return l, true
		}
	}
	return nil, false
}

// PayoffMonth returns the month an account reached zero.
func (p *Projection) PayoffMonth(name string) (Month, bool) {
	l, ok := p.Ledger(name)
	if !ok || l.Len() == 0 {
		return Month{}, false
	}
	last, _ := l.Last()
	return last.Month, true
}

// =============================================================================
// PROJECTION ENGINE
// =============================================================================

// DefaultMaxMonths caps a projection at 100 years.
const DefaultMaxMonths = 1200

// ProjectionEngine runs projections. The zero value is not usable; use
// NewProjectionEngine.
type ProjectionEngine struct {
	Calculator CycleCalculator

	// MaxMonths bounds the loop. <= 0 means DefaultMaxMonths.
	MaxMonths int

	// Now supplies the default start month when the input has none.
	Now func() time.Time
}

// NewProjectionEngine returns an engine with cent rounding and the default ceiling.
func NewProjectionEngine() *ProjectionEngine {
	return &ProjectionEngine{
		Calculator: NewCycleCalculator(DefaultRounding()),
		MaxMonths:  DefaultMaxMonths,
		Now:        time.Now,
	}
}

// StartMonth resolves the first simulated month for input.
func (pe *ProjectionEngine) StartMonth(input ProjectionInput) Month {
	if !input.StartDate.IsZero() {
		return StartOfMonth(input.StartDate.Time)
	}
	now := time.Now
	if pe.Now != nil {
		now = pe.Now
	}
	return StartOfMonth(now().UTC())
}

// Project validates the input and simulates it to completion.
func (pe *ProjectionEngine) Project(input ProjectionInput) (*Projection, error) {
	start := pe.StartMonth(input)

	p, err := NewProjection(input, start)
	if err != nil {
		return nil, err
	}

	sim := newSimulation(p, pe.strategyFor(p), pe.maxMonths())

	// Reject non-amortizing accounts before any month is simulated.
	for i, l := range p.Ledgers {
		if err := pe.Calculator.Check(l.Account, sim.balances[i], 0, start); err != nil {
			return nil, err
		}
	}

	for sim.state == StateRunning {
		if err := sim.step(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (pe *ProjectionEngine) strategyFor(p *Projection) AllocationStrategy {
	accounts := p.Accounts()
	if p.Snowballing {
		return &Snowball{Calculator: pe.Calculator, Accounts: accounts, Budget: p.TotalMonthlyBudget}
	}
	return &MinimumOnly{Calculator: pe.Calculator, Accounts: accounts}
}

func (pe *ProjectionEngine) maxMonths() int {
	if pe.MaxMonths <= 0 {
		return DefaultMaxMonths
	}
	return pe.MaxMonths
}

// =============================================================================
// SIMULATION - Explicit state machine driving one projection
// =============================================================================

type SimulationState int

const (
	StateRunning SimulationState = iota
	StateDone
)

func (s SimulationState) String() string {
	if s == StateDone {
		return "done"
	}
	return "running"
}

type simulation struct {
	projection *Projection
	strategy   AllocationStrategy
	maxMonths  int

	state    SimulationState
	balances []decimal.Decimal
	current  Month
	index    int
}

func newSimulation(p *Projection, strategy AllocationStrategy, maxMonths int) *simulation {
	balances := make([]decimal.Decimal, len(p.Ledgers))
	for i, l := range p.Ledgers {
		balances[i] = l.Account.Balance
	}
	s := &simulation{
		projection: p,
		strategy:   strategy,
		maxMonths:  maxMonths,
		balances:   balances,
		current:    p.StartDate,
	}
	s.state = s.nextState()
	return s
}

func (s *simulation) nextState() SimulationState {
	if sum(s.balances).IsPositive() {
		return StateRunning
	}
	return StateDone
}

// step simulates one month.
func (s *simulation) step() error {
	if s.index >= s.maxMonths {
		return &ProjectionDidNotConvergeError{MaxMonths: s.maxMonths, RemainingBalance: sum(s.balances)}
	}

	alloc, err := s.strategy.Allocate(s.current, s.index, s.balances)
	if err != nil {
		return err
	}

	p := s.projection
	p.Months = append(p.Months, s.current)
	for i, e := range alloc.Entries {
		if e != nil {
			p.Ledgers[i].append(*e)
		}
	}

	s.balances = alloc.Balances
	s.current = s.current.AddMonths(1)
	s.index++
	s.state = s.nextState()
	return nil
}
