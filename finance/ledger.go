/*
ledger.go - Per-account, append-only payment history

PURPOSE:
  An AccountLedger is the month-by-month record of one account inside a
  projection. The engine is the only writer; once Project returns, ledgers
  are read-only output for renderers and stores.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: entries are added by the engine, never edited or removed
  2. MONOTONIC: Balance is non-increasing from one entry to the next
  3. TERMINAL: the final entry's Balance is exactly zero
  4. NON-NEGATIVE: no entry's Balance is below zero

  An account that starts at zero balance has no entries at all.

SEE ALSO:
  - projection.go: Owns the ledgers and the month list
  - allocation.go: Produces the entries appended here
*/
package finance

import "github.com/shopspring/decimal"

// AccountLedger is the ordered sequence of monthly entries for one account.
type AccountLedger struct {
	Account Account
	entries []MonthlyEntry
}

func newAccountLedger(a Account) *AccountLedger {
	return &AccountLedger{Account: a}
}

// append is unexported: only the engine writes ledgers.
func (l *AccountLedger) append(e MonthlyEntry) {
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the ledger entries, oldest first.
func (l *AccountLedger) Entries() []MonthlyEntry {
	out := make([]MonthlyEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *AccountLedger) Len() int { return len(l.entries) }

// Entry returns the entry for a month index, if the account was active then.
func (l *AccountLedger) Entry(index int) (MonthlyEntry, bool) {
	if index < 0 || index >= len(l.entries) {
		return MonthlyEntry{}, false
	}
	return l.entries[index], true
}

// Last returns the most recent entry.
func (l *AccountLedger) Last() (MonthlyEntry, bool) {
	return l.Entry(len(l.entries) - 1)
}

// Balance is the running balance after the latest entry (or the opening balance).
func (l *AccountLedger) Balance() decimal.Decimal {
	if last, ok := l.Last(); ok {
		return last.Balance
	}
	return l.Account.Balance
}

// BalanceAt returns the post-payment balance at a month index.
// After payoff the balance stays at zero.
func (l *AccountLedger) BalanceAt(index int) decimal.Decimal {
	if e, ok := l.Entry(index); ok {
		return e.Balance
	}
	if index >= len(l.entries) {
		return l.Balance()
	}
	return l.Account.Balance
}

func (l *AccountLedger) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.Interest)
	}
	return total
}

func (l *AccountLedger) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.Payment)
	}
	return total
}

// PaidOff reports whether the ledger reached zero.
func (l *AccountLedger) PaidOff() bool {
	return l.Balance().IsZero()
}

// PayoffIndex returns the month index of the final entry, or -1 if the
// account never carried a balance.
func (l *AccountLedger) PayoffIndex() int {
	return len(l.entries) - 1
}
