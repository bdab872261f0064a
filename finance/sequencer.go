package finance

import (
	"sort"
	"strings"
)

// =============================================================================
// ACCOUNT SEQUENCER - Fixes account precedence once, up front
// =============================================================================

// SortOrder selects the key accounts are ordered by. The order decides both
// minimum-payment iteration and which account receives snowball overflow first.
// SortAPRDescending is the "avalanche" order, SortBalanceAscending the classic
// snowball order.
type SortOrder string

const (
	SortUnsorted          SortOrder = "unsorted"
	SortAPRAscending      SortOrder = "apr_asc"
	SortAPRDescending     SortOrder = "apr_desc"
	SortBalanceAscending  SortOrder = "balance_asc"
	SortBalanceDescending SortOrder = "balance_desc"
)

// AllSortOrders lists every supported order, unsorted first.
func AllSortOrders() []SortOrder {
	return []SortOrder{
		SortUnsorted,
		SortAPRAscending,
		SortAPRDescending,
		SortBalanceAscending,
		SortBalanceDescending,
	}
}

// ParseSortOrder accepts the canonical names, case-insensitively.
// An empty string means unsorted.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortUnsorted, nil
	}
	candidate := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	for _, o := range AllSortOrders() {
		if o == candidate {
			return o, nil
		}
	}
	return "", &ValidationError{Field: "sort_order", Reason: "unknown sort order " + s}
}

// AccountSequencer orders accounts by a SortOrder.
type AccountSequencer struct {
	Order SortOrder
}

// Sequence returns a new slice in sequencer order. Ties keep input order.
func (s AccountSequencer) Sequence(accounts []Account) []Account {
	out := make([]Account, len(accounts))
	copy(out, accounts)

	var less func(a, b Account) bool
	switch s.Order {
	case SortAPRAscending:
		less = func(a, b Account) bool { return a.APR.LessThan(b.APR) }
	case SortAPRDescending:
		less = func(a, b Account) bool { return a.APR.GreaterThan(b.APR) }
	case SortBalanceAscending:
		less = func(a, b Account) bool { return a.Balance.LessThan(b.Balance) }
	case SortBalanceDescending:
		less = func(a, b Account) bool { return a.Balance.GreaterThan(b.Balance) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
