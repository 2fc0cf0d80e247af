package ledger

import (
	"sort"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Credit adds amount to a category balance.
func Credit(balance, amount decimal.Decimal) decimal.Decimal {
	return balance.Add(amount)
}

// Debit subtracts amount from a category balance, clamping the result at zero.
// Clamping is lossy: a later reconcile is the only way to recover the difference.
func Debit(balance, amount decimal.Decimal) decimal.Decimal {
	next := balance.Sub(amount)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// Recompute sums the amounts of APPROVED requests per category. Requests in any other
// status are ignored. Categories without approved requests are absent from the result.
func Recompute(requests []domain.BudgetRequest) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, r := range requests {
		if !r.Affects() {
			continue
		}
		sums[r.Category] = sums[r.Category].Add(r.Amount)
	}
	return sums
}

// Total sums a set of category balances.
func Total(balances []domain.CategoryBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Amount)
	}
	return total
}

// Drift compares stored balances against the recomputed sums and returns every
// category where they disagree, ordered by category. A stored row missing from
// expected is drift towards zero; an expected sum without a row is drift from zero.
func Drift(stored []domain.CategoryBalance, expected map[string]decimal.Decimal) []domain.BalanceDrift {
	seen := make(map[string]decimal.Decimal, len(stored))
	for _, b := range stored {
		seen[b.Category] = b.Amount
	}

	categories := make([]string, 0, len(seen)+len(expected))
	for c := range seen {
		categories = append(categories, c)
	}
	for c := range expected {
		if _, ok := seen[c]; !ok {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	var drift []domain.BalanceDrift
	for _, c := range categories {
		s, e := seen[c], expected[c]
		if !s.Equal(e) {
			drift = append(drift, domain.BalanceDrift{Category: c, Stored: s, Expected: e})
		}
	}
	return drift
}

// LockOrder deduplicates balance keys and sorts them so that every transaction
// acquires balance row locks in the same order.
func LockOrder(keys ...domain.BalanceKey) []domain.BalanceKey {
	uniq := make(map[domain.BalanceKey]struct{}, len(keys))
	out := make([]domain.BalanceKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := uniq[k]; ok {
			continue
		}
		uniq[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartmentID != out[j].DepartmentID {
			return out[i].DepartmentID < out[j].DepartmentID
		}
		return out[i].Category < out[j].Category
	})
	return out
}
