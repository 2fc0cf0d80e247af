package ledger_test

import (
	"testing"

	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDebitClampsAtZero(t *testing.T) {
	assert.True(t, dec("40").Equal(ledger.Debit(dec("100"), dec("60"))))
	assert.True(t, decimal.Zero.Equal(ledger.Debit(dec("100"), dec("100"))))
	assert.True(t, decimal.Zero.Equal(ledger.Debit(dec("100"), dec("250.50"))))
	assert.False(t, ledger.Debit(decimal.Zero, dec("1")).IsNegative())
}

func TestCredit(t *testing.T) {
	assert.True(t, dec("100.25").Equal(ledger.Credit(dec("100"), dec("0.25"))))
}

func TestRecomputeOnlyCountsApproved(t *testing.T) {
	requests := []domain.BudgetRequest{
		{Category: "Travel", Amount: dec("100"), Status: domain.RequestApproved},
		{Category: "Travel", Amount: dec("50.50"), Status: domain.RequestApproved},
		{Category: "Travel", Amount: dec("999"), Status: domain.RequestPending},
		{Category: "Equipment", Amount: dec("300"), Status: domain.RequestApproved},
		{Category: "Training", Amount: dec("70"), Status: domain.RequestRejected},
	}

	sums := ledger.Recompute(requests)

	require.Len(t, sums, 2)
	assert.True(t, dec("150.50").Equal(sums["Travel"]))
	assert.True(t, dec("300").Equal(sums["Equipment"]))
	_, ok := sums["Training"]
	assert.False(t, ok, "categories with no approved requests must be absent")
}

func TestRecomputeEmpty(t *testing.T) {
	assert.Empty(t, ledger.Recompute(nil))
}

func TestDrift(t *testing.T) {
	stored := []domain.CategoryBalance{
		{Category: "A", Amount: dec("100")},
		{Category: "B", Amount: dec("0")},
		{Category: "C", Amount: dec("40")},
	}
	expected := map[string]decimal.Decimal{
		"A": dec("100"),
		"C": dec("90"),
		"D": dec("10"),
	}

	drift := ledger.Drift(stored, expected)

	require.Len(t, drift, 2)
	assert.Equal(t, "C", drift[0].Category)
	assert.True(t, dec("50").Equal(drift[0].Delta()))
	assert.Equal(t, "D", drift[1].Category)
	assert.True(t, drift[1].Stored.IsZero())
	assert.True(t, dec("10").Equal(drift[1].Expected))
}

func TestDriftZeroRowMatchesMissingSum(t *testing.T) {
	stored := []domain.CategoryBalance{{Category: "B", Amount: decimal.Zero}}
	assert.Empty(t, ledger.Drift(stored, map[string]decimal.Decimal{}))
}

func TestLockOrder(t *testing.T) {
	keys := ledger.LockOrder(
		domain.BalanceKey{DepartmentID: "d1", Category: "Travel"},
		domain.BalanceKey{DepartmentID: "d1", Category: "Equipment"},
		domain.BalanceKey{DepartmentID: "d1", Category: "Travel"},
	)
	assert.Equal(t, []domain.BalanceKey{
		{DepartmentID: "d1", Category: "Equipment"},
		{DepartmentID: "d1", Category: "Travel"},
	}, keys)
}
