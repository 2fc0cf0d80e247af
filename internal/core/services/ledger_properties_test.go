package services_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/domain"
	portssvc "github.com/shukrishariff-oms/pms-istmo/internal/core/ports/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/core/services"
	"github.com/shukrishariff-oms/pms-istmo/internal/repositories/memory"
	"github.com/shukrishariff-oms/pms-istmo/internal/utils/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propDept = "dept-fin"

func newLedgerFixture(t *testing.T) (portssvc.BudgetSvcFacade, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddDepartment(domain.Department{DepartmentID: propDept, Name: "Finance", Code: "FIN"})
	return services.NewBudgetService(store, store), store
}

func submitApproved(t *testing.T, svc portssvc.BudgetSvcFacade, category string, amount int64) *domain.BudgetRequest {
	t.Helper()
	ctx := context.Background()
	req, err := svc.Submit(ctx, domain.SubmitBudgetRequest{
		DepartmentID: propDept,
		RequesterID:  "staff-1",
		Title:        category + " allocation",
		Category:     category,
		Amount:       decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Approve(ctx, req.RequestID, "finance-1"))
	return req
}

func balanceOf(t *testing.T, svc portssvc.BudgetSvcFacade, category string) decimal.Decimal {
	t.Helper()
	budget, err := svc.ListBalances(context.Background(), propDept)
	require.NoError(t, err)
	for _, b := range budget.Balances {
		if b.Category == category {
			return b.Amount
		}
	}
	return decimal.Zero
}

func totalOf(t *testing.T, svc portssvc.BudgetSvcFacade) decimal.Decimal {
	t.Helper()
	budget, err := svc.ListBalances(context.Background(), propDept)
	require.NoError(t, err)
	return budget.Total
}

func TestEditConservation(t *testing.T) {
	svc, _ := newLedgerFixture(t)
	ctx := context.Background()

	submitApproved(t, svc, "A", 2500)
	submitApproved(t, svc, "B", 300)
	oldA, oldB := balanceOf(t, svc, "A"), balanceOf(t, svc, "B")
	req := submitApproved(t, svc, "A", 1000)
	before := totalOf(t, svc)

	_, err := svc.Edit(ctx, req.RequestID, domain.EditBudgetRequest{
		Title:          "moved",
		Category:       "B",
		Amount:         decimal.NewFromInt(600),
		AllowProcessed: true,
	})
	require.NoError(t, err)

	assert.True(t, ledger.Debit(oldA.Add(decimal.NewFromInt(1000)), decimal.NewFromInt(1000)).Equal(balanceOf(t, svc, "A")))
	assert.True(t, oldB.Add(decimal.NewFromInt(600)).Equal(balanceOf(t, svc, "B")))
	assert.True(t, totalOf(t, svc).Sub(before).Equal(decimal.NewFromInt(-400)))
}

func TestDeleteReversal(t *testing.T) {
	svc, _ := newLedgerFixture(t)
	ctx := context.Background()

	req := submitApproved(t, svc, "X", 500)
	assert.True(t, decimal.NewFromInt(500).Equal(balanceOf(t, svc, "X")))

	require.NoError(t, svc.Delete(ctx, req.RequestID))
	x := balanceOf(t, svc, "X")
	assert.True(t, x.IsZero())
	assert.False(t, x.IsNegative())

	_, err := svc.GetRequest(ctx, req.RequestID)
	assert.Error(t, err)
}

func TestDoubleReversalClamps(t *testing.T) {
	svc, store := newLedgerFixture(t)
	ctx := context.Background()

	first := submitApproved(t, svc, "Y", 100)
	second := submitApproved(t, svc, "Y", 100)
	// Simulate drift: the view only holds one of the two credits.
	store.SetBalance(domain.CategoryBalance{DepartmentID: propDept, Category: "Y", Amount: decimal.NewFromInt(100)})

	require.NoError(t, svc.Delete(ctx, first.RequestID))
	require.NoError(t, svc.Delete(ctx, second.RequestID))

	y := balanceOf(t, svc, "Y")
	assert.True(t, y.IsZero(), "balance must clamp at zero, got %s", y)
}

func TestReconcileRepairsDrift(t *testing.T) {
	svc, store := newLedgerFixture(t)
	ctx := context.Background()

	submitApproved(t, svc, "A", 100)
	submitApproved(t, svc, "A", 40)
	store.SetBalance(domain.CategoryBalance{DepartmentID: propDept, Category: "A", Amount: decimal.NewFromInt(7)})
	store.SetBalance(domain.CategoryBalance{DepartmentID: propDept, Category: "Ghost", Amount: decimal.NewFromInt(9)})

	drift, err := svc.CheckDrift(ctx, propDept)
	require.NoError(t, err)
	assert.Len(t, drift, 2)

	sums, err := svc.Reconcile(ctx, propDept)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(140).Equal(sums["A"]))

	drift, err = svc.CheckDrift(ctx, propDept)
	require.NoError(t, err)
	assert.Empty(t, drift)

	ghost, err := svc.GetBalance(ctx, propDept, "Ghost")
	require.NoError(t, err, "categories with no approved requests are kept at zero")
	assert.True(t, ghost.Amount.IsZero())
	assert.True(t, decimal.NewFromInt(140).Equal(totalOf(t, svc)))
}

// TestReconcileIdempotence drives a random sequence of journal operations and checks that
// reconciling twice yields identical balances equal to the sum over approved requests.
func TestReconcileIdempotence(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			svc, _ := newLedgerFixture(t)
			ctx := context.Background()
			rng := rand.New(rand.NewSource(seed))
			categories := []string{"A", "B", "C"}
			var ids []string

			for i := 0; i < 60; i++ {
				switch op := rng.Intn(5); {
				case op == 0 || len(ids) == 0:
					req, err := svc.Submit(ctx, domain.SubmitBudgetRequest{
						DepartmentID: propDept,
						Category:     categories[rng.Intn(len(categories))],
						Amount:       decimal.NewFromInt(int64(rng.Intn(1000) + 1)),
					})
					require.NoError(t, err)
					ids = append(ids, req.RequestID)
				case op == 1:
					_ = svc.Approve(ctx, ids[rng.Intn(len(ids))], "finance-1")
				case op == 2:
					_ = svc.Reject(ctx, ids[rng.Intn(len(ids))], "finance-1")
				case op == 3:
					_, _ = svc.Edit(ctx, ids[rng.Intn(len(ids))], domain.EditBudgetRequest{
						Category:       categories[rng.Intn(len(categories))],
						Amount:         decimal.NewFromInt(int64(rng.Intn(1000) + 1)),
						AllowProcessed: true,
					})
				case op == 4:
					idx := rng.Intn(len(ids))
					require.NoError(t, svc.Delete(ctx, ids[idx]))
					ids = append(ids[:idx], ids[idx+1:]...)
				}
			}

			first, err := svc.Reconcile(ctx, propDept)
			require.NoError(t, err)
			second, err := svc.Reconcile(ctx, propDept)
			require.NoError(t, err)

			all, err := svc.ListRequests(ctx, propDept, nil)
			require.NoError(t, err)
			expected := ledger.Recompute(all)

			require.Equal(t, len(expected), len(first))
			require.Equal(t, len(first), len(second))
			for c, want := range expected {
				assert.True(t, want.Equal(first[c]), "category %s", c)
				assert.True(t, want.Equal(second[c]), "category %s", c)
			}

			drift, err := svc.CheckDrift(ctx, propDept)
			require.NoError(t, err)
			assert.Empty(t, drift)
		})
	}
}

// Without drift, every journal operation keeps the view equal to the recomputation.
func TestViewTracksJournalWithoutDrift(t *testing.T) {
	svc, _ := newLedgerFixture(t)
	ctx := context.Background()

	a := submitApproved(t, svc, "A", 100)
	b := submitApproved(t, svc, "B", 200)
	_, err := svc.Edit(ctx, a.RequestID, domain.EditBudgetRequest{Category: "B", Amount: decimal.NewFromInt(50), AllowProcessed: true})
	require.NoError(t, err)
	_, err = svc.Edit(ctx, b.RequestID, domain.EditBudgetRequest{Category: "B", Amount: decimal.NewFromInt(20), AllowProcessed: true})
	require.NoError(t, err)

	drift, err := svc.CheckDrift(ctx, propDept)
	require.NoError(t, err)
	assert.Empty(t, drift)
	assert.True(t, decimal.NewFromInt(70).Equal(balanceOf(t, svc, "B")))
	assert.True(t, balanceOf(t, svc, "A").IsZero())
}
