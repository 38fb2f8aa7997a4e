package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
)

func TestViewerCannotWriteExpenses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	viewer := env.createUser(t, "viewer@example.com", "Viewer")
	ledger := env.createLedger(t, owner.ID, "Budget")
	env.addMember(t, ledger.ID, viewer.ID, policy.RoleViewer)

	_, err := env.exps.Create(ctx, viewer.ID, ledger.ID, models.CreateExpenseRequest{
		Amount: 1000, Description: "snack", ExpenseDate: "2026-08-01",
	})
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	expense := env.createExpense(t, owner.ID, ledger.ID, 1000, "snack", "2026-08-01")

	amount := int64(2000)
	_, err = env.exps.Update(ctx, viewer.ID, ledger.ID, expense.ID, models.UpdateExpenseRequest{Amount: &amount})
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	require.Equal(t, apperr.KindPermissionDenied,
		apperr.KindOf(env.exps.Delete(ctx, viewer.ID, ledger.ID, expense.ID)))

	// But the viewer can read.
	_, err = env.exps.Get(ctx, viewer.ID, ledger.ID, expense.ID)
	require.NoError(t, err)
}

func TestMemberEditsAnyExpense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	member := env.createUser(t, "member@example.com", "Member")
	ledger := env.createLedger(t, owner.ID, "Budget")
	env.addMember(t, ledger.ID, member.ID, policy.RoleMember)

	expense := env.createExpense(t, owner.ID, ledger.ID, 9000, "dinner", "2026-08-03")

	// Authorship does not matter, only the role does.
	desc := "team dinner"
	updated, err := env.exps.Update(ctx, member.ID, ledger.ID, expense.ID, models.UpdateExpenseRequest{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "team dinner", updated.Description)
	require.Equal(t, owner.ID, updated.CreatedBy)

	require.NoError(t, env.exps.Delete(ctx, member.ID, ledger.ID, expense.ID))
}

func TestExpenseValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	tests := []struct {
		name string
		req  models.CreateExpenseRequest
	}{
		{"zero amount", models.CreateExpenseRequest{Amount: 0, Description: "x", ExpenseDate: "2026-08-01"}},
		{"negative amount", models.CreateExpenseRequest{Amount: -500, Description: "x", ExpenseDate: "2026-08-01"}},
		{"blank description", models.CreateExpenseRequest{Amount: 100, Description: "  ", ExpenseDate: "2026-08-01"}},
		{"bad date", models.CreateExpenseRequest{Amount: 100, Description: "x", ExpenseDate: "01/08/2026"}},
		{"bad payment method", models.CreateExpenseRequest{Amount: 100, Description: "x", ExpenseDate: "2026-08-01", PaymentMethod: "crypto"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.exps.Create(ctx, owner.ID, ledger.ID, tt.req)
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestExpenseCategoryVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledgerA := env.createLedger(t, owner.ID, "A")
	ledgerB := env.createLedger(t, owner.ID, "B")

	catB, err := env.cats.Create(ctx, owner.ID, ledgerB.ID, models.CreateCategoryRequest{Name: "여행"})
	require.NoError(t, err)

	// Another ledger's custom category is invisible.
	_, err = env.exps.Create(ctx, owner.ID, ledgerA.ID, models.CreateExpenseRequest{
		Amount: 100, Description: "x", ExpenseDate: "2026-08-01", CategoryID: catB.ID,
	})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// A default category works everywhere.
	cats, err := env.cats.ListVisible(ctx, owner.ID, ledgerA.ID)
	require.NoError(t, err)
	require.NotEmpty(t, cats)
	resp, err := env.exps.Create(ctx, owner.ID, ledgerA.ID, models.CreateExpenseRequest{
		Amount: 100, Description: "x", ExpenseDate: "2026-08-01", CategoryID: cats[0].ID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Category)
	require.Equal(t, cats[0].Name, resp.Category.Name)
}

func TestExpenseListOrderAndPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	for i := 0; i < 45; i++ {
		day := i%28 + 1
		env.createExpense(t, owner.ID, ledger.ID, int64(1000+i), fmt.Sprintf("item %d", i),
			fmt.Sprintf("2026-08-%02d", day))
	}

	page0, err := env.exps.List(ctx, owner.ID, ledger.ID, models.ExpenseFilter{}, 0, 20)
	require.NoError(t, err)
	require.Equal(t, int64(45), page0.TotalElements)
	require.Equal(t, 3, page0.TotalPages)
	require.True(t, page0.First)
	require.False(t, page0.Last)
	require.Len(t, page0.Content, 20)

	// Newest expense dates first.
	for i := 1; i < len(page0.Content); i++ {
		require.GreaterOrEqual(t, page0.Content[i-1].ExpenseDate, page0.Content[i].ExpenseDate)
	}

	page2, err := env.exps.List(ctx, owner.ID, ledger.ID, models.ExpenseFilter{}, 2, 20)
	require.NoError(t, err)
	require.True(t, page2.Last)
	require.Len(t, page2.Content, 5)
}

func TestExpenseListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	cat, err := env.cats.Create(ctx, owner.ID, ledger.ID, models.CreateCategoryRequest{Name: "외식"})
	require.NoError(t, err)

	env.createExpense(t, owner.ID, ledger.ID, 1000, "july", "2026-07-15")
	env.createExpense(t, owner.ID, ledger.ID, 2000, "august", "2026-08-15")
	_, err = env.exps.Create(ctx, owner.ID, ledger.ID, models.CreateExpenseRequest{
		Amount: 3000, Description: "tagged", ExpenseDate: "2026-08-20", CategoryID: cat.ID,
	})
	require.NoError(t, err)

	start, _ := models.ParseExpenseDate("2026-08-01")
	end, _ := models.ParseExpenseDate("2026-08-31")
	page, err := env.exps.List(ctx, owner.ID, ledger.ID, models.ExpenseFilter{StartDate: &start, EndDate: &end}, 0, 20)
	require.NoError(t, err)
	require.Equal(t, int64(2), page.TotalElements)

	page, err = env.exps.List(ctx, owner.ID, ledger.ID, models.ExpenseFilter{CategoryID: cat.ID}, 0, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalElements)
	require.Equal(t, "tagged", page.Content[0].Description)
}

func TestDeleteUnknownExpense(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	err := env.exps.Delete(context.Background(), owner.ID, ledger.ID, "missing")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDanglingCategoryRendersUncategorized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	cat, err := env.cats.Create(ctx, owner.ID, ledger.ID, models.CreateCategoryRequest{Name: "잡비"})
	require.NoError(t, err)

	created, err := env.exps.Create(ctx, owner.ID, ledger.ID, models.CreateExpenseRequest{
		Amount: 700, Description: "tape", ExpenseDate: "2026-08-05", CategoryID: cat.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Category)

	require.NoError(t, env.cats.Delete(ctx, owner.ID, ledger.ID, cat.ID))

	got, err := env.exps.Get(ctx, owner.ID, ledger.ID, created.ID)
	require.NoError(t, err)
	require.Nil(t, got.Category)
}
