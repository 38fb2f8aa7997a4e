package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/famoney/famoney-api/models"
)

func TestChangePercent(t *testing.T) {
	tests := []struct {
		cur, prior int64
		want       float64
	}{
		{100, 0, 0},
		{0, 0, 0},
		{150, 100, 50},
		{50, 100, -50},
		{100, 100, 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ChangePercent(tt.cur, tt.prior))
	}
}

func TestSumByMonthZeroFills(t *testing.T) {
	aug := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	expenses := []models.Expense{
		{Amount: 1000, ExpenseDate: time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC)},
		{Amount: 500, ExpenseDate: time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)},
		{Amount: 700, ExpenseDate: time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC)},
	}

	trend := SumByMonth(expenses, aug, 4)
	require.Len(t, trend, 4)
	require.Equal(t, MonthSum{Month: "2026-05", Total: 0}, trend[0])
	require.Equal(t, MonthSum{Month: "2026-06", Total: 700}, trend[1])
	require.Equal(t, MonthSum{Month: "2026-07", Total: 0}, trend[2])
	require.Equal(t, MonthSum{Month: "2026-08", Total: 1500}, trend[3])
}

func TestStatsSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	cat, err := env.cats.Create(ctx, owner.ID, ledger.ID, models.CreateCategoryRequest{Name: "외식"})
	require.NoError(t, err)

	env.createExpense(t, owner.ID, ledger.ID, 10000, "july spend", "2026-07-10")
	env.createExpense(t, owner.ID, ledger.ID, 9000, "uncategorized", "2026-08-05")
	_, err = env.exps.Create(ctx, owner.ID, ledger.ID, models.CreateExpenseRequest{
		Amount: 6000, Description: "tagged", ExpenseDate: "2026-08-12", CategoryID: cat.ID,
	})
	require.NoError(t, err)

	month := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	summary, err := env.stats.Summary(ctx, owner.ID, ledger.ID, month, 3)
	require.NoError(t, err)

	require.Equal(t, int64(15000), summary.MonthTotal)
	require.Equal(t, int64(10000), summary.PrevTotal)
	require.Equal(t, float64(50), summary.ChangePercent)

	require.Len(t, summary.ByCategory, 2)
	// Largest total first: the uncategorized 9000, then the tagged 6000.
	require.Equal(t, int64(9000), summary.ByCategory[0].Total)
	require.Empty(t, summary.ByCategory[0].CategoryID)
	require.Equal(t, cat.ID, summary.ByCategory[1].CategoryID)
	require.Equal(t, "외식", summary.ByCategory[1].CategoryName)

	require.Len(t, summary.Trend, 3)
	require.Equal(t, MonthSum{Month: "2026-06", Total: 0}, summary.Trend[0])
	require.Equal(t, MonthSum{Month: "2026-07", Total: 10000}, summary.Trend[1])
	require.Equal(t, MonthSum{Month: "2026-08", Total: 15000}, summary.Trend[2])
}

func TestStatsSummaryMembersOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Owner")
	outsider := env.createUser(t, "out@example.com", "Out")
	ledger := env.createLedger(t, owner.ID, "Budget")

	_, err := env.stats.Summary(context.Background(), outsider.ID, ledger.ID, time.Now(), 6)
	require.Error(t, err)
}
