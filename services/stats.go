package services

import (
	"context"
	"sort"
	"time"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/repository"
)

const monthLayout = "2006-01"

// CategorySum is one slice of the per-category breakdown. Expenses whose
// category was deleted land in the unnamed (uncategorized) bucket.
type CategorySum struct {
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name"`
	Color        string `json:"color,omitempty"`
	Total        int64  `json:"total"`
	Count        int    `json:"count"`
}

// MonthSum is one month of the trend line, zero-filled for empty months.
type MonthSum struct {
	Month string `json:"month"` // YYYY-MM
	Total int64  `json:"total"`
}

type StatsSummary struct {
	MonthTotal    int64         `json:"month_total"`
	PrevTotal     int64         `json:"prev_total"`
	ChangePercent float64       `json:"change_percent"`
	ByCategory    []CategorySum `json:"by_category"`
	Trend         []MonthSum    `json:"trend"`
}

type StatsService struct {
	store repository.Store
}

func NewStatsService(store repository.Store) *StatsService {
	return &StatsService{store: store}
}

// Summary aggregates the ledger around a reference month: that month's
// per-category breakdown, its total against the prior month, and the trend
// over the trailing months window.
func (s *StatsService) Summary(ctx context.Context, actorID, ledgerID string, month time.Time, trendMonths int) (*StatsSummary, error) {
	member, err := s.store.Members().Get(ctx, ledgerID, actorID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "you are not a member of this ledger"}
	}

	if trendMonths <= 0 {
		trendMonths = 6
	}

	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	trendStart := monthStart.AddDate(0, -(trendMonths - 1), 0)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	// The window always reaches the prior month for the change percent.
	fetchStart := trendStart
	if prev := monthStart.AddDate(0, -1, 0); prev.Before(fetchStart) {
		fetchStart = prev
	}

	expenses, err := s.store.Expenses().ListAll(ctx, ledgerID, models.ExpenseFilter{
		StartDate: &fetchStart,
		EndDate:   &monthEnd,
	})
	if err != nil {
		return nil, err
	}

	var current []models.Expense
	prevMonth := monthStart.AddDate(0, -1, 0)
	var prevTotal int64
	for _, e := range expenses {
		switch monthOf(e.ExpenseDate) {
		case monthStart:
			current = append(current, e)
		case prevMonth:
			prevTotal += e.Amount
		}
	}

	byCategory, err := s.sumByCategory(ctx, ledgerID, current)
	if err != nil {
		return nil, err
	}

	var monthTotal int64
	for _, e := range current {
		monthTotal += e.Amount
	}

	return &StatsSummary{
		MonthTotal:    monthTotal,
		PrevTotal:     prevTotal,
		ChangePercent: ChangePercent(monthTotal, prevTotal),
		ByCategory:    byCategory,
		Trend:         SumByMonth(expenses, monthStart, trendMonths),
	}, nil
}

// ChangePercent returns the relative change of cur over prior in percent.
// A zero prior yields exactly 0, never a division blow-up.
func ChangePercent(cur, prior int64) float64 {
	if prior <= 0 {
		return 0
	}
	return float64(cur-prior) / float64(prior) * 100
}

// SumByMonth buckets expenses into the trailing months window ending at the
// given month, zero-filling months with no spending.
func SumByMonth(expenses []models.Expense, endMonth time.Time, months int) []MonthSum {
	end := time.Date(endMonth.Year(), endMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	totals := make(map[time.Time]int64, months)
	for _, e := range expenses {
		totals[monthOf(e.ExpenseDate)] += e.Amount
	}

	out := make([]MonthSum, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := end.AddDate(0, -i, 0)
		out = append(out, MonthSum{Month: m.Format(monthLayout), Total: totals[m]})
	}
	return out
}

// sumByCategory groups the expenses by resolved category, largest total
// first. Dangling references collapse into one uncategorized bucket.
func (s *StatsService) sumByCategory(ctx context.Context, ledgerID string, expenses []models.Expense) ([]CategorySum, error) {
	categories, err := s.store.Categories().ListForLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		known[c.ID] = c
	}

	sums := make(map[string]*CategorySum)
	for _, e := range expenses {
		key := ""
		if _, ok := known[e.CategoryID]; ok {
			key = e.CategoryID
		}
		sum, ok := sums[key]
		if !ok {
			sum = &CategorySum{CategoryID: key, CategoryName: "미분류"}
			if c, ok := known[key]; ok {
				sum.CategoryName = c.Name
				sum.Color = c.Color
			}
			sums[key] = sum
		}
		sum.Total += e.Amount
		sum.Count++
	}

	out := make([]CategorySum, 0, len(sums))
	for _, sum := range sums {
		out = append(out, *sum)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
