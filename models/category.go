package models

import "time"

// Category is an expense tag. Default categories are system-wide seed data
// (LedgerID empty) shared by every ledger and never deletable; custom
// categories belong to exactly one ledger.
type Category struct {
	ID        string    `json:"id"`
	LedgerID  string    `json:"ledger_id,omitempty"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// VisibleTo reports whether the category may be attached to expenses of the
// given ledger.
func (c Category) VisibleTo(ledgerID string) bool {
	return c.IsDefault || c.LedgerID == ledgerID
}

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// DefaultCategories is the system-wide seed set shared by all ledgers.
func DefaultCategories() []Category {
	names := []struct {
		name  string
		color string
	}{
		{"식비", "#ef4444"},
		{"교통비", "#3b82f6"},
		{"생활용품", "#10b981"},
		{"공과금", "#f59e0b"},
		{"의료비", "#ec4899"},
		{"문화/여가", "#8b5cf6"},
		{"기타", "#6b7280"},
	}
	categories := make([]Category, 0, len(names))
	for _, n := range names {
		categories = append(categories, Category{
			Name:      n.name,
			Color:     n.color,
			IsDefault: true,
		})
	}
	return categories
}
