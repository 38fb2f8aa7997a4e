package models

import (
	"strings"
	"time"

	"github.com/famoney/famoney-api/apperr"
)

// DateLayout is the calendar-date wire format for expense dates.
const DateLayout = "2006-01-02"

const (
	PaymentCard  = "card"
	PaymentCash  = "cash"
	PaymentBank  = "bank"
	PaymentOther = "other"
)

// Expense is a single spending record. Amount is an integer in the ledger
// currency's minor unit; no scaling happens anywhere in the core.
type Expense struct {
	ID            string    `json:"id"`
	LedgerID      string    `json:"ledger_id"`
	CategoryID    string    `json:"category_id,omitempty"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description"`
	ExpenseDate   time.Time `json:"-"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ExpenseResponse joins an expense with its category and creator. A dangling
// category reference renders as a null category, never a read failure.
type ExpenseResponse struct {
	Expense
	ExpenseDate   string    `json:"expense_date"`
	Category      *Category `json:"category"`
	CreatedByName string    `json:"created_by_name"`
}

type CreateExpenseRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	Description   string `json:"description" binding:"required"`
	ExpenseDate   string `json:"expense_date" binding:"required"`
	CategoryID    string `json:"category_id"`
	PaymentMethod string `json:"payment_method"`
}

type UpdateExpenseRequest struct {
	Amount        *int64  `json:"amount,omitempty"`
	Description   *string `json:"description,omitempty"`
	ExpenseDate   *string `json:"expense_date,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
}

// ExpenseFilter restricts a listing; all set fields apply conjunctively
// before pagination.
type ExpenseFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
}

func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return apperr.Validation("amount", "amount must be greater than zero")
	}
	return nil
}

func ValidateExpenseDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return apperr.Validation("description", "description is required")
	}
	if len([]rune(description)) > 255 {
		return apperr.Validation("description", "description must be at most 255 characters")
	}
	return nil
}

// ParseExpenseDate parses a YYYY-MM-DD calendar date.
func ParseExpenseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation("expense_date", "expense_date must be a valid YYYY-MM-DD date")
	}
	return d, nil
}

func ValidatePaymentMethod(method string) error {
	switch method {
	case "", PaymentCard, PaymentCash, PaymentBank, PaymentOther:
		return nil
	}
	return apperr.Validation("payment_method", "payment_method must be one of card, cash, bank, other")
}
