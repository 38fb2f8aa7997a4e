package models

import (
	"strings"
	"time"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/policy"
)

const DefaultCurrency = "KRW"

type Ledger struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Currency    string    `json:"currency"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LedgerResponse annotates a ledger with the caller's own role, derived at
// read time from the membership registry.
type LedgerResponse struct {
	Ledger
	MemberCount int         `json:"member_count"`
	MyRole      policy.Role `json:"my_role"`
}

type CreateLedgerRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
}

type UpdateLedgerRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ValidateLedgerName enforces the 1-100 character name constraint.
func ValidateLedgerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("name", "name is required")
	}
	if len([]rune(name)) > 100 {
		return apperr.Validation("name", "name must be at most 100 characters")
	}
	return nil
}

// ValidateLedgerDescription enforces the 500 character description limit.
func ValidateLedgerDescription(description string) error {
	if len([]rune(description)) > 500 {
		return apperr.Validation("description", "description must be at most 500 characters")
	}
	return nil
}
