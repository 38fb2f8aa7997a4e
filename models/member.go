package models

import (
	"time"

	"github.com/famoney/famoney-api/policy"
)

// Member binds a user to a ledger with a role. A (user, ledger) pair has at
// most one membership, and every ledger has exactly one OWNER.
type Member struct {
	ID        string      `json:"id"`
	LedgerID  string      `json:"ledger_id"`
	UserID    string      `json:"user_id"`
	Role      policy.Role `json:"role"`
	InvitedBy string      `json:"invited_by,omitempty"`
	JoinedAt  time.Time   `json:"joined_at"`
}

// MemberResponse is a member joined with its user for listing.
type MemberResponse struct {
	Member
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type InviteMemberRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Role  policy.Role `json:"role" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	Role policy.Role `json:"role" binding:"required"`
}
