package models

import (
	"time"

	"github.com/famoney/famoney-api/policy"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

type Invitation struct {
	ID        string      `json:"id"`
	LedgerID  string      `json:"ledger_id"`
	Email     string      `json:"email"`
	Role      policy.Role `json:"role"`
	InvitedBy string      `json:"invited_by"`
	Token     string      `json:"token"`
	Status    string      `json:"status"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}
