package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
	"github.com/famoney/famoney-api/repository"
)

type LedgerService struct {
	store repository.Store
	locks *LedgerLocks
}

func NewLedgerService(store repository.Store, locks *LedgerLocks) *LedgerService {
	return &LedgerService{store: store, locks: locks}
}

// Create persists a ledger and its OWNER membership as one atomic unit.
func (s *LedgerService) Create(ctx context.Context, actorID string, req models.CreateLedgerRequest) (*models.LedgerResponse, error) {
	if err := models.ValidateLedgerName(req.Name); err != nil {
		return nil, err
	}
	if err := models.ValidateLedgerDescription(req.Description); err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, apperr.Validation("currency", "currency must be a 3-letter code")
	}

	now := time.Now()
	ledger := &models.Ledger{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Currency:    currency,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner := &models.Member{
		ID:       uuid.New().String(),
		LedgerID: ledger.ID,
		UserID:   actorID,
		Role:     policy.RoleOwner,
		JoinedAt: now,
	}

	if err := s.store.Ledgers().Create(ctx, ledger, owner); err != nil {
		return nil, err
	}

	log.Printf("✅ Created ledger %s with owner %s", ledger.ID, actorID)
	return &models.LedgerResponse{Ledger: *ledger, MemberCount: 1, MyRole: policy.RoleOwner}, nil
}

// Get returns a single ledger, visible to members only.
func (s *LedgerService) Get(ctx context.Context, actorID, ledgerID string) (*models.LedgerResponse, error) {
	ledger, err := s.store.Ledgers().GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, apperr.NotFound("ledger")
	}

	member, err := s.store.Members().Get(ctx, ledgerID, actorID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "you are not a member of this ledger"}
	}

	count, err := s.store.Members().CountByLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	return &models.LedgerResponse{Ledger: *ledger, MemberCount: count, MyRole: member.Role}, nil
}

// ListForUser returns every ledger the user belongs to, each annotated with
// the caller's role — a view-time join, never stored on the ledger.
func (s *LedgerService) ListForUser(ctx context.Context, userID string) ([]models.LedgerResponse, error) {
	ids, err := s.store.Members().ListLedgerIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.LedgerResponse, 0, len(ids))
	for _, id := range ids {
		ledger, err := s.store.Ledgers().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ledger == nil {
			continue
		}
		member, err := s.store.Members().Get(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			continue
		}
		count, err := s.store.Members().CountByLedger(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, models.LedgerResponse{Ledger: *ledger, MemberCount: count, MyRole: member.Role})
	}
	return out, nil
}

// Update patches name and/or description. OWNER and ADMIN only.
func (s *LedgerService) Update(ctx context.Context, actorID, ledgerID string, req models.UpdateLedgerRequest) (*models.LedgerResponse, error) {
	ledger, err := s.store.Ledgers().GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, apperr.NotFound("ledger")
	}

	member, err := s.store.Members().Get(ctx, ledgerID, actorID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "you are not a member of this ledger"}
	}
	if !policy.CanPerform(member.Role, policy.ActionUpdateLedger, "") {
		return nil, apperr.PermissionDenied(string(policy.ActionUpdateLedger), string(member.Role), "")
	}

	if req.Name != nil {
		if err := models.ValidateLedgerName(*req.Name); err != nil {
			return nil, err
		}
		ledger.Name = *req.Name
	}
	if req.Description != nil {
		if err := models.ValidateLedgerDescription(*req.Description); err != nil {
			return nil, err
		}
		ledger.Description = *req.Description
	}
	ledger.UpdatedAt = time.Now()

	if err := s.store.Ledgers().Update(ctx, ledger); err != nil {
		return nil, err
	}

	count, err := s.store.Members().CountByLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	return &models.LedgerResponse{Ledger: *ledger, MemberCount: count, MyRole: member.Role}, nil
}

// Delete removes the ledger with all memberships, invitations, expenses and
// custom categories in one atomic cascade. OWNER only.
func (s *LedgerService) Delete(ctx context.Context, actorID, ledgerID string) error {
	unlock := s.locks.Lock(ledgerID)
	defer unlock()

	ledger, err := s.store.Ledgers().GetByID(ctx, ledgerID)
	if err != nil {
		return err
	}
	if ledger == nil {
		return apperr.NotFound("ledger")
	}

	member, err := s.store.Members().Get(ctx, ledgerID, actorID)
	if err != nil {
		return err
	}
	if member == nil {
		return &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "you are not a member of this ledger"}
	}
	if !policy.CanPerform(member.Role, policy.ActionDeleteLedger, "") {
		return apperr.PermissionDenied(string(policy.ActionDeleteLedger), string(member.Role), "")
	}

	if err := s.store.Ledgers().DeleteCascade(ctx, ledgerID); err != nil {
		return err
	}
	s.locks.Forget(ledgerID)

	log.Printf("✅ Deleted ledger %s", ledgerID)
	return nil
}
