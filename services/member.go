package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
	"github.com/famoney/famoney-api/repository"
	"github.com/famoney/famoney-api/utils"
)

const invitationTTL = 7 * 24 * time.Hour

// MemberService is the membership registry: it owns every mutation of the
// (ledger, user, role) set and consults the role policy for each one.
type MemberService struct {
	store repository.Store
	locks *LedgerLocks
}

func NewMemberService(store repository.Store, locks *LedgerLocks) *MemberService {
	return &MemberService{store: store, locks: locks}
}

// RoleOf resolves a user's current role in a ledger.
func (s *MemberService) RoleOf(ctx context.Context, ledgerID, userID string) (policy.Role, error) {
	member, err := s.store.Members().Get(ctx, ledgerID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", apperr.NotFound("membership")
	}
	return member.Role, nil
}

// List returns the ledger's members sorted by role rank (OWNER first), then
// by display name within the same role.
func (s *MemberService) List(ctx context.Context, actorID, ledgerID string) ([]models.MemberResponse, error) {
	if err := s.verifyLedgerExists(ctx, ledgerID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, ledgerID, actorID); err != nil {
		return nil, err
	}

	members, err := s.store.Members().ListByLedger(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.MemberResponse, 0, len(members))
	for _, m := range members {
		resp := models.MemberResponse{Member: m, Name: "Unknown"}
		user, err := s.store.Users().GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			resp.Name = user.Name
			resp.Email = user.Email
			resp.Avatar = user.Avatar
		}
		out = append(out, resp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Role.Rank() != out[j].Role.Rank() {
			return out[i].Role.Rank() < out[j].Role.Rank()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Invite creates a pending invitation carrying the requested role. The
// invited role may never be OWNER, and an email that already belongs to a
// member (or holds a live invitation) is rejected.
func (s *MemberService) Invite(ctx context.Context, actorID, ledgerID, email string, role policy.Role) (*models.Invitation, error) {
	unlock := s.locks.Lock(ledgerID)
	defer unlock()

	ledger, err := s.store.Ledgers().GetByID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, apperr.NotFound("ledger")
	}

	actor, err := s.requireMember(ctx, ledgerID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(actor.Role, policy.ActionInviteMember, "") {
		return nil, apperr.PermissionDenied(string(policy.ActionInviteMember), string(actor.Role), "")
	}
	if !policy.AssignableRole(role) {
		return nil, apperr.Validation("role", "role must be one of ADMIN, MEMBER, VIEWER")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		existing, err := s.store.Members().Get(ctx, ledgerID, user.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperr.AlreadyExists("user is already a member of this ledger")
		}
	}

	pending, err := s.store.Invitations().HasPending(ctx, ledgerID, email, time.Now())
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.AlreadyExists("invitation already sent")
	}

	invitation := &models.Invitation{
		ID:        uuid.New().String(),
		LedgerID:  ledgerID,
		Email:     email,
		Role:      role,
		InvitedBy: actorID,
		Token:     uuid.New().String(),
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().Add(invitationTTL),
		CreatedAt: time.Now(),
	}
	if err := s.store.Invitations().Create(ctx, invitation); err != nil {
		return nil, err
	}

	// Delivery is best effort; the token stays valid either way.
	inviter, _ := s.store.Users().GetByID(ctx, actorID)
	inviterName := "A user"
	if inviter != nil {
		inviterName = inviter.Name
	}
	if err := utils.SendInvitationEmail(email, inviterName, ledger.Name, invitation.Token); err != nil {
		log.Printf("⚠️ Failed to send invitation email to %s: %v", email, err)
	}

	return invitation, nil
}

// AcceptInvitation redeems a pending token for the calling user and creates
// the membership with the invited role.
func (s *MemberService) AcceptInvitation(ctx context.Context, userID, token string) (*models.Member, error) {
	invitation, err := s.store.Invitations().GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation == nil || invitation.Status != models.InvitationPending {
		return nil, apperr.NotFound("invitation")
	}
	if time.Now().After(invitation.ExpiresAt) {
		if err := s.store.Invitations().UpdateStatus(ctx, invitation.ID, models.InvitationExpired); err != nil {
			return nil, err
		}
		return nil, apperr.Conflict("invitation has expired")
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("user not found")
	}
	if !strings.EqualFold(user.Email, invitation.Email) {
		return nil, apperr.PermissionDenied("acceptInvitation", "", "")
	}

	unlock := s.locks.Lock(invitation.LedgerID)
	defer unlock()

	existing, err := s.store.Members().Get(ctx, invitation.LedgerID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("you are already a member of this ledger")
	}

	member := &models.Member{
		ID:        uuid.New().String(),
		LedgerID:  invitation.LedgerID,
		UserID:    userID,
		Role:      invitation.Role,
		InvitedBy: invitation.InvitedBy,
		JoinedAt:  time.Now(),
	}
	if err := s.store.Members().Create(ctx, member); err != nil {
		return nil, err
	}
	if err := s.store.Invitations().UpdateStatus(ctx, invitation.ID, models.InvitationAccepted); err != nil {
		return nil, err
	}

	log.Printf("✅ User %s joined ledger %s as %s", userID, invitation.LedgerID, member.Role)
	return member, nil
}

// ListInvitations returns the ledger's invitations, newest first.
func (s *MemberService) ListInvitations(ctx context.Context, actorID, ledgerID string) ([]models.Invitation, error) {
	if err := s.verifyLedgerExists(ctx, ledgerID); err != nil {
		return nil, err
	}
	actor, err := s.requireMember(ctx, ledgerID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(actor.Role, policy.ActionInviteMember, "") {
		return nil, apperr.PermissionDenied(string(policy.ActionInviteMember), string(actor.Role), "")
	}
	return s.store.Invitations().ListByLedger(ctx, ledgerID)
}

// CancelInvitation deletes a pending invitation.
func (s *MemberService) CancelInvitation(ctx context.Context, actorID, ledgerID, invitationID string) error {
	actor, err := s.requireMember(ctx, ledgerID, actorID)
	if err != nil {
		return err
	}
	if !policy.CanPerform(actor.Role, policy.ActionInviteMember, "") {
		return apperr.PermissionDenied(string(policy.ActionInviteMember), string(actor.Role), "")
	}

	invitation, err := s.store.Invitations().GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if invitation == nil || invitation.LedgerID != ledgerID || invitation.Status != models.InvitationPending {
		return apperr.NotFound("invitation")
	}
	return s.store.Invitations().Delete(ctx, invitationID)
}

// ChangeRole updates a member's role. Only the OWNER may change roles, the
// OWNER's own slot is untouchable, and setting the current role again is a
// successful no-op.
func (s *MemberService) ChangeRole(ctx context.Context, actorID, ledgerID, memberID string, newRole policy.Role) (*models.Member, error) {
	unlock := s.locks.Lock(ledgerID)
	defer unlock()

	if err := s.verifyLedgerExists(ctx, ledgerID); err != nil {
		return nil, err
	}
	actor, err := s.requireMember(ctx, ledgerID, actorID)
	if err != nil {
		return nil, err
	}

	target, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.LedgerID != ledgerID {
		return nil, apperr.NotFound("member")
	}

	if !policy.CanPerform(actor.Role, policy.ActionChangeMemberRole, target.Role) {
		return nil, apperr.PermissionDenied(string(policy.ActionChangeMemberRole), string(actor.Role), string(target.Role))
	}
	if !policy.AssignableRole(newRole) {
		return nil, apperr.Validation("role", "role must be one of ADMIN, MEMBER, VIEWER")
	}

	if newRole == target.Role {
		return target, nil
	}

	if err := s.store.Members().UpdateRole(ctx, memberID, newRole); err != nil {
		return nil, err
	}
	target.Role = newRole
	log.Printf("✅ Member %s in ledger %s is now %s", memberID, ledgerID, newRole)
	return target, nil
}

// Remove deletes a membership. The OWNER can remove anyone else, an ADMIN
// only plain members and viewers, and any non-OWNER member may remove
// themself (leave the ledger). Authored expenses keep their attribution.
func (s *MemberService) Remove(ctx context.Context, actorID, ledgerID, memberID string) error {
	unlock := s.locks.Lock(ledgerID)
	defer unlock()

	if err := s.verifyLedgerExists(ctx, ledgerID); err != nil {
		return err
	}

	target, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if target == nil || target.LedgerID != ledgerID {
		return apperr.NotFound("member")
	}

	if target.UserID == actorID {
		// Leaving the ledger. The OWNER can never leave: the ledger would be
		// left without one.
		if target.Role == policy.RoleOwner {
			return apperr.Conflict("the OWNER cannot leave the ledger")
		}
	} else {
		actor, err := s.requireMember(ctx, ledgerID, actorID)
		if err != nil {
			return err
		}
		if !policy.CanPerform(actor.Role, policy.ActionRemoveMember, target.Role) {
			return apperr.PermissionDenied(string(policy.ActionRemoveMember), string(actor.Role), string(target.Role))
		}
	}

	if err := s.store.Members().Delete(ctx, memberID); err != nil {
		return err
	}
	log.Printf("✅ Removed member %s from ledger %s", memberID, ledgerID)
	return nil
}

func (s *MemberService) verifyLedgerExists(ctx context.Context, ledgerID string) error {
	ledger, err := s.store.Ledgers().GetByID(ctx, ledgerID)
	if err != nil {
		return err
	}
	if ledger == nil {
		return apperr.NotFound("ledger")
	}
	return nil
}

func (s *MemberService) requireMember(ctx context.Context, ledgerID, userID string) (*models.Member, error) {
	member, err := s.store.Members().Get(ctx, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "you are not a member of this ledger"}
	}
	return member, nil
}
