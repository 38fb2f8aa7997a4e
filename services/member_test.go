package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
)

func TestInviteAndAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner@example.com", "Owner")
	guest := env.createUser(t, "guest@example.com", "Guest")
	ledger := env.createLedger(t, owner.ID, "가족 가계부")

	invitation, err := env.members.Invite(ctx, owner.ID, ledger.ID, guest.Email, policy.RoleMember)
	require.NoError(t, err)
	require.Equal(t, models.InvitationPending, invitation.Status)
	require.NotEmpty(t, invitation.Token)

	member, err := env.members.AcceptInvitation(ctx, guest.ID, invitation.Token)
	require.NoError(t, err)
	require.Equal(t, policy.RoleMember, member.Role)
	require.Equal(t, ledger.ID, member.LedgerID)

	role, err := env.members.RoleOf(ctx, ledger.ID, guest.ID)
	require.NoError(t, err)
	require.Equal(t, policy.RoleMember, role)

	// The redeemed token is dead.
	_, err = env.members.AcceptInvitation(ctx, guest.ID, invitation.Token)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestInviteRejectsOwnerRole(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	_, err := env.members.Invite(context.Background(), owner.ID, ledger.ID, "new@example.com", policy.RoleOwner)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestInviteExistingMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	other := env.createUser(t, "other@example.com", "Other")
	ledger := env.createLedger(t, owner.ID, "Budget")
	env.addMember(t, ledger.ID, other.ID, policy.RoleMember)

	_, err := env.members.Invite(ctx, owner.ID, ledger.ID, other.Email, policy.RoleViewer)
	require.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))
}

func TestInviteDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	_, err := env.members.Invite(ctx, owner.ID, ledger.ID, "new@example.com", policy.RoleMember)
	require.NoError(t, err)

	_, err = env.members.Invite(ctx, owner.ID, ledger.ID, "new@example.com", policy.RoleViewer)
	require.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))
}

func TestInviteRequiresAdminOrOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	member := env.createUser(t, "member@example.com", "Member")
	ledger := env.createLedger(t, owner.ID, "Budget")
	env.addMember(t, ledger.ID, member.ID, policy.RoleMember)

	_, err := env.members.Invite(ctx, member.ID, ledger.ID, "new@example.com", policy.RoleViewer)
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
}

func TestAcceptExpiredInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	guest := env.createUser(t, "guest@example.com", "Guest")
	ledger := env.createLedger(t, owner.ID, "Budget")

	invitation, err := env.members.Invite(ctx, owner.ID, ledger.ID, guest.Email, policy.RoleMember)
	require.NoError(t, err)

	// Backdate past the TTL.
	invitation.ExpiresAt = time.Now().Add(-time.Hour)
	stale := *invitation
	stale.ID = invitation.ID
	require.NoError(t, env.store.Invitations().Delete(ctx, invitation.ID))
	require.NoError(t, env.store.Invitations().Create(ctx, &stale))

	_, err = env.members.AcceptInvitation(ctx, guest.ID, invitation.Token)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	refreshed, err := env.store.Invitations().GetByID(ctx, invitation.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationExpired, refreshed.Status)
}

func TestAcceptWrongEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	stranger := env.createUser(t, "stranger@example.com", "Stranger")
	ledger := env.createLedger(t, owner.ID, "Budget")

	invitation, err := env.members.Invite(ctx, owner.ID, ledger.ID, "guest@example.com", policy.RoleMember)
	require.NoError(t, err)

	_, err = env.members.AcceptInvitation(ctx, stranger.ID, invitation.Token)
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	other := env.createUser(t, "other@example.com", "Other")
	ledger := env.createLedger(t, owner.ID, "Budget")
	m := env.addMember(t, ledger.ID, other.ID, policy.RoleMember)

	updated, err := env.members.ChangeRole(ctx, owner.ID, ledger.ID, m.ID, policy.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, policy.RoleAdmin, updated.Role)

	// Setting the same role again is a successful no-op.
	updated, err = env.members.ChangeRole(ctx, owner.ID, ledger.ID, m.ID, policy.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, policy.RoleAdmin, updated.Role)
}

func TestChangeRoleDeniedForAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	admin := env.createUser(t, "admin@example.com", "Admin")
	other := env.createUser(t, "other@example.com", "Other")
	ledger := env.createLedger(t, owner.ID, "Budget")
	env.addMember(t, ledger.ID, admin.ID, policy.RoleAdmin)
	m := env.addMember(t, ledger.ID, other.ID, policy.RoleMember)

	_, err := env.members.ChangeRole(ctx, admin.ID, ledger.ID, m.ID, policy.RoleViewer)
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
}

func TestChangeRoleOwnerSlotUntouchable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	ownerMember, err := env.store.Members().Get(ctx, ledger.ID, owner.ID)
	require.NoError(t, err)

	_, err = env.members.ChangeRole(ctx, owner.ID, ledger.ID, ownerMember.ID, policy.RoleAdmin)
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	admin := env.createUser(t, "admin@example.com", "Admin")
	member := env.createUser(t, "member@example.com", "Member")
	ledger := env.createLedger(t, owner.ID, "Budget")
	adminM := env.addMember(t, ledger.ID, admin.ID, policy.RoleAdmin)
	memberM := env.addMember(t, ledger.ID, member.ID, policy.RoleMember)

	ownerM, err := env.store.Members().Get(ctx, ledger.ID, owner.ID)
	require.NoError(t, err)

	// ADMIN may not remove the OWNER or a peer ADMIN.
	require.Equal(t, apperr.KindPermissionDenied,
		apperr.KindOf(env.members.Remove(ctx, admin.ID, ledger.ID, ownerM.ID)))

	// ADMIN removes a plain member.
	require.NoError(t, env.members.Remove(ctx, admin.ID, ledger.ID, memberM.ID))

	// OWNER removes the ADMIN.
	require.NoError(t, env.members.Remove(ctx, owner.ID, ledger.ID, adminM.ID))

	count, err := env.store.Members().CountByLedger(ctx, ledger.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestSelfRemoval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	viewer := env.createUser(t, "viewer@example.com", "Viewer")
	ledger := env.createLedger(t, owner.ID, "Budget")
	viewerM := env.addMember(t, ledger.ID, viewer.ID, policy.RoleViewer)

	// A viewer may leave on their own.
	require.NoError(t, env.members.Remove(ctx, viewer.ID, ledger.ID, viewerM.ID))

	// The OWNER can never leave.
	ownerM, err := env.store.Members().Get(ctx, ledger.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, apperr.KindConflict,
		apperr.KindOf(env.members.Remove(ctx, owner.ID, ledger.ID, ownerM.ID)))
}

func TestListMembersOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Zoe")
	admin := env.createUser(t, "admin@example.com", "Yun")
	m1 := env.createUser(t, "m1@example.com", "Bora")
	m2 := env.createUser(t, "m2@example.com", "Ari")
	ledger := env.createLedger(t, owner.ID, "Budget")
	env.addMember(t, ledger.ID, admin.ID, policy.RoleAdmin)
	env.addMember(t, ledger.ID, m1.ID, policy.RoleMember)
	env.addMember(t, ledger.ID, m2.ID, policy.RoleMember)

	list, err := env.members.List(ctx, owner.ID, ledger.ID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	require.Equal(t, policy.RoleOwner, list[0].Role)
	require.Equal(t, policy.RoleAdmin, list[1].Role)
	// Same-role members sorted by name.
	require.Equal(t, "Ari", list[2].Name)
	require.Equal(t, "Bora", list[3].Name)
}

func TestConcurrentInviteSameEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.members.Invite(ctx, owner.ID, ledger.ID, "race@example.com", policy.RoleMember)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			require.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))
		}
	}
	require.Equal(t, 1, ok)
}

func TestCancelInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner")
	ledger := env.createLedger(t, owner.ID, "Budget")

	invitation, err := env.members.Invite(ctx, owner.ID, ledger.ID, "guest@example.com", policy.RoleMember)
	require.NoError(t, err)

	require.NoError(t, env.members.CancelInvitation(ctx, owner.ID, ledger.ID, invitation.ID))
	require.Equal(t, apperr.KindNotFound,
		apperr.KindOf(env.members.CancelInvitation(ctx, owner.ID, ledger.ID, invitation.ID)))
}
