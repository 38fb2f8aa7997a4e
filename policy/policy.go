package policy

// Role is a member's privilege level within a single ledger.
// Ordered by privilege: OWNER > ADMIN > MEMBER > VIEWER.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Rank returns the sort rank of a role, OWNER first.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 0
	case RoleAdmin:
		return 1
	case RoleMember:
		return 2
	case RoleViewer:
		return 3
	}
	return 4
}

// Action is an operation gated by the role table.
type Action string

const (
	ActionInviteMember     Action = "inviteMember"
	ActionChangeMemberRole Action = "changeMemberRole"
	ActionRemoveMember     Action = "removeMember"
	ActionWriteExpense     Action = "writeExpense"
	ActionUpdateLedger     Action = "updateLedgerMetadata"
	ActionDeleteLedger     Action = "deleteLedger"
)

// AssignableRole reports whether a role may be granted through an invite or
// a role change. OWNER is never assignable; it exists only from ledger
// creation.
func AssignableRole(r Role) bool {
	return r == RoleAdmin || r == RoleMember || r == RoleViewer
}

// CanPerform is the single authorization table for ledger operations.
// target is the role of the member being acted on; pass the zero value for
// actions without a target (writeExpense, updateLedgerMetadata, deleteLedger,
// inviteMember).
func CanPerform(actor Role, action Action, target Role) bool {
	if !actor.Valid() {
		return false
	}

	switch action {
	case ActionInviteMember:
		return actor == RoleOwner || actor == RoleAdmin

	case ActionChangeMemberRole:
		// Only OWNER changes roles, and never the OWNER's own slot.
		return actor == RoleOwner && target != RoleOwner && target.Valid()

	case ActionRemoveMember:
		if target == RoleOwner || !target.Valid() {
			return false
		}
		if actor == RoleOwner {
			return true
		}
		// ADMIN may only remove MEMBER or VIEWER, never a peer ADMIN.
		return actor == RoleAdmin && (target == RoleMember || target == RoleViewer)

	case ActionWriteExpense:
		return actor != RoleViewer

	case ActionUpdateLedger:
		return actor == RoleOwner || actor == RoleAdmin

	case ActionDeleteLedger:
		return actor == RoleOwner
	}

	return false
}
