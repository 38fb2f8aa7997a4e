// Package repository defines the storage contracts the services run on.
// Two implementations exist: repository/postgres for production and
// repository/memory for tests and single-process deployments.
//
// Lookup methods return (nil, nil) when the record does not exist; services
// translate absence into the error kind the operation calls for.
package repository

import (
	"context"
	"time"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
)

type Store interface {
	Users() Users
	Ledgers() Ledgers
	Members() Members
	Expenses() Expenses
	Categories() Categories
	Invitations() Invitations
	Sessions() Sessions
}

type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type Ledgers interface {
	// Create persists the ledger together with its OWNER membership as one
	// atomic unit.
	Create(ctx context.Context, ledger *models.Ledger, owner *models.Member) error
	GetByID(ctx context.Context, id string) (*models.Ledger, error)
	Update(ctx context.Context, ledger *models.Ledger) error
	// DeleteCascade removes the ledger with all its memberships, invitations,
	// expenses and custom categories; all-or-nothing.
	DeleteCascade(ctx context.Context, ledgerID string) error
}

type Members interface {
	Create(ctx context.Context, member *models.Member) error
	Get(ctx context.Context, ledgerID, userID string) (*models.Member, error)
	GetByID(ctx context.Context, id string) (*models.Member, error)
	ListByLedger(ctx context.Context, ledgerID string) ([]models.Member, error)
	ListLedgerIDsByUser(ctx context.Context, userID string) ([]string, error)
	CountByLedger(ctx context.Context, ledgerID string) (int, error)
	UpdateRole(ctx context.Context, id string, role policy.Role) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type Expenses interface {
	Create(ctx context.Context, expense *models.Expense) error
	Get(ctx context.Context, ledgerID, id string) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, ledgerID, id string) (bool, error)
	// List returns one page ordered by expense date descending, then
	// creation time descending, plus the total match count.
	List(ctx context.Context, ledgerID string, filter models.ExpenseFilter, offset, limit int) ([]models.Expense, int64, error)
	// ListAll returns every match in the same order, for statistics and
	// export.
	ListAll(ctx context.Context, ledgerID string, filter models.ExpenseFilter) ([]models.Expense, error)
}

type Categories interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	// ListForLedger returns default categories first, then the ledger's own.
	ListForLedger(ctx context.Context, ledgerID string) ([]models.Category, error)
	ExistsByName(ctx context.Context, ledgerID, name string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type Invitations interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	GetByID(ctx context.Context, id string) (*models.Invitation, error)
	HasPending(ctx context.Context, ledgerID, email string, now time.Time) (bool, error)
	ListByLedger(ctx context.Context, ledgerID string) ([]models.Invitation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type Sessions interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
}
