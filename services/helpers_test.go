package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
	"github.com/famoney/famoney-api/repository"
	"github.com/famoney/famoney-api/repository/memory"
)

type testEnv struct {
	store   repository.Store
	locks   *LedgerLocks
	ledgers *LedgerService
	members *MemberService
	exps    *ExpenseService
	cats    *CategoryService
	stats   *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	locks := NewLedgerLocks()
	return &testEnv{
		store:   store,
		locks:   locks,
		ledgers: NewLedgerService(store, locks),
		members: NewMemberService(store, locks),
		exps:    NewExpenseService(store),
		cats:    NewCategoryService(store),
		stats:   NewStatsService(store),
	}
}

func (env *testEnv) createUser(t *testing.T, email, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, env.store.Users().Create(context.Background(), user))
	return user
}

func (env *testEnv) createLedger(t *testing.T, ownerID, name string) *models.LedgerResponse {
	t.Helper()
	resp, err := env.ledgers.Create(context.Background(), ownerID, models.CreateLedgerRequest{Name: name})
	require.NoError(t, err)
	return resp
}

// addMember joins a user directly with the given role, bypassing the
// invitation flow.
func (env *testEnv) addMember(t *testing.T, ledgerID, userID string, role policy.Role) *models.Member {
	t.Helper()
	member := &models.Member{
		ID:       uuid.New().String(),
		LedgerID: ledgerID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	require.NoError(t, env.store.Members().Create(context.Background(), member))
	return member
}

func (env *testEnv) createExpense(t *testing.T, userID, ledgerID string, amount int64, desc, date string) *models.ExpenseResponse {
	t.Helper()
	resp, err := env.exps.Create(context.Background(), userID, ledgerID, models.CreateExpenseRequest{
		Amount:      amount,
		Description: desc,
		ExpenseDate: date,
	})
	require.NoError(t, err)
	return resp
}
