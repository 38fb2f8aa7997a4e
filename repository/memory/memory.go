// Package memory is a mutex-guarded in-memory implementation of the
// repository contracts. It backs the test suite and the
// STORAGE_BACKEND=memory deployment mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
	"github.com/famoney/famoney-api/repository"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	ledgers     map[string]*models.Ledger
	members     map[string]*models.Member
	expenses    map[string]*models.Expense
	categories  map[string]*models.Category
	invitations map[string]*models.Invitation
	sessions    map[string]*models.Session // keyed by refresh token
}

// New returns an empty store pre-seeded with the default categories.
func New() *Store {
	s := &Store{
		users:       make(map[string]*models.User),
		ledgers:     make(map[string]*models.Ledger),
		members:     make(map[string]*models.Member),
		expenses:    make(map[string]*models.Expense),
		categories:  make(map[string]*models.Category),
		invitations: make(map[string]*models.Invitation),
		sessions:    make(map[string]*models.Session),
	}
	now := time.Now()
	for _, c := range models.DefaultCategories() {
		c.ID = uuid.New().String()
		c.CreatedAt = now
		seeded := c
		s.categories[c.ID] = &seeded
	}
	return s
}

func (s *Store) Users() repository.Users             { return users{s} }
func (s *Store) Ledgers() repository.Ledgers         { return ledgers{s} }
func (s *Store) Members() repository.Members         { return members{s} }
func (s *Store) Expenses() repository.Expenses       { return expenses{s} }
func (s *Store) Categories() repository.Categories   { return categories{s} }
func (s *Store) Invitations() repository.Invitations { return invitations{s} }
func (s *Store) Sessions() repository.Sessions       { return sessions{s} }

// ---- users ----

type users struct{ s *Store }

func (r users) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperr.AlreadyExists("email already registered")
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r users) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r users) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return apperr.NotFound("user")
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r users) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// ---- ledgers ----

type ledgers struct{ s *Store }

func (r ledgers) Create(ctx context.Context, ledger *models.Ledger, owner *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lcp := *ledger
	mcp := *owner
	r.s.ledgers[ledger.ID] = &lcp
	r.s.members[owner.ID] = &mcp
	return nil
}

func (r ledgers) GetByID(ctx context.Context, id string) (*models.Ledger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if l, ok := r.s.ledgers[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r ledgers) Update(ctx context.Context, ledger *models.Ledger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ledgers[ledger.ID]; !ok {
		return apperr.NotFound("ledger")
	}
	cp := *ledger
	r.s.ledgers[ledger.ID] = &cp
	return nil
}

func (r ledgers) DeleteCascade(ctx context.Context, ledgerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ledgers[ledgerID]; !ok {
		return apperr.NotFound("ledger")
	}
	for id, m := range r.s.members {
		if m.LedgerID == ledgerID {
			delete(r.s.members, id)
		}
	}
	for id, e := range r.s.expenses {
		if e.LedgerID == ledgerID {
			delete(r.s.expenses, id)
		}
	}
	for id, c := range r.s.categories {
		if !c.IsDefault && c.LedgerID == ledgerID {
			delete(r.s.categories, id)
		}
	}
	for id, inv := range r.s.invitations {
		if inv.LedgerID == ledgerID {
			delete(r.s.invitations, id)
		}
	}
	delete(r.s.ledgers, ledgerID)
	return nil
}

// ---- members ----

type members struct{ s *Store }

func (r members) Create(ctx context.Context, member *models.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.LedgerID == member.LedgerID && m.UserID == member.UserID {
			return apperr.Conflict("user is already a member of this ledger")
		}
	}
	cp := *member
	r.s.members[member.ID] = &cp
	return nil
}

func (r members) Get(ctx context.Context, ledgerID, userID string) (*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.members {
		if m.LedgerID == ledgerID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r members) GetByID(ctx context.Context, id string) (*models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if m, ok := r.s.members[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r members) ListByLedger(ctx context.Context, ledgerID string) ([]models.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Member
	for _, m := range r.s.members {
		if m.LedgerID == ledgerID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r members) ListLedgerIDsByUser(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var pairs []*models.Member
	for _, m := range r.s.members {
		if m.UserID == userID {
			pairs = append(pairs, m)
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].JoinedAt.Before(pairs[j].JoinedAt) })
	ids := make([]string, 0, len(pairs))
	for _, m := range pairs {
		ids = append(ids, m.LedgerID)
	}
	return ids, nil
}

func (r members) CountByLedger(ctx context.Context, ledgerID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, m := range r.s.members {
		if m.LedgerID == ledgerID {
			count++
		}
	}
	return count, nil
}

func (r members) UpdateRole(ctx context.Context, id string, role policy.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[id]
	if !ok {
		return apperr.NotFound("member")
	}
	m.Role = role
	return nil
}

func (r members) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[id]; !ok {
		return apperr.NotFound("member")
	}
	delete(r.s.members, id)
	return nil
}

func (r members) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.members {
		if m.UserID == userID {
			delete(r.s.members, id)
		}
	}
	return nil
}

// ---- expenses ----

type expenses struct{ s *Store }

func (r expenses) Create(ctx context.Context, expense *models.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *expense
	r.s.expenses[expense.ID] = &cp
	return nil
}

func (r expenses) Get(ctx context.Context, ledgerID, id string) (*models.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if e, ok := r.s.expenses[id]; ok && e.LedgerID == ledgerID {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r expenses) Update(ctx context.Context, expense *models.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.expenses[expense.ID]; !ok {
		return apperr.NotFound("expense")
	}
	cp := *expense
	r.s.expenses[expense.ID] = &cp
	return nil
}

func (r expenses) Delete(ctx context.Context, ledgerID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.expenses[id]; ok && e.LedgerID == ledgerID {
		delete(r.s.expenses, id)
		return true, nil
	}
	return false, nil
}

func matches(e *models.Expense, ledgerID string, filter models.ExpenseFilter) bool {
	if e.LedgerID != ledgerID {
		return false
	}
	if filter.StartDate != nil && e.ExpenseDate.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && e.ExpenseDate.After(*filter.EndDate) {
		return false
	}
	if filter.CategoryID != "" && e.CategoryID != filter.CategoryID {
		return false
	}
	return true
}

func (r expenses) collect(ledgerID string, filter models.ExpenseFilter) []models.Expense {
	var out []models.Expense
	for _, e := range r.s.expenses {
		if matches(e, ledgerID, filter) {
			out = append(out, *e)
		}
	}
	// Most recent first: expense date desc, creation time desc.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpenseDate.Equal(out[j].ExpenseDate) {
			return out[i].ExpenseDate.After(out[j].ExpenseDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r expenses) List(ctx context.Context, ledgerID string, filter models.ExpenseFilter, offset, limit int) ([]models.Expense, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.collect(ledgerID, filter)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r expenses) ListAll(ctx context.Context, ledgerID string, filter models.ExpenseFilter) ([]models.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(ledgerID, filter), nil
}

// ---- categories ----

type categories struct{ s *Store }

func (r categories) Create(ctx context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

func (r categories) GetByID(ctx context.Context, id string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r categories) ListForLedger(ctx context.Context, ledgerID string) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Category
	for _, c := range r.s.categories {
		if c.IsDefault || c.LedgerID == ledgerID {
			out = append(out, *c)
		}
	}
	// Defaults first, then by creation time, then name for a stable order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r categories) ExistsByName(ctx context.Context, ledgerID, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if !c.IsDefault && c.LedgerID == ledgerID && c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r categories) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return apperr.NotFound("category")
	}
	delete(r.s.categories, id)
	return nil
}

// ---- invitations ----

type invitations struct{ s *Store }

func (r invitations) Create(ctx context.Context, invitation *models.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *invitation
	r.s.invitations[invitation.ID] = &cp
	return nil
}

func (r invitations) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, inv := range r.s.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r invitations) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if inv, ok := r.s.invitations[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

func (r invitations) HasPending(ctx context.Context, ledgerID, email string, now time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, inv := range r.s.invitations {
		if inv.LedgerID == ledgerID && strings.EqualFold(inv.Email, email) &&
			inv.Status == models.InvitationPending && inv.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r invitations) ListByLedger(ctx context.Context, ledgerID string) ([]models.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Invitation
	for _, inv := range r.s.invitations {
		if inv.LedgerID == ledgerID {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r invitations) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok {
		return apperr.NotFound("invitation")
	}
	inv.Status = status
	return nil
}

func (r invitations) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invitations[id]; !ok {
		return apperr.NotFound("invitation")
	}
	delete(r.s.invitations, id)
	return nil
}

// ---- sessions ----

type sessions struct{ s *Store }

func (r sessions) Create(ctx context.Context, session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.RefreshToken] = &cp
	return nil
}

func (r sessions) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if sess, ok := r.s.sessions[token]; ok {
		cp := *sess
		return &cp, nil
	}
	return nil, nil
}

func (r sessions) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, token)
	return nil
}

func (r sessions) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for token, sess := range r.s.sessions {
		if sess.UserID == userID {
			delete(r.s.sessions, token)
		}
	}
	return nil
}
