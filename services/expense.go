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

const (
	DefaultPageSize = 20
	MaxPageSize     = 1000 // statistics screens pull whole months at once
)

type ExpenseService struct {
	store repository.Store
}

func NewExpenseService(store repository.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// Create records an expense. VIEWER cannot write; an optional category must
// be visible to the ledger (default or same-ledger custom).
func (s *ExpenseService) Create(ctx context.Context, actorID, ledgerID string, req models.CreateExpenseRequest) (*models.ExpenseResponse, error) {
	if _, err := s.requireWriter(ctx, ledgerID, actorID); err != nil {
		return nil, err
	}

	if err := models.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := models.ValidateExpenseDescription(req.Description); err != nil {
		return nil, err
	}
	date, err := models.ParseExpenseDate(req.ExpenseDate)
	if err != nil {
		return nil, err
	}
	if err := models.ValidatePaymentMethod(req.PaymentMethod); err != nil {
		return nil, err
	}
	if err := s.verifyCategory(ctx, ledgerID, req.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	expense := &models.Expense{
		ID:            uuid.New().String(),
		LedgerID:      ledgerID,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Description:   req.Description,
		ExpenseDate:   date,
		PaymentMethod: req.PaymentMethod,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Expenses().Create(ctx, expense); err != nil {
		return nil, err
	}

	log.Printf("✅ Created expense %s in ledger %s", expense.ID, ledgerID)
	return s.enrich(ctx, expense), nil
}

// Get returns a single expense, member-visible.
func (s *ExpenseService) Get(ctx context.Context, actorID, ledgerID, expenseID string) (*models.ExpenseResponse, error) {
	if _, err := s.requireMember(ctx, ledgerID, actorID); err != nil {
		return nil, err
	}
	expense, err := s.store.Expenses().Get(ctx, ledgerID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, apperr.NotFound("expense")
	}
	return s.enrich(ctx, expense), nil
}

// Update patches the present fields only, under the same permission and
// validation rules as Create.
func (s *ExpenseService) Update(ctx context.Context, actorID, ledgerID, expenseID string, req models.UpdateExpenseRequest) (*models.ExpenseResponse, error) {
	if _, err := s.requireWriter(ctx, ledgerID, actorID); err != nil {
		return nil, err
	}

	expense, err := s.store.Expenses().Get(ctx, ledgerID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, apperr.NotFound("expense")
	}

	if req.Amount != nil {
		if err := models.ValidateAmount(*req.Amount); err != nil {
			return nil, err
		}
		expense.Amount = *req.Amount
	}
	if req.Description != nil {
		if err := models.ValidateExpenseDescription(*req.Description); err != nil {
			return nil, err
		}
		expense.Description = *req.Description
	}
	if req.ExpenseDate != nil {
		date, err := models.ParseExpenseDate(*req.ExpenseDate)
		if err != nil {
			return nil, err
		}
		expense.ExpenseDate = date
	}
	if req.PaymentMethod != nil {
		if err := models.ValidatePaymentMethod(*req.PaymentMethod); err != nil {
			return nil, err
		}
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.CategoryID != nil {
		// An empty string detaches the category.
		if err := s.verifyCategory(ctx, ledgerID, *req.CategoryID); err != nil {
			return nil, err
		}
		expense.CategoryID = *req.CategoryID
	}
	expense.UpdatedAt = time.Now()

	if err := s.store.Expenses().Update(ctx, expense); err != nil {
		return nil, err
	}
	return s.enrich(ctx, expense), nil
}

// Delete removes an expense; deleting an unknown id is NotFound, not a
// silent no-op.
func (s *ExpenseService) Delete(ctx context.Context, actorID, ledgerID, expenseID string) error {
	if _, err := s.requireWriter(ctx, ledgerID, actorID); err != nil {
		return err
	}
	deleted, err := s.store.Expenses().Delete(ctx, ledgerID, expenseID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("expense")
	}
	log.Printf("✅ Deleted expense %s from ledger %s", expenseID, ledgerID)
	return nil
}

// List returns one page of expenses, filters applied conjunctively before
// pagination, newest expense date first with creation time breaking ties.
func (s *ExpenseService) List(ctx context.Context, actorID, ledgerID string, filter models.ExpenseFilter, page, size int) (models.Page[models.ExpenseResponse], error) {
	var empty models.Page[models.ExpenseResponse]

	if _, err := s.requireMember(ctx, ledgerID, actorID); err != nil {
		return empty, err
	}

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	expenses, total, err := s.store.Expenses().List(ctx, ledgerID, filter, page*size, size)
	if err != nil {
		return empty, err
	}

	content := make([]models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		content = append(content, *s.enrich(ctx, &expenses[i]))
	}
	return models.NewPage(content, page, size, total), nil
}

// ListAll returns every matching expense for export and statistics.
func (s *ExpenseService) ListAll(ctx context.Context, actorID, ledgerID string, filter models.ExpenseFilter) ([]models.ExpenseResponse, error) {
	if _, err := s.requireMember(ctx, ledgerID, actorID); err != nil {
		return nil, err
	}
	expenses, err := s.store.Expenses().ListAll(ctx, ledgerID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]models.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		out = append(out, *s.enrich(ctx, &expenses[i]))
	}
	return out, nil
}

// enrich joins category and creator onto an expense. A dangling category
// reference resolves to a nil category (rendered uncategorized), never a
// read failure.
func (s *ExpenseService) enrich(ctx context.Context, expense *models.Expense) *models.ExpenseResponse {
	resp := &models.ExpenseResponse{
		Expense:       *expense,
		ExpenseDate:   expense.ExpenseDate.Format(models.DateLayout),
		CreatedByName: "Unknown",
	}
	if expense.CategoryID != "" {
		category, err := s.store.Categories().GetByID(ctx, expense.CategoryID)
		if err == nil && category != nil && category.VisibleTo(expense.LedgerID) {
			resp.Category = category
		}
	}
	if user, err := s.store.Users().GetByID(ctx, expense.CreatedBy); err == nil && user != nil {
		resp.CreatedByName = user.Name
	}
	return resp
}

func (s *ExpenseService) verifyCategory(ctx context.Context, ledgerID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	category, err := s.store.Categories().GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil || !category.VisibleTo(ledgerID) {
		return apperr.NotFound("category")
	}
	return nil
}

func (s *ExpenseService) requireMember(ctx context.Context, ledgerID, userID string) (*models.Member, error) {
	member, err := s.store.Members().Get(ctx, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "you are not a member of this ledger"}
	}
	return member, nil
}

func (s *ExpenseService) requireWriter(ctx context.Context, ledgerID, userID string) (*models.Member, error) {
	member, err := s.requireMember(ctx, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(member.Role, policy.ActionWriteExpense, "") {
		return nil, apperr.PermissionDenied(string(policy.ActionWriteExpense), string(member.Role), "")
	}
	return member, nil
}
