package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/famoney/famoney-api/apperr"
	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
	"github.com/famoney/famoney-api/repository"
)

const defaultCategoryColor = "#808080"

type CategoryService struct {
	store repository.Store
}

func NewCategoryService(store repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

// ListVisible returns the categories usable in a ledger: the shared defaults
// first, then the ledger's own custom categories.
func (s *CategoryService) ListVisible(ctx context.Context, actorID, ledgerID string) ([]models.Category, error) {
	if _, err := s.requireMember(ctx, ledgerID, actorID); err != nil {
		return nil, err
	}
	return s.store.Categories().ListForLedger(ctx, ledgerID)
}

// Create adds a custom category. Names must be unique among the categories
// visible to the ledger, defaults included.
func (s *CategoryService) Create(ctx context.Context, actorID, ledgerID string, req models.CreateCategoryRequest) (*models.Category, error) {
	if _, err := s.requireWriter(ctx, ledgerID, actorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name", "category name is required")
	}
	if len([]rune(name)) > 50 {
		return nil, apperr.Validation("name", "category name must be at most 50 characters")
	}

	exists, err := s.store.Categories().ExistsByName(ctx, ledgerID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("a category with this name already exists")
	}

	color := req.Color
	if color == "" {
		color = defaultCategoryColor
	}

	category := &models.Category{
		ID:        uuid.New().String(),
		LedgerID:  ledgerID,
		Name:      name,
		Color:     color,
		Icon:      req.Icon,
		IsDefault: false,
		CreatedAt: time.Now(),
	}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, err
	}

	log.Printf("✅ Created category %q in ledger %s", name, ledgerID)
	return category, nil
}

// Delete removes a custom category. Defaults are never deletable. Expenses
// referencing the deleted category keep the dangling id and render as
// uncategorized from then on.
func (s *CategoryService) Delete(ctx context.Context, actorID, ledgerID, categoryID string) error {
	if _, err := s.requireWriter(ctx, ledgerID, actorID); err != nil {
		return err
	}

	category, err := s.store.Categories().GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil || (!category.IsDefault && category.LedgerID != ledgerID) {
		return apperr.NotFound("category")
	}
	if category.IsDefault {
		return apperr.Conflict("default categories cannot be deleted")
	}

	if err := s.store.Categories().Delete(ctx, categoryID); err != nil {
		return err
	}
	log.Printf("✅ Deleted category %s from ledger %s", categoryID, ledgerID)
	return nil
}

func (s *CategoryService) requireMember(ctx context.Context, ledgerID, userID string) (*models.Member, error) {
	member, err := s.store.Members().Get(ctx, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &apperr.Error{Kind: apperr.KindPermissionDenied, Message: "you are not a member of this ledger"}
	}
	return member, nil
}

func (s *CategoryService) requireWriter(ctx context.Context, ledgerID, userID string) (*models.Member, error) {
	member, err := s.requireMember(ctx, ledgerID, userID)
	if err != nil {
		return nil, err
	}
	if !policy.CanPerform(member.Role, policy.ActionWriteExpense, "") {
		return nil, apperr.PermissionDenied(string(policy.ActionWriteExpense), string(member.Role), "")
	}
	return member, nil
}
