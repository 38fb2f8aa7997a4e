package postgres

import (
	"context"
	"database/sql"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/utils"
)

type ledgers struct {
	db *sql.DB
}

func (r ledgers) Create(ctx context.Context, ledger *models.Ledger, owner *models.Member) error {
	return utils.WithTransaction(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO ledgers (id, name, description, currency, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, query,
			ledger.ID, ledger.Name, ledger.Description, ledger.Currency,
			ledger.CreatedBy, ledger.CreatedAt, ledger.UpdatedAt,
		); err != nil {
			return err
		}

		memberQuery := `
			INSERT INTO members (id, ledger_id, user_id, role, invited_by, joined_at)
			VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6)
		`
		_, err := tx.ExecContext(ctx, memberQuery,
			owner.ID, owner.LedgerID, owner.UserID, string(owner.Role),
			owner.InvitedBy, owner.JoinedAt,
		)
		return err
	})
}

func (r ledgers) GetByID(ctx context.Context, id string) (*models.Ledger, error) {
	query := `
		SELECT id, name, description, currency, created_by, created_at, updated_at
		FROM ledgers
		WHERE id = $1
	`
	var ledger models.Ledger
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ledger.ID, &ledger.Name, &ledger.Description, &ledger.Currency,
		&ledger.CreatedBy, &ledger.CreatedAt, &ledger.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r ledgers) Update(ctx context.Context, ledger *models.Ledger) error {
	query := `
		UPDATE ledgers
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, ledger.Name, ledger.Description, ledger.UpdatedAt, ledger.ID)
	return err
}

func (r ledgers) DeleteCascade(ctx context.Context, ledgerID string) error {
	return utils.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE ledger_id = $1`, ledgerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE ledger_id = $1`, ledgerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE ledger_id = $1`, ledgerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE ledger_id = $1 AND is_default = FALSE`, ledgerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM ledgers WHERE id = $1`, ledgerID)
		return err
	})
}
