package postgres

import (
	"context"
	"database/sql"

	"github.com/famoney/famoney-api/models"
)

type categories struct {
	db *sql.DB
}

const categoryColumns = `id, COALESCE(ledger_id::text, ''), name, color, COALESCE(icon, ''), is_default, created_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.LedgerID, &c.Name, &c.Color, &c.Icon, &c.IsDefault, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r categories) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, ledger_id, name, color, icon, is_default, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, NULLIF($5, ''), $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.LedgerID, category.Name, category.Color,
		category.Icon, category.IsDefault, category.CreatedAt,
	)
	return err
}

func (r categories) GetByID(ctx context.Context, id string) (*models.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r categories) ListForLedger(ctx context.Context, ledgerID string) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_default = TRUE OR ledger_id = $1
		ORDER BY is_default DESC, created_at, name
	`
	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r categories) ExistsByName(ctx context.Context, ledgerID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM categories
			WHERE ledger_id = $1 AND name = $2 AND is_default = FALSE
		)
	`, ledgerID, name).Scan(&exists)
	return exists, err
}

func (r categories) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}
