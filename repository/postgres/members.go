package postgres

import (
	"context"
	"database/sql"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
)

type members struct {
	db *sql.DB
}

const memberColumns = `id, ledger_id, user_id, role, COALESCE(invited_by::text, ''), joined_at`

func scanMember(row interface{ Scan(...interface{}) error }) (*models.Member, error) {
	var m models.Member
	var role string
	err := row.Scan(&m.ID, &m.LedgerID, &m.UserID, &role, &m.InvitedBy, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	m.Role = policy.Role(role)
	return &m, nil
}

func (r members) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, ledger_id, user_id, role, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		member.ID, member.LedgerID, member.UserID, string(member.Role),
		member.InvitedBy, member.JoinedAt,
	)
	return err
}

func (r members) Get(ctx context.Context, ledgerID, userID string) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE ledger_id = $1 AND user_id = $2`,
		ledgerID, userID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r members) GetByID(ctx context.Context, id string) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r members) ListByLedger(ctx context.Context, ledgerID string) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE ledger_id = $1 ORDER BY joined_at`,
		ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r members) ListLedgerIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ledger_id FROM members WHERE user_id = $1 ORDER BY joined_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r members) CountByLedger(ctx context.Context, ledgerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE ledger_id = $1`, ledgerID).Scan(&count)
	return count, err
}

func (r members) UpdateRole(ctx context.Context, id string, role policy.Role) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE members SET role = $1 WHERE id = $2`, string(role), id)
	return err
}

func (r members) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	return err
}

func (r members) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE user_id = $1`, userID)
	return err
}
