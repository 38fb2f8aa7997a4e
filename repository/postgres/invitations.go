package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/policy"
)

type invitations struct {
	db *sql.DB
}

const invitationColumns = `id, ledger_id, email, role, invited_by, token, status, expires_at, created_at`

func scanInvitation(row interface{ Scan(...interface{}) error }) (*models.Invitation, error) {
	var inv models.Invitation
	var role string
	err := row.Scan(&inv.ID, &inv.LedgerID, &inv.Email, &role, &inv.InvitedBy,
		&inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.Role = policy.Role(role)
	return &inv, nil
}

func (r invitations) Create(ctx context.Context, invitation *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, ledger_id, email, role, invited_by, token, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		invitation.ID, invitation.LedgerID, invitation.Email, string(invitation.Role),
		invitation.InvitedBy, invitation.Token, invitation.Status,
		invitation.ExpiresAt, invitation.CreatedAt,
	)
	return err
}

func (r invitations) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r invitations) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r invitations) HasPending(ctx context.Context, ledgerID, email string, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE ledger_id = $1 AND LOWER(email) = LOWER($2) AND status = 'pending' AND expires_at > $3
		)
	`, ledgerID, email, now).Scan(&exists)
	return exists, err
}

func (r invitations) ListByLedger(ctx context.Context, ledgerID string) ([]models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE ledger_id = $1 ORDER BY created_at DESC`,
		ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r invitations) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (r invitations) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	return err
}
