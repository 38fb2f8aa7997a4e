package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/famoney/famoney-api/models"
)

type expenses struct {
	db *sql.DB
}

const expenseColumns = `id, ledger_id, COALESCE(category_id::text, ''), amount, description, expense_date, COALESCE(payment_method, ''), created_by, created_at, updated_at`

func scanExpense(row interface{ Scan(...interface{}) error }) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.LedgerID, &e.CategoryID, &e.Amount, &e.Description,
		&e.ExpenseDate, &e.PaymentMethod, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r expenses) Create(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, ledger_id, category_id, amount, description, expense_date, payment_method, created_by, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		expense.ID, expense.LedgerID, expense.CategoryID, expense.Amount,
		expense.Description, expense.ExpenseDate, expense.PaymentMethod,
		expense.CreatedBy, expense.CreatedAt, expense.UpdatedAt,
	)
	return err
}

func (r expenses) Get(ctx context.Context, ledgerID, id string) (*models.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND ledger_id = $2`,
		id, ledgerID)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r expenses) Update(ctx context.Context, expense *models.Expense) error {
	query := `
		UPDATE expenses
		SET category_id = NULLIF($1, '')::uuid, amount = $2, description = $3,
		    expense_date = $4, payment_method = NULLIF($5, ''), updated_at = $6
		WHERE id = $7 AND ledger_id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		expense.CategoryID, expense.Amount, expense.Description,
		expense.ExpenseDate, expense.PaymentMethod, expense.UpdatedAt,
		expense.ID, expense.LedgerID,
	)
	return err
}

func (r expenses) Delete(ctx context.Context, ledgerID, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = $1 AND ledger_id = $2`, id, ledgerID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// filterClause builds the WHERE tail for a listing; filters are conjunctive.
func filterClause(filter models.ExpenseFilter, args []interface{}) (string, []interface{}) {
	clause := ""
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		clause += fmt.Sprintf(" AND expense_date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clause += fmt.Sprintf(" AND expense_date <= $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		clause += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	return clause, args
}

func (r expenses) List(ctx context.Context, ledgerID string, filter models.ExpenseFilter, offset, limit int) ([]models.Expense, int64, error) {
	args := []interface{}{ledgerID}
	clause, args := filterClause(filter, args)

	var total int64
	countQuery := `SELECT COUNT(*) FROM expenses WHERE ledger_id = $1` + clause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT `+expenseColumns+` FROM expenses WHERE ledger_id = $1%s
		 ORDER BY expense_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		clause, len(args)-1, len(args),
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r expenses) ListAll(ctx context.Context, ledgerID string, filter models.ExpenseFilter) ([]models.Expense, error) {
	args := []interface{}{ledgerID}
	clause, args := filterClause(filter, args)

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ledger_id = $1` + clause +
		` ORDER BY expense_date DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
