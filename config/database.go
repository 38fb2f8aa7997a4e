package config

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/famoney/famoney-api/models"
)

func InitDB(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			avatar TEXT,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ledgers (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) NOT NULL,
			description VARCHAR(500) DEFAULT '',
			currency CHAR(3) NOT NULL DEFAULT 'KRW',
			created_by UUID REFERENCES users(id),
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS members (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			ledger_id UUID REFERENCES ledgers(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id),
			role VARCHAR(20) NOT NULL,
			invited_by UUID,
			joined_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(ledger_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS invitations (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			ledger_id UUID REFERENCES ledgers(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			invited_by UUID REFERENCES users(id),
			token VARCHAR(255) UNIQUE NOT NULL,
			status VARCHAR(50) DEFAULT 'pending',
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			ledger_id UUID,
			name VARCHAR(50) NOT NULL,
			color VARCHAR(20) NOT NULL,
			icon VARCHAR(50) DEFAULT '',
			is_default BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			ledger_id UUID REFERENCES ledgers(id) ON DELETE CASCADE,
			category_id UUID,
			amount BIGINT NOT NULL,
			description VARCHAR(255) NOT NULL,
			expense_date DATE NOT NULL,
			payment_method VARCHAR(20),
			created_by UUID,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_members_ledger_id ON members(ledger_id)`,
		`CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations(email)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_token ON invitations(token)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_ledger_date ON expenses(ledger_id, expense_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_ledger_id ON categories(ledger_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return SeedDefaultCategories(db)
}

// SeedDefaultCategories inserts the shared default category set, skipping
// names that already exist.
func SeedDefaultCategories(db *sql.DB) error {
	for _, c := range models.DefaultCategories() {
		_, err := db.Exec(`
			INSERT INTO categories (id, name, color, is_default)
			SELECT $1, $2, $3, TRUE
			WHERE NOT EXISTS (
				SELECT 1 FROM categories WHERE name = $2 AND is_default = TRUE
			)
		`, uuid.New().String(), c.Name, c.Color)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return nil
}
