// Package postgres implements the repository contracts over database/sql
// and lib/pq.
package postgres

import (
	"database/sql"

	"github.com/famoney/famoney-api/repository"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.Users             { return users{s.db} }
func (s *Store) Ledgers() repository.Ledgers         { return ledgers{s.db} }
func (s *Store) Members() repository.Members         { return members{s.db} }
func (s *Store) Expenses() repository.Expenses       { return expenses{s.db} }
func (s *Store) Categories() repository.Categories   { return categories{s.db} }
func (s *Store) Invitations() repository.Invitations { return invitations{s.db} }
func (s *Store) Sessions() repository.Sessions       { return sessions{s.db} }
