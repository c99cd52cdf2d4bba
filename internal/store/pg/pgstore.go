// Package pg implements the SADCO query surface over PostgreSQL using
// database/sql with the pgx stdlib driver. Every query is request-scoped:
// the store holds only the connection pool, never session state.
package pg

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"sadco.org/internal/auth"
	"sadco.org/internal/survey"
)

type Store struct {
	db *sql.DB
}

var (
	_ survey.Service   = (*Store)(nil)
	_ auth.GrantsStore = (*Store)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing pool; used by tests with sqlmock.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }
