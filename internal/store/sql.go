package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed schema.sql
var schemaSQL string

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

var (
	_ core.PrincipalStore  = (*SQLPrincipalStore)(nil)
	_ core.PrincipalLister = (*SQLPrincipalStore)(nil)
)

// SQLPrincipalStore reads credentials from the users and user_authorities tables.
type SQLPrincipalStore struct {
	db *sqlx.DB
}

// NewSQLPrincipalStore connects to the database using driver ("postgres" or "sqlite").
func NewSQLPrincipalStore(ctx context.Context, driver, dsn string) (*SQLPrincipalStore, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// every sqlite connection to ":memory:" opens its own database
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &SQLPrincipalStore{db: db}, nil
}

func (s *SQLPrincipalStore) Close() error {
	return s.db.Close()
}

// Migrate creates the credential tables if they do not exist.
func (s *SQLPrincipalStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Put inserts or replaces a credential and its authorities in one transaction.
func (s *SQLPrincipalStore) Put(ctx context.Context, cred core.Credential) error {
	if cred.Username == "" {
		return fmt.Errorf("username must not be empty")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM user_authorities WHERE username = ?`), cred.Username); err != nil {
		return fmt.Errorf("clearing authorities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE username = ?`), cred.Username); err != nil {
		return fmt.Errorf("clearing user: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (:username, :password_hash)`, cred); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	for _, authority := range cred.Authorities {
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO user_authorities (username, authority) VALUES (?, ?)`),
			cred.Username, authority); err != nil {
			return fmt.Errorf("inserting authority %q: %w", authority, err)
		}
	}

	return tx.Commit()
}

func (s *SQLPrincipalStore) LoadByUsername(ctx context.Context, username string) (*core.Credential, error) {
	var cred core.Credential
	err := s.db.GetContext(ctx, &cred,
		s.db.Rebind(`SELECT username, password_hash FROM users WHERE username = ?`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user %q: %w", username, err)
	}

	if err := s.db.SelectContext(ctx, &cred.Authorities,
		s.db.Rebind(`SELECT authority FROM user_authorities WHERE username = ? ORDER BY authority`), username); err != nil {
		return nil, fmt.Errorf("loading authorities of %q: %w", username, err)
	}
	return &cred, nil
}

func (s *SQLPrincipalStore) List(ctx context.Context) ([]core.Credential, error) {
	var creds []core.Credential
	if err := s.db.SelectContext(ctx, &creds,
		`SELECT username, password_hash FROM users ORDER BY username`); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var rows []struct {
		Username  string `db:"username"`
		Authority string `db:"authority"`
	}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT username, authority FROM user_authorities ORDER BY username, authority`); err != nil {
		return nil, fmt.Errorf("listing authorities: %w", err)
	}

	byUser := make(map[string][]string, len(creds))
	for _, r := range rows {
		byUser[r.Username] = append(byUser[r.Username], r.Authority)
	}
	for i := range creds {
		creds[i].Authorities = byUser[creds[i].Username]
	}
	return creds, nil
}
