package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound      = errors.New("not_found")
	ErrNotConfigured = errors.New("store_not_configured")
)

// Store wraps DB access for spin results and the audit log. A Store
// opened without a DSN is unconfigured: every operation fails with
// ErrNotConfigured and callers run in degraded mode.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects using the given driver ("postgres" or "sqlite"). An
// empty dsn yields an unconfigured Store, not an error.
func Open(driver, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return &Store{}, nil
	}
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	if name == "sqlite3" {
		// sqlite handles one writer at a time; a second pooled
		// connection would also miss a :memory: database entirely.
		db.SetMaxOpenConns(1)
	}
	return &Store{DB: db, driver: name}, nil
}

func driverName(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "pgx":
		return "pgx", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}

func (s *Store) IsConfigured() bool {
	return s != nil && s.DB != nil
}

func (s *Store) Ping(ctx context.Context) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	if !s.IsConfigured() {
		return nil
	}
	return s.DB.Close()
}

// rebind rewrites ? placeholders to $1..$n for postgres. Queries in
// this package are written with ?, the sqlite-native form.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
