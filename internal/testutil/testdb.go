package testutil

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"lucky-wheel/internal/config"
	"lucky-wheel/internal/store"

	"github.com/jackc/pgx/v5"
)

var testSchemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// OpenTestStore returns a ready store for one test plus its cleanup.
// The default sqlite :memory: backend needs nothing installed; with
// TEST_DB_DRIVER=postgres each test gets its own throwaway schema.
func OpenTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.TestDBDriver)) {
	case "postgres", "pgx":
		return openPostgresTestStore(t, cfg.TestDatabaseDSN)
	default:
		return openSQLiteTestStore(t, cfg.TestDatabaseDSN)
	}
}

func openSQLiteTestStore(t *testing.T, dsn string) (*store.Store, func()) {
	t.Helper()
	st, err := store.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		st.Close()
		t.Fatalf("ensure schema: %v", err)
	}
	return st, func() { st.Close() }
}

func openPostgresTestStore(t *testing.T, dsn string) (*store.Store, func()) {
	t.Helper()
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	base, err := store.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open base db: %v", err)
	}
	createSchemaSQL, err := schemaDDL("CREATE SCHEMA %s", schema)
	if err != nil {
		base.Close()
		t.Fatalf("invalid schema name: %v", err)
	}
	if _, err := base.DB.ExecContext(context.Background(), createSchemaSQL); err != nil {
		base.Close()
		t.Skipf("skip test db: create schema: %v", err)
	}
	base.Close()

	st, err := store.Open("postgres", withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		st.Close()
		t.Fatalf("ensure schema: %v", err)
	}

	cleanup := func() {
		st.Close()
		base, err := store.Open("postgres", dsn)
		if err == nil {
			if dropSchemaSQL, ddlErr := schemaDDL("DROP SCHEMA %s CASCADE", schema); ddlErr == nil {
				_, _ = base.DB.ExecContext(context.Background(), dropSchemaSQL)
			}
			base.Close()
		}
	}
	return st, cleanup
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}

func schemaDDL(format, schema string) (string, error) {
	if !testSchemaNamePattern.MatchString(schema) {
		return "", fmt.Errorf("schema %q does not match required pattern", schema)
	}
	return fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()), nil
}
