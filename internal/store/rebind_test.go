package store

import "testing"

func TestRebindPostgres(t *testing.T) {
	s := &Store{driver: "pgx"}
	got := s.rebind(`INSERT INTO t (a, b, c) VALUES (?,?,?)`)
	want := `INSERT INTO t (a, b, c) VALUES ($1,$2,$3)`
	if got != want {
		t.Fatalf("rebind = %q, want %q", got, want)
	}
}

func TestRebindSQLitePassthrough(t *testing.T) {
	s := &Store{driver: "sqlite3"}
	q := `SELECT * FROM t WHERE a = ? LIMIT ?`
	if got := s.rebind(q); got != q {
		t.Fatalf("rebind = %q, want unchanged", got)
	}
}
