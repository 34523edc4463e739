// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Junito34/mon-site/internal/database"
)

// testDB opens the test database and brings its schema up to date. The
// connection details default to docker-compose.yml's and can be overridden
// through the usual POSTGRES_* variables.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	dsn := "postgres://" + get("POSTGRES_USER", "monsite") +
		":" + get("POSTGRES_PASSWORD", "changeme") +
		"@" + get("POSTGRES_HOST", "localhost") +
		":" + get("POSTGRES_PORT", "5432") +
		"/" + get("POSTGRES_DB", "monsite") + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err == nil {
		err = db.Ping()
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		t.Skipf("PostgreSQL not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	// Migrate points goose at the embedded FS; reset the global so other
	// packages' helpers start clean.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanArticles removes test articles by slug; their blocks go with them
// via the cascade foreign key. Call in t.Cleanup().
func cleanArticles(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM articles WHERE slug = $1", slug)
	}
}

// cleanComments removes test comments by article key. Call in t.Cleanup().
func cleanComments(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	for _, key := range keys {
		db.Exec("DELETE FROM comments WHERE article_key = $1", key)
	}
}
