package database

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "maitje_test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	db := newTestDB(t)

	tables := []string{
		"users", "sessions", "children", "parent_child_connections", "connection_invites",
		"exercise_sessions", "exercise_results", "daily_progress", "daily_plan_items",
		"weekly_programs", "week_progress", "prompt_versions", "feedback_sessions",
		"question_feedback", "blocked_words",
	}

	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running again is a no-op
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
}

// TestDatabaseTransactions tests commit and rollback through WithTx
func TestDatabaseTransactions(t *testing.T) {
	db := newTestDB(t)

	err := db.WithTx(func(tx *Tx) error {
		_, err := tx.ExecReturningID("INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
			"ouder@example.com", "hash", "Ouder")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", "ouder@example.com").Scan(&count); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	// A duplicate email fails and rolls back the first insert of the batch too
	err = db.WithTx(func(tx *Tx) error {
		if _, err := tx.Exec("INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
			"tweede@example.com", "hash", "Tweede"); err != nil {
			return err
		}
		_, err := tx.Exec("INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
			"ouder@example.com", "hash", "Dubbel")
		return err
	})
	if err == nil {
		t.Fatal("expected unique constraint error")
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user after rollback, got %d", count)
	}
}

func TestBlockedWords(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.AddBlockedWords([]string{" Poep ", "poep", "", "stom"}); err != nil {
		t.Fatalf("AddBlockedWords failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM blocked_words").Scan(&count); err != nil {
		t.Fatalf("Failed to count blocked words: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 distinct blocked words, got %d", count)
	}

	found, err := db.FindBlockedWords("Een week over POEP en dino's")
	if err != nil {
		t.Fatalf("FindBlockedWords failed: %v", err)
	}
	if len(found) != 1 || found[0] != "POEP" {
		t.Errorf("FindBlockedWords = %v, want [POEP]", found)
	}

	clean, err := db.FindBlockedWords("Dieren op de boerderij")
	if err != nil {
		t.Fatalf("FindBlockedWords failed: %v", err)
	}
	if len(clean) != 0 {
		t.Errorf("expected no blocked words, got %v", clean)
	}
}

func TestSplitStatements(t *testing.T) {
	content := `
-- leading comment
CREATE TABLE a (id INTEGER);

CREATE TABLE b (id INTEGER);
-- trailing comment
`
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
}
