package database

import (
	"testing"
)

func TestDialectBasics(t *testing.T) {
	tests := []struct {
		name             string
		dialect          Dialect
		driver           string
		lastInsertID     bool
		migrationsSubdir string
	}{
		{"SQLite", NewSQLiteDialect(), "sqlite3", true, "sqlite"},
		{"PostgreSQL", NewPostgresDialect(), "postgres", false, "postgres"},
		{"MySQL", NewMySQLDialect(), "mysql", true, "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationsSubdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.migrationsSubdir)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM children WHERE id = ?",
			expected: "SELECT * FROM children WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM children WHERE id = ?",
			expected: "SELECT * FROM children WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO children (name, level) VALUES (?, ?)",
			expected: "INSERT INTO children (name, level) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE children SET name = ?, level = ? WHERE id = ?",
			expected: "UPDATE children SET name = ?, level = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	cols := []string{"child_id", "progress_date", "streak"}
	conflict := []string{"child_id", "progress_date"}
	update := []string{"streak"}

	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{
			name:     "SQLite",
			dialect:  NewSQLiteDialect(),
			expected: "INSERT INTO daily_progress (child_id, progress_date, streak) VALUES (?, ?, ?) ON CONFLICT (child_id, progress_date) DO UPDATE SET streak = excluded.streak",
		},
		{
			name:     "PostgreSQL",
			dialect:  NewPostgresDialect(),
			expected: "INSERT INTO daily_progress (child_id, progress_date, streak) VALUES (?, ?, ?) ON CONFLICT (child_id, progress_date) DO UPDATE SET streak = excluded.streak",
		},
		{
			name:     "MySQL",
			dialect:  NewMySQLDialect(),
			expected: "INSERT INTO daily_progress (child_id, progress_date, streak) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE streak = VALUES(streak)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.Upsert("daily_progress", cols, conflict, update)
			if result != tt.expected {
				t.Errorf("Upsert() =\n%v\nwant\n%v", result, tt.expected)
			}
		})
	}
}

func TestInsertIgnore(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		expected string
	}{
		{NewSQLiteDialect(), "INSERT OR IGNORE INTO blocked_words (word) VALUES (?)"},
		{NewPostgresDialect(), "INSERT INTO blocked_words (word) VALUES (?) ON CONFLICT DO NOTHING"},
		{NewMySQLDialect(), "INSERT IGNORE INTO blocked_words (word) VALUES (?)"},
	}

	for _, tt := range tests {
		if got := tt.dialect.InsertIgnore("blocked_words", []string{"word"}); got != tt.expected {
			t.Errorf("InsertIgnore() = %v, want %v", got, tt.expected)
		}
	}
}

func TestMySQLDSNParseTime(t *testing.T) {
	d := NewMySQLDialect()
	tests := map[string]string{
		"user:pw@tcp(db:3306)/maitje":                  "user:pw@tcp(db:3306)/maitje?parseTime=true",
		"user:pw@tcp(db:3306)/maitje?charset=utf8mb4":  "user:pw@tcp(db:3306)/maitje?charset=utf8mb4&parseTime=true",
		"user:pw@tcp(db:3306)/maitje?parseTime=false": "user:pw@tcp(db:3306)/maitje?parseTime=false",
	}
	for in, want := range tests {
		if got := d.DSN(DialectConfig{URL: in}); got != want {
			t.Errorf("DSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	d := NewSQLiteDialect()
	tests := map[string]string{
		"./maitje.db":               "./maitje.db?_foreign_keys=on&_busy_timeout=5000",
		"file:test.db?cache=shared": "file:test.db?cache=shared&_foreign_keys=on&_busy_timeout=5000",
	}
	for in, want := range tests {
		if got := d.DSN(DialectConfig{Path: in}); got != want {
			t.Errorf("DSN(%q) = %q, want %q", in, got, want)
		}
	}
}
