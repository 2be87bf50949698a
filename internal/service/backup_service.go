package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"maitje/internal/database"
)

// BackupVersion is written into every export
const BackupVersion = "2.0"

// backupTable lists the columns exported for one table
type backupTable struct {
	name    string
	columns []string
	serial  bool
}

// backupTables is in dependency order; imports run top to bottom and
// clearing runs bottom to top
var backupTables = []backupTable{
	{"users", []string{"id", "email", "password_hash", "name", "child_display_name", "oauth_provider", "oauth_subject", "is_developer", "created_at", "updated_at"}, true},
	{"sessions", []string{"id", "user_id", "expires_at", "created_at"}, false},
	{"children", []string{"id", "name", "school_level", "level", "avatar_emoji", "created_at", "updated_at"}, true},
	{"parent_child_connections", []string{"id", "user_id", "child_id", "is_primary", "created_at"}, true},
	{"connection_invites", []string{"id", "code", "child_id", "invited_by", "email", "expires_at", "used", "created_at"}, true},
	{"exercise_sessions", []string{"id", "child_id", "category", "level", "questions_json", "correct_count", "total_count", "started_at", "completed_at"}, true},
	{"exercise_results", []string{"id", "session_id", "question_index", "given_answer", "expected_answer", "is_correct", "created_at"}, true},
	{"daily_progress", []string{"id", "child_id", "progress_date", "sessions_count", "exercises_count", "correct_count", "streak", "updated_at"}, true},
	{"daily_plan_items", []string{"id", "child_id", "plan_date", "position", "category", "title", "description", "status", "started_at", "completed_at", "created_at"}, true},
	{"weekly_programs", []string{"id", "child_id", "created_by", "year", "week", "theme", "status", "program_json", "created_at", "updated_at"}, true},
	{"week_progress", []string{"id", "child_id", "program_id", "current_day", "current_step", "completed_items", "skipped_items", "updated_at"}, true},
	{"prompt_versions", []string{"id", "user_id", "name", "prompt_text", "notes", "is_active", "created_at", "updated_at"}, true},
	{"feedback_sessions", []string{"id", "user_id", "prompt_version_id", "settings_json", "program_json", "notes", "status", "analysis", "suggested_prompt", "created_at", "updated_at"}, true},
	{"question_feedback", []string{"id", "session_id", "day_index", "exercise_index", "question_index", "thumbs", "difficulty", "clarity", "comment", "created_at", "updated_at"}, true},
}

// BackupTables returns the exported table names in import order
func BackupTables() []string {
	names := make([]string, len(backupTables))
	for i, t := range backupTables {
		names[i] = t.name
	}
	return names
}

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string        `json:"version"`
	ExportedAt   time.Time     `json:"exported_at"`
	DatabaseType string        `json:"database_type"`
	Tables       []TableBackup `json:"tables"`
}

// TableBackup holds the rows of one table
type TableBackup struct {
	Name    string          `json:"name"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// timestampLayout is accepted by SQLite, PostgreSQL and MySQL alike
const timestampLayout = "2006-01-02 15:04:05.999999"

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.MigrationsSubdir(),
	}

	for _, table := range backupTables {
		t, err := s.exportTable(table)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", table.name, err)
		}
		backup.Tables = append(backup.Tables, *t)
		log.Printf("Exported %d rows from %s", len(t.Rows), table.name)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

func (s *BackupService) exportTable(table backupTable) (*TableBackup, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(table.columns, ", "), table.name)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &TableBackup{Name: table.name, Columns: table.columns, Rows: [][]interface{}{}}
	for rows.Next() {
		values := make([]interface{}, len(table.columns))
		ptrs := make([]interface{}, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			switch val := v.(type) {
			case []byte:
				values[i] = string(val)
			case time.Time:
				values[i] = val.UTC().Format(timestampLayout)
			}
		}
		t.Rows = append(t.Rows, values)
	}
	return t, rows.Err()
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader. All rows are
// inserted in one transaction.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s from %s", backup.Version, backup.ExportedAt, backup.DatabaseType)

	known := make(map[string]backupTable, len(backupTables))
	for _, table := range backupTables {
		known[table.name] = table
	}
	byName := make(map[string]TableBackup, len(backup.Tables))
	for _, t := range backup.Tables {
		table, ok := known[t.Name]
		if !ok {
			return fmt.Errorf("unknown table %q in backup", t.Name)
		}
		if err := checkColumns(table, t.Columns); err != nil {
			return err
		}
		byName[t.Name] = t
	}

	err := s.db.WithTx(func(tx *database.Tx) error {
		for _, table := range backupTables {
			t, ok := byName[table.name]
			if !ok {
				continue
			}
			query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(t.Columns, ", "),
				strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", "))
			for i, row := range t.Rows {
				if len(row) != len(t.Columns) {
					return fmt.Errorf("%s row %d has %d values, want %d", t.Name, i, len(row), len(t.Columns))
				}
				if _, err := tx.Exec(query, row...); err != nil {
					return fmt.Errorf("failed to import %s row %d: %w", t.Name, i, err)
				}
			}
			log.Printf("Imported %d rows into %s", len(t.Rows), t.Name)
		}
		return resetSequences(tx)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func checkColumns(table backupTable, columns []string) error {
	allowed := make(map[string]bool, len(table.columns))
	for _, c := range table.columns {
		allowed[c] = true
	}
	for _, c := range columns {
		if !allowed[c] {
			return fmt.Errorf("unknown column %q for table %s", c, table.name)
		}
	}
	return nil
}

// resetSequences moves PostgreSQL serial sequences past the imported ids
func resetSequences(tx *database.Tx) error {
	if tx.GetDialect().MigrationsSubdir() != "postgres" {
		return nil
	}
	for _, table := range backupTables {
		if !table.serial {
			continue
		}
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table.name, table.name)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table.name, err)
		}
	}
	return nil
}

// Clear deletes all rows of the backed up tables
func (s *BackupService) Clear() error {
	return s.db.WithTx(func(tx *database.Tx) error {
		for i := len(backupTables) - 1; i >= 0; i-- {
			name := backupTables[i].name
			if _, err := tx.Exec("DELETE FROM " + name); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", name, err)
			}
			log.Printf("Cleared table: %s", name)
		}
		return nil
	})
}
