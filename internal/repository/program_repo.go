package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
)

// ProgramRepository handles week programs and the children's progress through them
type ProgramRepository struct {
	db *database.DB
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *database.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// CreateProgram stores a new program
func (r *ProgramRepository) CreateProgram(p *models.WeeklyProgram) error {
	data, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("failed to encode program: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO weekly_programs (child_id, created_by, year, week, theme, status, program_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, p.ChildID, p.CreatedBy, p.Year, p.Week, p.Theme, string(p.Status), string(data), now, now)
	if err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

const programColumns = `id, child_id, created_by, year, week, theme, status, program_json, created_at, updated_at`

func scanProgram(row interface{ Scan(...interface{}) error }) (*models.WeeklyProgram, error) {
	p := &models.WeeklyProgram{}
	var status, content string
	if err := row.Scan(
		&p.ID,
		&p.ChildID,
		&p.CreatedBy,
		&p.Year,
		&p.Week,
		&p.Theme,
		&status,
		&content,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = models.ProgramStatus(status)
	if err := json.Unmarshal([]byte(content), &p.Content); err != nil {
		return nil, fmt.Errorf("failed to decode program: %w", err)
	}
	return p, nil
}

func (r *ProgramRepository) getOne(query string, args ...interface{}) (*models.WeeklyProgram, error) {
	p, err := scanProgram(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	return p, nil
}

// GetProgram retrieves a program by ID
func (r *ProgramRepository) GetProgram(id int64) (*models.WeeklyProgram, error) {
	return r.getOne(`SELECT `+programColumns+` FROM weekly_programs WHERE id = ?`, id)
}

// GetProgramByWeek retrieves the program of a child for an ISO year and week
func (r *ProgramRepository) GetProgramByWeek(childID int64, year, week int) (*models.WeeklyProgram, error) {
	return r.getOne(`SELECT `+programColumns+` FROM weekly_programs WHERE child_id = ? AND year = ? AND week = ?`, childID, year, week)
}

// ListPrograms returns a child's programs, most recent week first
func (r *ProgramRepository) ListPrograms(childID int64) ([]models.WeeklyProgram, error) {
	query := `
		SELECT ` + programColumns + `
		FROM weekly_programs
		WHERE child_id = ?
		ORDER BY year DESC, week DESC
	`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []models.WeeklyProgram
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, *p)
	}
	return programs, rows.Err()
}

// UpdateContent replaces theme and content of a program that is still a draft.
// It reports false when the program is no longer a draft.
func (r *ProgramRepository) UpdateContent(id int64, theme string, content models.ProgramContent) (bool, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return false, fmt.Errorf("failed to encode program: %w", err)
	}
	query := `
		UPDATE weekly_programs
		SET theme = ?, program_json = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, theme, string(data), time.Now().UTC(), id, string(models.ProgramDraft))
	if err != nil {
		return false, fmt.Errorf("failed to update program: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read program update: %w", err)
	}
	return n == 1, nil
}

// UpdateStatus moves a program between statuses. It reports false when the
// program was no longer in the from status.
func (r *ProgramRepository) UpdateStatus(id int64, from, to models.ProgramStatus) (bool, error) {
	query := `UPDATE weekly_programs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := r.db.Exec(query, string(to), time.Now().UTC(), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update program status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read program update: %w", err)
	}
	return n == 1, nil
}

// DeleteProgram deletes a program and its progress
func (r *ProgramRepository) DeleteProgram(id int64) error {
	if _, err := r.db.Exec("DELETE FROM weekly_programs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}
	return nil
}

func getProgress(q database.DBTX, childID, programID int64) (*models.WeekProgress, error) {
	query := `
		SELECT id, child_id, program_id, current_day, current_step, completed_items, skipped_items, updated_at
		FROM week_progress
		WHERE child_id = ? AND program_id = ?
	`
	p := &models.WeekProgress{}
	var completed, skipped string
	err := q.QueryRow(query, childID, programID).Scan(
		&p.ID, &p.ChildID, &p.ProgramID, &p.CurrentDay, &p.CurrentStep,
		&completed, &skipped, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get week progress: %w", err)
	}
	if err := json.Unmarshal([]byte(completed), &p.CompletedItems); err != nil {
		return nil, fmt.Errorf("failed to decode completed items: %w", err)
	}
	if err := json.Unmarshal([]byte(skipped), &p.SkippedItems); err != nil {
		return nil, fmt.Errorf("failed to decode skipped items: %w", err)
	}
	return p, nil
}

// GetProgress returns the progress of a child through a program, nil when
// the child has not started it
func (r *ProgramRepository) GetProgress(childID, programID int64) (*models.WeekProgress, error) {
	return getProgress(r.db, childID, programID)
}

// UpdateProgress loads the progress row (zero-valued when missing), lets apply
// modify it and upserts the result in one transaction
func (r *ProgramRepository) UpdateProgress(childID, programID int64, apply func(p *models.WeekProgress) error) (*models.WeekProgress, error) {
	var progress *models.WeekProgress
	err := r.db.WithTx(func(tx *database.Tx) error {
		var err error
		progress, err = getProgress(tx, childID, programID)
		if err != nil {
			return err
		}
		if progress == nil {
			progress = &models.WeekProgress{ChildID: childID, ProgramID: programID}
		}

		if err := apply(progress); err != nil {
			return err
		}
		progress.UpdatedAt = time.Now().UTC()

		completed, err := json.Marshal(nonNil(progress.CompletedItems))
		if err != nil {
			return fmt.Errorf("failed to encode completed items: %w", err)
		}
		skipped, err := json.Marshal(nonNil(progress.SkippedItems))
		if err != nil {
			return fmt.Errorf("failed to encode skipped items: %w", err)
		}

		cols := []string{"child_id", "program_id", "current_day", "current_step", "completed_items", "skipped_items", "updated_at"}
		query := tx.GetDialect().Upsert("week_progress", cols,
			[]string{"child_id", "program_id"},
			[]string{"current_day", "current_step", "completed_items", "skipped_items", "updated_at"})
		if _, err := tx.Exec(query, childID, programID, progress.CurrentDay, progress.CurrentStep,
			string(completed), string(skipped), progress.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save week progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// nonNil keeps empty sets encoded as [] rather than null
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
