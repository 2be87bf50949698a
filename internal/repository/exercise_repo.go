package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
)

// ExerciseRepository handles exercise sessions, their results and daily progress
type ExerciseRepository struct {
	db *database.DB
}

// NewExerciseRepository creates a new exercise repository
func NewExerciseRepository(db *database.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// CreateSession stores a new session together with its generated questions
func (r *ExerciseRepository) CreateSession(childID int64, category models.ExerciseCategory, level int, questions []models.Question) (*models.ExerciseSession, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO exercise_sessions (child_id, category, level, questions_json, correct_count, total_count, started_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, childID, string(category), level, string(data), len(questions), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create exercise session: %w", err)
	}

	return &models.ExerciseSession{
		ID:         id,
		ChildID:    childID,
		Category:   category,
		Level:      level,
		Questions:  questions,
		TotalCount: len(questions),
		StartedAt:  now,
	}, nil
}

const exerciseSessionColumns = `id, child_id, category, level, questions_json, correct_count, total_count, started_at, completed_at`

func scanExerciseSession(row interface{ Scan(...interface{}) error }) (*models.ExerciseSession, error) {
	s := &models.ExerciseSession{}
	var category, questions string
	var completedAt sql.NullTime
	if err := row.Scan(
		&s.ID,
		&s.ChildID,
		&category,
		&s.Level,
		&questions,
		&s.CorrectCount,
		&s.TotalCount,
		&s.StartedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	s.Category = models.ExerciseCategory(category)
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	if err := json.Unmarshal([]byte(questions), &s.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return s, nil
}

// GetSession retrieves a session by ID
func (r *ExerciseRepository) GetSession(id int64) (*models.ExerciseSession, error) {
	query := `SELECT ` + exerciseSessionColumns + ` FROM exercise_sessions WHERE id = ?`
	s, err := scanExerciseSession(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise session: %w", err)
	}
	return s, nil
}

// ListSessions returns a child's most recent sessions, newest first
func (r *ExerciseRepository) ListSessions(childID int64, limit int) ([]models.ExerciseSession, error) {
	query := `
		SELECT ` + exerciseSessionColumns + `
		FROM exercise_sessions
		WHERE child_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.ExerciseSession
	for rows.Next() {
		s, err := scanExerciseSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// SessionCompletion holds the totals of a completed session and the daily
// progress row they were added to
type SessionCompletion struct {
	Correct  int
	Total    int
	Progress *models.DailyProgress
}

// CompleteSession stamps a session, totals its recorded results and lets
// apply add them to the child's daily progress, all in one transaction. It
// reports false when the session was already completed.
func (r *ExerciseRepository) CompleteSession(sessionID, childID int64, completedAt time.Time, date, previousDate string, apply func(c *SessionCompletion, today, previous *models.DailyProgress)) (*SessionCompletion, bool, error) {
	var completion *SessionCompletion
	err := r.db.WithTx(func(tx *database.Tx) error {
		result, err := tx.Exec(
			`UPDATE exercise_sessions SET completed_at = ? WHERE id = ? AND completed_at IS NULL`,
			completedAt.UTC(), sessionID)
		if err != nil {
			return fmt.Errorf("failed to complete exercise session: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read session update: %w", err)
		}
		if n != 1 {
			return nil
		}

		results, err := getResults(tx, sessionID)
		if err != nil {
			return err
		}
		c := &SessionCompletion{Total: len(results)}
		for _, res := range results {
			if res.IsCorrect {
				c.Correct++
			}
		}

		if _, err := tx.Exec(
			`UPDATE exercise_sessions SET correct_count = ?, total_count = ? WHERE id = ?`,
			c.Correct, c.Total, sessionID); err != nil {
			return fmt.Errorf("failed to save session totals: %w", err)
		}

		c.Progress, err = updateDailyProgress(tx, childID, date, previousDate, func(today, previous *models.DailyProgress) {
			apply(c, today, previous)
		})
		if err != nil {
			return err
		}
		completion = c
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return completion, completion != nil, nil
}

// RecordResult stores the answer to one question. It reports false when the
// question was already answered.
func (r *ExerciseRepository) RecordResult(res *models.ExerciseResult) (bool, error) {
	cols := []string{"session_id", "question_index", "given_answer", "expected_answer", "is_correct", "created_at"}
	query := r.db.Dialect.InsertIgnore("exercise_results", cols)
	res.CreatedAt = time.Now().UTC()

	result, err := r.db.Exec(query, res.SessionID, res.QuestionIndex, res.GivenAnswer, res.ExpectedAnswer, res.IsCorrect, res.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record result: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read result insert: %w", err)
	}
	return n == 1, nil
}

// GetResults returns the recorded answers of a session ordered by question
func (r *ExerciseRepository) GetResults(sessionID int64) ([]models.ExerciseResult, error) {
	return getResults(r.db, sessionID)
}

func getResults(q database.DBTX, sessionID int64) ([]models.ExerciseResult, error) {
	query := `
		SELECT id, session_id, question_index, given_answer, expected_answer, is_correct, created_at
		FROM exercise_results
		WHERE session_id = ?
		ORDER BY question_index
	`
	rows, err := q.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.ExerciseResult
	for rows.Next() {
		var res models.ExerciseResult
		if err := rows.Scan(
			&res.ID, &res.SessionID, &res.QuestionIndex, &res.GivenAnswer,
			&res.ExpectedAnswer, &res.IsCorrect, &res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func getDailyProgress(q database.DBTX, childID int64, date string) (*models.DailyProgress, error) {
	query := `
		SELECT id, child_id, progress_date, sessions_count, exercises_count, correct_count, streak, updated_at
		FROM daily_progress
		WHERE child_id = ? AND progress_date = ?
	`
	p := &models.DailyProgress{}
	err := q.QueryRow(query, childID, date).Scan(
		&p.ID, &p.ChildID, &p.Date, &p.SessionsCount,
		&p.ExercisesCount, &p.CorrectCount, &p.Streak, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily progress: %w", err)
	}
	return p, nil
}

// GetDailyProgress returns the progress row of a child for a date (YYYY-MM-DD)
func (r *ExerciseRepository) GetDailyProgress(childID int64, date string) (*models.DailyProgress, error) {
	return getDailyProgress(r.db, childID, date)
}

// UpdateDailyProgress loads today's and the previous day's rows, lets apply
// modify today's row and upserts the result, all in one transaction. today is
// passed zero-valued when the child has no row for date yet.
func (r *ExerciseRepository) UpdateDailyProgress(childID int64, date, previousDate string, apply func(today *models.DailyProgress, previous *models.DailyProgress)) (*models.DailyProgress, error) {
	var today *models.DailyProgress
	err := r.db.WithTx(func(tx *database.Tx) error {
		var err error
		today, err = updateDailyProgress(tx, childID, date, previousDate, apply)
		return err
	})
	if err != nil {
		return nil, err
	}
	return today, nil
}

func updateDailyProgress(tx *database.Tx, childID int64, date, previousDate string, apply func(today, previous *models.DailyProgress)) (*models.DailyProgress, error) {
	today, err := getDailyProgress(tx, childID, date)
	if err != nil {
		return nil, err
	}
	if today == nil {
		today = &models.DailyProgress{ChildID: childID, Date: date}
	}
	previous, err := getDailyProgress(tx, childID, previousDate)
	if err != nil {
		return nil, err
	}

	apply(today, previous)
	today.UpdatedAt = time.Now().UTC()

	cols := []string{"child_id", "progress_date", "sessions_count", "exercises_count", "correct_count", "streak", "updated_at"}
	query := tx.GetDialect().Upsert("daily_progress", cols,
		[]string{"child_id", "progress_date"},
		[]string{"sessions_count", "exercises_count", "correct_count", "streak", "updated_at"})
	if _, err := tx.Exec(query, childID, date, today.SessionsCount, today.ExercisesCount, today.CorrectCount, today.Streak, today.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to save daily progress: %w", err)
	}
	return today, nil
}

// ListDailyProgress returns the rows on or after since, newest first
func (r *ExerciseRepository) ListDailyProgress(childID int64, since string) ([]models.DailyProgress, error) {
	query := `
		SELECT id, child_id, progress_date, sessions_count, exercises_count, correct_count, streak, updated_at
		FROM daily_progress
		WHERE child_id = ? AND progress_date >= ?
		ORDER BY progress_date DESC
	`
	rows, err := r.db.Query(query, childID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily progress: %w", err)
	}
	defer rows.Close()

	var progress []models.DailyProgress
	for rows.Next() {
		var p models.DailyProgress
		if err := rows.Scan(
			&p.ID, &p.ChildID, &p.Date, &p.SessionsCount,
			&p.ExercisesCount, &p.CorrectCount, &p.Streak, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily progress: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
