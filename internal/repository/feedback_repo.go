package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
)

// FeedbackRepository handles prompt test sessions and the ratings given on them
type FeedbackRepository struct {
	db *database.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *database.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// CreateSession stores a new in-progress feedback session
func (r *FeedbackRepository) CreateSession(s *models.FeedbackSession) error {
	settings, err := json.Marshal(s.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	program, err := json.Marshal(s.Program)
	if err != nil {
		return fmt.Errorf("failed to encode program: %w", err)
	}

	now := time.Now().UTC()
	s.Status = models.FeedbackInProgress
	query := `
		INSERT INTO feedback_sessions (user_id, prompt_version_id, settings_json, program_json, notes, status, analysis, suggested_prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '', '', ?, ?)
	`
	id, err := r.db.ExecReturningID(query, s.UserID, nullInt64(s.PromptVersionID), string(settings), string(program),
		s.Notes, string(s.Status), now, now)
	if err != nil {
		return fmt.Errorf("failed to create feedback session: %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

const feedbackSessionColumns = `id, user_id, prompt_version_id, settings_json, program_json, notes, status, analysis, suggested_prompt, created_at, updated_at`

func scanFeedbackSession(row interface{ Scan(...interface{}) error }) (*models.FeedbackSession, error) {
	s := &models.FeedbackSession{}
	var promptID sql.NullInt64
	var settings, program, status string
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&promptID,
		&settings,
		&program,
		&s.Notes,
		&status,
		&s.Analysis,
		&s.SuggestedPrompt,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if promptID.Valid {
		id := promptID.Int64
		s.PromptVersionID = &id
	}
	s.Status = models.FeedbackStatus(status)
	if err := json.Unmarshal([]byte(settings), &s.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := json.Unmarshal([]byte(program), &s.Program); err != nil {
		return nil, fmt.Errorf("failed to decode program: %w", err)
	}
	return s, nil
}

// GetSession retrieves a feedback session owned by userID
func (r *FeedbackRepository) GetSession(userID, id int64) (*models.FeedbackSession, error) {
	query := `SELECT ` + feedbackSessionColumns + ` FROM feedback_sessions WHERE id = ? AND user_id = ?`
	s, err := scanFeedbackSession(r.db.QueryRow(query, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback session: %w", err)
	}
	return s, nil
}

// ListSessions returns the user's sessions, newest first
func (r *FeedbackRepository) ListSessions(userID int64) ([]models.FeedbackSession, error) {
	query := `SELECT ` + feedbackSessionColumns + ` FROM feedback_sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.FeedbackSession
	for rows.Next() {
		s, err := scanFeedbackSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// UpdateNotes replaces the free-text notes of a session
func (r *FeedbackRepository) UpdateNotes(id int64, notes string) error {
	if _, err := r.db.Exec("UPDATE feedback_sessions SET notes = ?, updated_at = ? WHERE id = ?", notes, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update notes: %w", err)
	}
	return nil
}

// UpdateStatus moves a session between statuses. It reports false when the
// session was no longer in the from status.
func (r *FeedbackRepository) UpdateStatus(id int64, from, to models.FeedbackStatus) (bool, error) {
	query := `UPDATE feedback_sessions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := r.db.Exec(query, string(to), time.Now().UTC(), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update feedback status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read feedback update: %w", err)
	}
	return n == 1, nil
}

// SaveAnalysis stores the analysis and proposed prompt and marks the session analyzed
func (r *FeedbackRepository) SaveAnalysis(id int64, analysis models.FeedbackAnalysis) error {
	query := `
		UPDATE feedback_sessions
		SET analysis = ?, suggested_prompt = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, analysis.Analysis, analysis.SuggestedPrompt, string(models.FeedbackAnalyzed), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// UpsertQuestionFeedback creates or replaces the ratings of one question
func (r *FeedbackRepository) UpsertQuestionFeedback(f *models.QuestionFeedback) error {
	now := time.Now().UTC()
	cols := []string{"session_id", "day_index", "exercise_index", "question_index", "thumbs", "difficulty", "clarity", "comment", "created_at", "updated_at"}
	query := r.db.Dialect.Upsert("question_feedback", cols,
		[]string{"session_id", "day_index", "exercise_index", "question_index"},
		[]string{"thumbs", "difficulty", "clarity", "comment", "updated_at"})

	if _, err := r.db.Exec(query, f.SessionID, f.DayIndex, f.ExerciseIndex, f.QuestionIndex,
		f.Thumbs, f.Difficulty, f.Clarity, f.Comment, now, now); err != nil {
		return fmt.Errorf("failed to save question feedback: %w", err)
	}
	f.UpdatedAt = now
	return nil
}

// ListQuestionFeedback returns the ratings of a session in program order
func (r *FeedbackRepository) ListQuestionFeedback(sessionID int64) ([]models.QuestionFeedback, error) {
	query := `
		SELECT id, session_id, day_index, exercise_index, question_index, thumbs, difficulty, clarity, comment, created_at, updated_at
		FROM question_feedback
		WHERE session_id = ?
		ORDER BY day_index, exercise_index, question_index
	`
	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query question feedback: %w", err)
	}
	defer rows.Close()

	var feedback []models.QuestionFeedback
	for rows.Next() {
		var f models.QuestionFeedback
		if err := rows.Scan(
			&f.ID, &f.SessionID, &f.DayIndex, &f.ExerciseIndex, &f.QuestionIndex,
			&f.Thumbs, &f.Difficulty, &f.Clarity, &f.Comment, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan question feedback: %w", err)
		}
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
