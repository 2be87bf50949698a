package repository

import (
	"database/sql"
	"fmt"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
)

// PromptRepository handles the prompt versions of developers
type PromptRepository struct {
	db *database.DB
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(db *database.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// CreateVersion stores a new, inactive prompt version
func (r *PromptRepository) CreateVersion(userID int64, name, text, notes string) (*models.PromptVersion, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO prompt_versions (user_id, name, prompt_text, notes, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, userID, name, text, notes, false, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt version: %w", err)
	}

	return &models.PromptVersion{
		ID:         id,
		UserID:     userID,
		Name:       name,
		PromptText: text,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

const promptColumns = `id, user_id, name, prompt_text, notes, is_active, created_at, updated_at`

func scanPrompt(row interface{ Scan(...interface{}) error }) (*models.PromptVersion, error) {
	v := &models.PromptVersion{}
	err := row.Scan(&v.ID, &v.UserID, &v.Name, &v.PromptText, &v.Notes, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// GetVersion retrieves a prompt version owned by userID
func (r *PromptRepository) GetVersion(userID, id int64) (*models.PromptVersion, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_versions WHERE id = ? AND user_id = ?`
	v, err := scanPrompt(r.db.QueryRow(query, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prompt version: %w", err)
	}
	return v, nil
}

// GetActiveVersion returns the user's active version, nil when none is active
func (r *PromptRepository) GetActiveVersion(userID int64) (*models.PromptVersion, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_versions WHERE user_id = ? AND is_active = ?`
	v, err := scanPrompt(r.db.QueryRow(query, userID, true))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active prompt version: %w", err)
	}
	return v, nil
}

// ListVersions returns the user's versions, newest first
func (r *PromptRepository) ListVersions(userID int64) ([]models.PromptVersion, error) {
	query := `SELECT ` + promptColumns + ` FROM prompt_versions WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt versions: %w", err)
	}
	defer rows.Close()

	var versions []models.PromptVersion
	for rows.Next() {
		v, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// UpdateVersion changes name, text and notes of a version
func (r *PromptRepository) UpdateVersion(userID, id int64, name, text, notes string) error {
	query := `
		UPDATE prompt_versions
		SET name = ?, prompt_text = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	if _, err := r.db.Exec(query, name, text, notes, time.Now().UTC(), id, userID); err != nil {
		return fmt.Errorf("failed to update prompt version: %w", err)
	}
	return nil
}

// DeleteVersion deletes a version unless it is active. It reports false when
// nothing was deleted.
func (r *PromptRepository) DeleteVersion(userID, id int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM prompt_versions WHERE id = ? AND user_id = ? AND is_active = ?", id, userID, false)
	if err != nil {
		return false, fmt.Errorf("failed to delete prompt version: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read prompt delete: %w", err)
	}
	return n == 1, nil
}

// SetActive deactivates all of the user's versions and activates id, in one transaction
func (r *PromptRepository) SetActive(userID, id int64) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		now := time.Now().UTC()
		if _, err := tx.Exec("UPDATE prompt_versions SET is_active = ? WHERE user_id = ?", false, userID); err != nil {
			return fmt.Errorf("failed to deactivate prompt versions: %w", err)
		}
		result, err := tx.Exec("UPDATE prompt_versions SET is_active = ?, updated_at = ? WHERE id = ? AND user_id = ?", true, now, id, userID)
		if err != nil {
			return fmt.Errorf("failed to activate prompt version: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("prompt version %d not found", id)
		}
		return nil
	})
}
