package repository

import (
	"database/sql"
	"fmt"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
)

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, child_display_name, oauth_provider, oauth_subject, is_developer, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.ChildDisplayName,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.IsDeveloper,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// CreateUser inserts a new user into the database
func (r *UserRepository) CreateUser(email, passwordHash, name, childDisplayName string, isDeveloper bool) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, child_display_name, oauth_provider, oauth_subject, is_developer)
		VALUES (?, ?, ?, ?, '', '', ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, name, childDisplayName, isDeveloper)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	now := time.Now().UTC()
	return &models.User{
		ID:               id,
		Email:            email,
		PasswordHash:     passwordHash,
		Name:             name,
		ChildDisplayName: childDisplayName,
		IsDeveloper:      isDeveloper,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CreateOAuthUser inserts a user that signs in through an OAuth provider only
func (r *UserRepository) CreateOAuthUser(email, name, provider, subject string, isDeveloper bool) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, child_display_name, oauth_provider, oauth_subject, is_developer)
		VALUES (?, '', ?, '', ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, name, provider, subject, isDeveloper)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}

	now := time.Now().UTC()
	return &models.User{
		ID:            id,
		Email:         email,
		Name:          name,
		OAuthProvider: provider,
		OAuthSubject:  subject,
		IsDeveloper:   isDeveloper,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`
	user, err := scanUser(r.db.QueryRow(query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by oauth: %w", err)
	}
	return user, nil
}

// GetAllUsers retrieves all users, oldest first
func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateProfile updates the name and the name the child sees for the parent
func (r *UserRepository) UpdateProfile(id int64, name, childDisplayName string) error {
	query := `
		UPDATE users
		SET name = ?, child_display_name = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, name, childDisplayName, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetDeveloper updates the developer flag
func (r *UserRepository) SetDeveloper(id int64, isDeveloper bool) error {
	if _, err := r.db.Exec("UPDATE users SET is_developer = ? WHERE id = ?", isDeveloper, id); err != nil {
		return fmt.Errorf("failed to update developer flag: %w", err)
	}
	return nil
}

// LinkOAuthProvider links an existing user to an OAuth provider
func (r *UserRepository) LinkOAuthProvider(userID int64, provider, subject string) error {
	query := `
		UPDATE users
		SET oauth_provider = ?, oauth_subject = ?, updated_at = ?
		WHERE id = ? AND oauth_provider = ''
	`
	result, err := r.db.Exec(query, provider, subject, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read link result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("oauth provider already linked")
	}
	return nil
}

// DeleteUser deletes a user and all associated data
func (r *UserRepository) DeleteUser(id int64) error {
	if _, err := r.db.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := `INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC()
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt.UTC(), now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := `SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?`
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session from the database
func (r *UserRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions and reports how many were removed
func (r *UserRepository) DeleteExpiredSessions() (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
