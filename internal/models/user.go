package models

import "time"

// User represents a parent/guardian account (the profile)
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Name             string    `json:"name"`
	ChildDisplayName string    `json:"child_display_name"`
	OAuthProvider    string    `json:"oauth_provider,omitempty"`
	OAuthSubject     string    `json:"-"`
	IsDeveloper      bool      `json:"is_developer"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
