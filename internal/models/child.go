package models

import "time"

// Child represents a child profile. Children are shared between parents
// through connections.
type Child struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SchoolLevel string    `json:"school_level"`
	Level       int       `json:"level"`
	AvatarEmoji string    `json:"avatar_emoji"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChildConnection links a parent account to a child
type ChildConnection struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ChildID   int64     `json:"child_id"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectedChild is a child as seen by one parent
type ConnectedChild struct {
	Child
	IsPrimary bool `json:"is_primary"`
}

// ConnectionInvite lets a second parent connect to an existing child
type ConnectionInvite struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	ChildID   int64     `json:"child_id"`
	InvitedBy int64     `json:"invited_by"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the invite can no longer be accepted
func (i *ConnectionInvite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
