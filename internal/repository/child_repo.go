package repository

import (
	"database/sql"
	"fmt"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
)

// ChildRepository handles children, their parent connections and connection invites
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// CreateChild creates a child and connects it to the creating parent.
// The connection is primary when the parent had no children yet.
func (r *ChildRepository) CreateChild(userID int64, name, schoolLevel string, level int, avatarEmoji string) (*models.ConnectedChild, error) {
	now := time.Now().UTC()
	child := &models.ConnectedChild{
		Child: models.Child{
			Name:        name,
			SchoolLevel: schoolLevel,
			Level:       level,
			AvatarEmoji: avatarEmoji,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	err := r.db.WithTx(func(tx *database.Tx) error {
		query := `
			INSERT INTO children (name, school_level, level, avatar_emoji, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		id, err := tx.ExecReturningID(query, name, schoolLevel, level, avatarEmoji, now, now)
		if err != nil {
			return fmt.Errorf("failed to create child: %w", err)
		}
		child.ID = id

		isPrimary, err := r.connect(tx, userID, id, now)
		if err != nil {
			return err
		}
		child.IsPrimary = isPrimary
		return nil
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// connect inserts a connection, primary when the user has no other children
func (r *ChildRepository) connect(tx database.DBTX, userID, childID int64, now time.Time) (bool, error) {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM parent_child_connections WHERE user_id = ?", userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count connections: %w", err)
	}
	isPrimary := count == 0

	query := `
		INSERT INTO parent_child_connections (user_id, child_id, is_primary, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, userID, childID, isPrimary, now); err != nil {
		return false, fmt.Errorf("failed to connect child: %w", err)
	}
	return isPrimary, nil
}

// Connect links an existing child to a parent. It reports false when the
// parent was already connected.
func (r *ChildRepository) Connect(userID, childID int64) (bool, error) {
	added := false
	err := r.db.WithTx(func(tx *database.Tx) error {
		var count int
		query := "SELECT COUNT(*) FROM parent_child_connections WHERE user_id = ? AND child_id = ?"
		if err := tx.QueryRow(query, userID, childID).Scan(&count); err != nil {
			return fmt.Errorf("failed to check connection: %w", err)
		}
		if count > 0 {
			return nil
		}
		if _, err := r.connect(tx, userID, childID, time.Now().UTC()); err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}

const connectedChildColumns = `c.id, c.name, c.school_level, c.level, c.avatar_emoji, c.created_at, c.updated_at, pc.is_primary`

func scanConnectedChild(row interface{ Scan(...interface{}) error }) (*models.ConnectedChild, error) {
	child := &models.ConnectedChild{}
	err := row.Scan(
		&child.ID,
		&child.Name,
		&child.SchoolLevel,
		&child.Level,
		&child.AvatarEmoji,
		&child.CreatedAt,
		&child.UpdatedAt,
		&child.IsPrimary,
	)
	return child, err
}

// ListConnectedChildren returns the children of a parent in the order they were connected
func (r *ChildRepository) ListConnectedChildren(userID int64) ([]models.ConnectedChild, error) {
	query := `
		SELECT ` + connectedChildColumns + `
		FROM children c
		INNER JOIN parent_child_connections pc ON pc.child_id = c.id
		WHERE pc.user_id = ?
		ORDER BY pc.created_at ASC, pc.id ASC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.ConnectedChild
	for rows.Next() {
		child, err := scanConnectedChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}
	return children, rows.Err()
}

// GetConnectedChild returns the child when userID is connected to it, nil otherwise
func (r *ChildRepository) GetConnectedChild(userID, childID int64) (*models.ConnectedChild, error) {
	query := `
		SELECT ` + connectedChildColumns + `
		FROM children c
		INNER JOIN parent_child_connections pc ON pc.child_id = c.id
		WHERE pc.user_id = ? AND c.id = ?
	`
	child, err := scanConnectedChild(r.db.QueryRow(query, userID, childID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetChild retrieves a child by ID regardless of connections
func (r *ChildRepository) GetChild(childID int64) (*models.Child, error) {
	query := `SELECT id, name, school_level, level, avatar_emoji, created_at, updated_at FROM children WHERE id = ?`
	child := &models.Child{}
	err := r.db.QueryRow(query, childID).Scan(
		&child.ID,
		&child.Name,
		&child.SchoolLevel,
		&child.Level,
		&child.AvatarEmoji,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// UpdateChild updates a child's profile
func (r *ChildRepository) UpdateChild(childID int64, name, schoolLevel string, level int, avatarEmoji string) error {
	query := `
		UPDATE children
		SET name = ?, school_level = ?, level = ?, avatar_emoji = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, name, schoolLevel, level, avatarEmoji, time.Now().UTC(), childID); err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// RemoveConnection disconnects a parent from a child. The child is deleted
// when no parent remains, and when the removed connection was primary the
// parent's oldest remaining connection is promoted.
func (r *ChildRepository) RemoveConnection(userID, childID int64) (childDeleted bool, err error) {
	err = r.db.WithTx(func(tx *database.Tx) error {
		var wasPrimary bool
		query := "SELECT is_primary FROM parent_child_connections WHERE user_id = ? AND child_id = ?"
		if err := tx.QueryRow(query, userID, childID).Scan(&wasPrimary); err != nil {
			return fmt.Errorf("failed to get connection: %w", err)
		}

		if _, err := tx.Exec("DELETE FROM parent_child_connections WHERE user_id = ? AND child_id = ?", userID, childID); err != nil {
			return fmt.Errorf("failed to delete connection: %w", err)
		}

		var remaining int
		if err := tx.QueryRow("SELECT COUNT(*) FROM parent_child_connections WHERE child_id = ?", childID).Scan(&remaining); err != nil {
			return fmt.Errorf("failed to count parents: %w", err)
		}
		if remaining == 0 {
			if _, err := tx.Exec("DELETE FROM children WHERE id = ?", childID); err != nil {
				return fmt.Errorf("failed to delete child: %w", err)
			}
			childDeleted = true
		}

		if wasPrimary {
			return promoteOldest(tx, userID)
		}
		return nil
	})
	return childDeleted, err
}

func promoteOldest(tx database.DBTX, userID int64) error {
	var nextID int64
	query := `
		SELECT id FROM parent_child_connections
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	err := tx.QueryRow(query, userID).Scan(&nextID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find next primary child: %w", err)
	}
	if _, err := tx.Exec("UPDATE parent_child_connections SET is_primary = ? WHERE id = ?", true, nextID); err != nil {
		return fmt.Errorf("failed to promote child: %w", err)
	}
	return nil
}

// SetPrimary makes childID the only primary child of userID
func (r *ChildRepository) SetPrimary(userID, childID int64) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		if _, err := tx.Exec("UPDATE parent_child_connections SET is_primary = ? WHERE user_id = ?", false, userID); err != nil {
			return fmt.Errorf("failed to clear primary child: %w", err)
		}
		result, err := tx.Exec("UPDATE parent_child_connections SET is_primary = ? WHERE user_id = ? AND child_id = ?", true, userID, childID)
		if err != nil {
			return fmt.Errorf("failed to set primary child: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("child %d is not connected", childID)
		}
		return nil
	})
}

// CountParents returns how many parents are connected to a child
func (r *ChildRepository) CountParents(childID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM parent_child_connections WHERE child_id = ?", childID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count parents: %w", err)
	}
	return count, nil
}

// CreateInvite stores a connection invite
func (r *ChildRepository) CreateInvite(code string, childID, invitedBy int64, email string, expiresAt time.Time) (*models.ConnectionInvite, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO connection_invites (code, child_id, invited_by, email, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, code, childID, invitedBy, email, expiresAt.UTC(), false, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	return &models.ConnectionInvite{
		ID:        id,
		Code:      code,
		ChildID:   childID,
		InvitedBy: invitedBy,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetInviteByCode retrieves an invite by its code
func (r *ChildRepository) GetInviteByCode(code string) (*models.ConnectionInvite, error) {
	query := `
		SELECT id, code, child_id, invited_by, email, expires_at, used, created_at
		FROM connection_invites
		WHERE code = ?
	`
	inv := &models.ConnectionInvite{}
	err := r.db.QueryRow(query, code).Scan(
		&inv.ID, &inv.Code, &inv.ChildID, &inv.InvitedBy,
		&inv.Email, &inv.ExpiresAt, &inv.Used, &inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return inv, nil
}

// MarkInviteUsed flags an invite as used. It reports false when it was
// already used so an invite cannot be redeemed twice.
func (r *ChildRepository) MarkInviteUsed(id int64) (bool, error) {
	result, err := r.db.Exec("UPDATE connection_invites SET used = ? WHERE id = ? AND used = ?", true, id, false)
	if err != nil {
		return false, fmt.Errorf("failed to mark invite used: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read invite update: %w", err)
	}
	return n == 1, nil
}
