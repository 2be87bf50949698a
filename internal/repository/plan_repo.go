package repository

import (
	"database/sql"
	"fmt"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
)

// PlanRepository handles the daily plan items of children
type PlanRepository struct {
	db *database.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *database.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planItemColumns = `id, child_id, plan_date, position, category, title, description, status, started_at, completed_at, created_at`

func scanPlanItem(row interface{ Scan(...interface{}) error }) (*models.DailyPlanItem, error) {
	item := &models.DailyPlanItem{}
	var category, status string
	var startedAt, completedAt sql.NullTime
	if err := row.Scan(
		&item.ID,
		&item.ChildID,
		&item.PlanDate,
		&item.Position,
		&category,
		&item.Title,
		&item.Description,
		&status,
		&startedAt,
		&completedAt,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}
	item.Category = models.ExerciseCategory(category)
	item.Status = models.PlanItemStatus(status)
	if startedAt.Valid {
		t := startedAt.Time
		item.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		item.CompletedAt = &t
	}
	return item, nil
}

// ListItems returns a child's plan for a date ordered by position
func (r *PlanRepository) ListItems(childID int64, date string) ([]models.DailyPlanItem, error) {
	query := `
		SELECT ` + planItemColumns + `
		FROM daily_plan_items
		WHERE child_id = ? AND plan_date = ?
		ORDER BY position
	`
	rows, err := r.db.Query(query, childID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan items: %w", err)
	}
	defer rows.Close()

	var items []models.DailyPlanItem
	for rows.Next() {
		item, err := scanPlanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateItems inserts the plan for a date. Positions that already exist are
// left alone so two concurrent first visits produce a single plan.
func (r *PlanRepository) CreateItems(childID int64, date string, items []models.DailyPlanItem) error {
	cols := []string{"child_id", "plan_date", "position", "category", "title", "description", "status", "created_at"}
	now := time.Now().UTC()

	return r.db.WithTx(func(tx *database.Tx) error {
		query := tx.GetDialect().InsertIgnore("daily_plan_items", cols)
		for _, item := range items {
			if _, err := tx.Exec(query, childID, date, item.Position, string(item.Category),
				item.Title, item.Description, string(models.StatusTodo), now); err != nil {
				return fmt.Errorf("failed to create plan item: %w", err)
			}
		}
		return nil
	})
}

// GetItem retrieves a plan item by ID
func (r *PlanRepository) GetItem(id int64) (*models.DailyPlanItem, error) {
	query := `SELECT ` + planItemColumns + ` FROM daily_plan_items WHERE id = ?`
	item, err := scanPlanItem(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan item: %w", err)
	}
	return item, nil
}

// UpdateStatus moves an item from one status to another. It reports false
// when the item was no longer in the from status.
func (r *PlanRepository) UpdateStatus(id int64, from, to models.PlanItemStatus, startedAt, completedAt *time.Time) (bool, error) {
	query := `
		UPDATE daily_plan_items
		SET status = ?, started_at = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, string(to), nullTime(startedAt), nullTime(completedAt), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update plan item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read plan item update: %w", err)
	}
	return n == 1, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
