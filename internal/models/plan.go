package models

import "time"

// PlanItemStatus is the status of a daily plan item
type PlanItemStatus string

const (
	StatusTodo       PlanItemStatus = "todo"
	StatusInProgress PlanItemStatus = "in_progress"
	StatusCompleted  PlanItemStatus = "completed"
	StatusSkipped    PlanItemStatus = "skipped"
)

var planTransitions = map[PlanItemStatus][]PlanItemStatus{
	StatusTodo:       {StatusInProgress, StatusCompleted, StatusSkipped},
	StatusInProgress: {StatusCompleted, StatusSkipped, StatusTodo},
	StatusSkipped:    {StatusInProgress, StatusTodo},
}

// CanTransitionTo reports whether an item may move from s to next.
// Completed items are final.
func (s PlanItemStatus) CanTransitionTo(next PlanItemStatus) bool {
	for _, allowed := range planTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsDone reports whether the item no longer needs attention
func (s PlanItemStatus) IsDone() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// DailyPlanItem is one ordered entry of a child's plan for a date
type DailyPlanItem struct {
	ID          int64            `json:"id"`
	ChildID     int64            `json:"child_id"`
	PlanDate    string           `json:"plan_date"`
	Position    int              `json:"position"`
	Category    ExerciseCategory `json:"category"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      PlanItemStatus   `json:"status"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PlanSummary describes where a child stands in the plan for a date
type PlanSummary struct {
	Date         string          `json:"date"`
	Items        []DailyPlanItem `json:"items"`
	Todo         int             `json:"todo"`
	InProgress   int             `json:"in_progress"`
	Completed    int             `json:"completed"`
	Skipped      int             `json:"skipped"`
	Next         *DailyPlanItem  `json:"next,omitempty"`
	Finished     bool            `json:"finished"`
	AllCompleted bool            `json:"all_completed"`
}
