package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"maitje/internal/content"
	"maitje/internal/models"
	"maitje/internal/repository"
)

var (
	ErrPlanItemNotFound  = errors.New("plan item not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
)

// PlanService manages the ordered daily plan of a child
type PlanService struct {
	planRepo  *repository.PlanRepository
	childRepo *repository.ChildRepository
	now       func() time.Time
}

// NewPlanService creates a new plan service
func NewPlanService(planRepo *repository.PlanRepository, childRepo *repository.ChildRepository) *PlanService {
	return &PlanService{
		planRepo:  planRepo,
		childRepo: childRepo,
		now:       time.Now,
	}
}

// defaultPlan returns the ordered items a new day starts with
func defaultPlan(level int) []models.DailyPlanItem {
	items := []models.DailyPlanItem{
		{
			Category:    models.CategoryMath,
			Title:       "Opwarmen met sommen",
			Description: fmt.Sprintf("%s helpt je met een paar sommen om op te warmen.", content.HelperFor(string(models.CategoryMath)).Name),
		},
		{
			Category:    models.CategoryReading,
			Title:       "Lezen",
			Description: "Lees een kort verhaal en beantwoord de vragen.",
		},
		{
			Category:    models.CategoryEnglish,
			Title:       "Engelse woordjes",
			Description: "Oefen Engelse woordjes en luister hoe je ze uitspreekt.",
		},
	}
	if level >= 3 {
		items = append(items, models.DailyPlanItem{
			Category:    models.CategoryMath,
			Title:       "Uitdaging",
			Description: "Durf jij de moeilijke sommen aan?",
		})
	}
	for i := range items {
		items[i].Position = i + 1
		items[i].Status = models.StatusTodo
	}
	return items
}

// GetPlan returns the plan for a date, creating the default plan on first access.
// An empty date means today.
func (s *PlanService) GetPlan(childID int64, date string) (*models.PlanSummary, error) {
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	items, err := s.planRepo.ListItems(childID, date)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		child, err := s.childRepo.GetChild(childID)
		if err != nil {
			return nil, fmt.Errorf("failed to get child: %w", err)
		}
		if child == nil {
			return nil, ErrChildNotFound
		}
		if err := s.planRepo.CreateItems(childID, date, defaultPlan(child.Level)); err != nil {
			return nil, err
		}
		if items, err = s.planRepo.ListItems(childID, date); err != nil {
			return nil, err
		}
	}
	return Summary(date, items), nil
}

// Summary counts the items per status and finds the next item to work on
func Summary(date string, items []models.DailyPlanItem) *models.PlanSummary {
	summary := &models.PlanSummary{Date: date, Items: items}
	for _, item := range items {
		switch item.Status {
		case models.StatusTodo:
			summary.Todo++
		case models.StatusInProgress:
			summary.InProgress++
		case models.StatusCompleted:
			summary.Completed++
		case models.StatusSkipped:
			summary.Skipped++
		}
	}

	if next, ok := lo.Find(items, func(item models.DailyPlanItem) bool {
		return !item.Status.IsDone()
	}); ok {
		summary.Next = &next
	}
	summary.Finished = summary.Todo == 0 && summary.InProgress == 0
	summary.AllCompleted = len(items) > 0 && summary.Completed == len(items)
	return summary
}

// transition moves an item of the child to a new status
func (s *PlanService) transition(childID, itemID int64, to models.PlanItemStatus) (*models.DailyPlanItem, error) {
	item, err := s.planRepo.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.ChildID != childID {
		return nil, ErrPlanItemNotFound
	}
	if !item.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, item.Status, to)
	}

	now := s.now().UTC()
	startedAt, completedAt := item.StartedAt, item.CompletedAt
	switch to {
	case models.StatusInProgress:
		startedAt, completedAt = &now, nil
	case models.StatusCompleted, models.StatusSkipped:
		if startedAt == nil {
			startedAt = &now
		}
		completedAt = &now
	case models.StatusTodo:
		startedAt, completedAt = nil, nil
	}

	ok, err := s.planRepo.UpdateStatus(itemID, item.Status, to, startedAt, completedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another request changed the item first
		return nil, fmt.Errorf("%w: item %d changed concurrently", ErrInvalidTransition, itemID)
	}

	item.Status = to
	item.StartedAt = startedAt
	item.CompletedAt = completedAt
	return item, nil
}

// StartItem marks an item as in progress
func (s *PlanService) StartItem(childID, itemID int64) (*models.DailyPlanItem, error) {
	return s.transition(childID, itemID, models.StatusInProgress)
}

// CompleteItem marks an item as completed
func (s *PlanService) CompleteItem(childID, itemID int64) (*models.DailyPlanItem, error) {
	return s.transition(childID, itemID, models.StatusCompleted)
}

// SkipItem marks an item as skipped
func (s *PlanService) SkipItem(childID, itemID int64) (*models.DailyPlanItem, error) {
	return s.transition(childID, itemID, models.StatusSkipped)
}

// ResetItem puts an item back to todo
func (s *PlanService) ResetItem(childID, itemID int64) (*models.DailyPlanItem, error) {
	return s.transition(childID, itemID, models.StatusTodo)
}
