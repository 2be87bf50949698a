package service

import (
	"errors"
	"testing"
	"time"

	"maitje/internal/models"
	"maitje/internal/repository"
)

func TestGetPlanCreatesDefaultItems(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		wantItems int
	}{
		{"young child", 1, 3},
		{"challenge from level three", 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			parent := createParent(t, db, "ouder@example.com")
			child := createChild(t, db, parent.ID, tt.level)
			svc := NewPlanService(repository.NewPlanRepository(db), repository.NewChildRepository(db))

			plan, err := svc.GetPlan(child.ID, "2026-03-02")
			if err != nil {
				t.Fatalf("GetPlan() error = %v", err)
			}
			if len(plan.Items) != tt.wantItems {
				t.Fatalf("items = %d, want %d", len(plan.Items), tt.wantItems)
			}
			if plan.Items[0].Category != models.CategoryMath || plan.Items[0].Position != 1 {
				t.Errorf("first item = %+v", plan.Items[0])
			}
			if plan.Todo != tt.wantItems || plan.Next == nil || plan.Next.ID != plan.Items[0].ID {
				t.Errorf("summary = %+v", plan)
			}

			again, err := svc.GetPlan(child.ID, "2026-03-02")
			if err != nil {
				t.Fatalf("GetPlan() error = %v", err)
			}
			if len(again.Items) != tt.wantItems {
				t.Errorf("second GetPlan() items = %d, want %d", len(again.Items), tt.wantItems)
			}
		})
	}
}

func TestGetPlanDefaultsToToday(t *testing.T) {
	db := newTestDB(t)
	parent := createParent(t, db, "ouder@example.com")
	child := createChild(t, db, parent.ID, 1)
	svc := NewPlanService(repository.NewPlanRepository(db), repository.NewChildRepository(db))
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 9, 0, 0, 0, time.Local) }

	plan, err := svc.GetPlan(child.ID, "")
	if err != nil {
		t.Fatalf("GetPlan() error = %v", err)
	}
	if plan.Date != "2026-05-04" {
		t.Errorf("plan date = %s", plan.Date)
	}

	if _, err := svc.GetPlan(child.ID, "4 mei"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("GetPlan() with bad date error = %v", err)
	}
}

func TestPlanTransitions(t *testing.T) {
	db := newTestDB(t)
	parent := createParent(t, db, "ouder@example.com")
	child := createChild(t, db, parent.ID, 1)
	svc := NewPlanService(repository.NewPlanRepository(db), repository.NewChildRepository(db))

	plan, err := svc.GetPlan(child.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetPlan() error = %v", err)
	}
	first, second, third := plan.Items[0].ID, plan.Items[1].ID, plan.Items[2].ID

	item, err := svc.StartItem(child.ID, first)
	if err != nil {
		t.Fatalf("StartItem() error = %v", err)
	}
	if item.Status != models.StatusInProgress || item.StartedAt == nil {
		t.Errorf("started item = %+v", item)
	}
	if _, err := svc.StartItem(child.ID, first); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("starting twice error = %v", err)
	}

	if _, err := svc.CompleteItem(child.ID, first); err != nil {
		t.Fatalf("CompleteItem() error = %v", err)
	}
	for _, move := range []func(int64, int64) (*models.DailyPlanItem, error){svc.StartItem, svc.SkipItem, svc.ResetItem} {
		if _, err := move(child.ID, first); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("completed item moved, error = %v", err)
		}
	}

	if _, err := svc.SkipItem(child.ID, second); err != nil {
		t.Fatalf("SkipItem() error = %v", err)
	}
	reset, err := svc.ResetItem(child.ID, second)
	if err != nil {
		t.Fatalf("ResetItem() error = %v", err)
	}
	if reset.Status != models.StatusTodo || reset.StartedAt != nil || reset.CompletedAt != nil {
		t.Errorf("reset item = %+v", reset)
	}

	if _, err := svc.StartItem(child.ID+1, third); !errors.Is(err, ErrPlanItemNotFound) {
		t.Errorf("moving another child's item error = %v", err)
	}

	summary, err := svc.GetPlan(child.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetPlan() error = %v", err)
	}
	if summary.Completed != 1 || summary.Todo != 2 || summary.Next.ID != second {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSummary(t *testing.T) {
	item := func(id int64, status models.PlanItemStatus) models.DailyPlanItem {
		return models.DailyPlanItem{ID: id, Position: int(id), Status: status}
	}

	tests := []struct {
		name         string
		items        []models.DailyPlanItem
		wantNext     int64
		wantFinished bool
		wantAll      bool
	}{
		{
			name:     "skipped items are passed over",
			items:    []models.DailyPlanItem{item(1, models.StatusCompleted), item(2, models.StatusSkipped), item(3, models.StatusTodo)},
			wantNext: 3,
		},
		{
			name:     "in progress counts as open",
			items:    []models.DailyPlanItem{item(1, models.StatusInProgress), item(2, models.StatusTodo)},
			wantNext: 1,
		},
		{
			name:         "finished with a skip",
			items:        []models.DailyPlanItem{item(1, models.StatusCompleted), item(2, models.StatusSkipped)},
			wantFinished: true,
		},
		{
			name:         "all completed",
			items:        []models.DailyPlanItem{item(1, models.StatusCompleted), item(2, models.StatusCompleted)},
			wantFinished: true,
			wantAll:      true,
		},
		{
			name:         "empty plan",
			wantFinished: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summary("2026-03-02", tt.items)
			var next int64
			if s.Next != nil {
				next = s.Next.ID
			}
			if next != tt.wantNext || s.Finished != tt.wantFinished || s.AllCompleted != tt.wantAll {
				t.Errorf("Summary() next=%d finished=%v all=%v", next, s.Finished, s.AllCompleted)
			}
		})
	}
}
