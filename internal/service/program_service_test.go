package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"maitje/internal/models"
	"maitje/internal/repository"
)

type programFixture struct {
	svc        *ProgramService
	generator  *fakeGenerator
	promptRepo *repository.PromptRepository
	parent     *models.User
	child      *models.ConnectedChild
}

func newProgramFixture(t *testing.T) *programFixture {
	t.Helper()
	db := newTestDB(t)
	parent := createParent(t, db, "ouder@example.com")
	child := createChild(t, db, parent.ID, 2)
	generator := &fakeGenerator{program: fullWeek(1)}
	promptRepo := repository.NewPromptRepository(db)
	svc := NewProgramService(repository.NewProgramRepository(db), repository.NewChildRepository(db),
		promptRepo, generator, staticFilter{"stom": true})
	return &programFixture{svc: svc, generator: generator, promptRepo: promptRepo, parent: parent, child: child}
}

func TestCreateProgramValidation(t *testing.T) {
	f := newProgramFixture(t)

	tests := []struct {
		name    string
		year    int
		week    int
		theme   string
		content models.ProgramContent
		wantErr error
	}{
		{"week zero", 2026, 0, "Dieren", fullWeek(1), nil},
		{"week too high", 2026, 54, "Dieren", fullWeek(1), nil},
		{"six days", 2026, 10, "Dieren", models.ProgramContent{Days: make([]models.ProgramDay, 6)}, nil},
		{"blocked theme", 2026, 10, "stom thema", fullWeek(1), ErrInappropriate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateProgram(f.parent.ID, f.child.ID, tt.year, tt.week, tt.theme, tt.content)
			if err == nil {
				t.Fatal("CreateProgram() expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateProgram() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// A draft may be incomplete
	partial := models.ProgramContent{Days: []models.ProgramDay{{Day: 1}}}
	program, err := f.svc.CreateProgram(f.parent.ID, f.child.ID, 2026, 10, " Ruimte ", partial)
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	if program.Status != models.ProgramDraft || program.Theme != "Ruimte" {
		t.Errorf("CreateProgram() = %+v", program)
	}

	if _, err := f.svc.CreateProgram(f.parent.ID, f.child.ID, 2026, 10, "Nog een", partial); !errors.Is(err, ErrProgramExists) {
		t.Errorf("duplicate week error = %v, want ErrProgramExists", err)
	}

	if _, err := f.svc.Publish(f.parent.ID, program.ID); err == nil {
		t.Error("Publish() of an incomplete week should fail")
	}

	if _, err := f.svc.CreateProgram(f.parent.ID+100, f.child.ID, 2026, 11, "Dieren", partial); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("CreateProgram() for unconnected child error = %v", err)
	}
}

func TestProgramLifecycle(t *testing.T) {
	f := newProgramFixture(t)

	program, err := f.svc.CreateProgram(f.parent.ID, f.child.ID, 2026, 12, "Dieren", fullWeek(1))
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}

	if _, err := f.svc.Complete(f.parent.ID, program.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completing a draft error = %v", err)
	}

	updated, err := f.svc.UpdateProgram(f.parent.ID, program.ID, "Boerderij", fullWeek(2))
	if err != nil {
		t.Fatalf("UpdateProgram() error = %v", err)
	}
	if updated.Theme != "Boerderij" || len(updated.Content.Days[0].Exercises) != 2 {
		t.Errorf("UpdateProgram() = %+v", updated)
	}

	published, err := f.svc.Publish(f.parent.ID, program.ID)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if published.Status != models.ProgramPublished {
		t.Errorf("status = %s, want published", published.Status)
	}
	if _, err := f.svc.UpdateProgram(f.parent.ID, program.ID, "Later", fullWeek(1)); !errors.Is(err, ErrProgramNotDraft) {
		t.Errorf("editing a published program error = %v", err)
	}

	// 2026-03-18 falls in ISO week 12
	current, err := f.svc.CurrentProgram(f.child.ID, time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC))
	if err != nil || current.ID != program.ID {
		t.Fatalf("CurrentProgram() = %v, %v", current, err)
	}
	if _, err := f.svc.CurrentProgram(f.child.ID, time.Date(2026, 3, 25, 10, 0, 0, 0, time.UTC)); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("CurrentProgram() for empty week error = %v", err)
	}

	completed, err := f.svc.Complete(f.parent.ID, program.ID)
	if err != nil || completed.Status != models.ProgramCompleted {
		t.Fatalf("Complete() = %v, %v", completed, err)
	}

	list, err := f.svc.ListPrograms(f.parent.ID, f.child.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("ListPrograms() = %d, %v", len(list), err)
	}
}

func TestDraftIsHiddenFromChild(t *testing.T) {
	f := newProgramFixture(t)

	program, err := f.svc.CreateProgram(f.parent.ID, f.child.ID, 2026, 12, "Dieren", fullWeek(1))
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	if _, err := f.svc.CurrentProgram(f.child.ID, time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("CurrentProgram() returned a draft, error = %v", err)
	}
	if _, err := f.svc.Progress(f.child.ID, program.ID); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("Progress() on a draft error = %v", err)
	}
}

func TestMarkExercise(t *testing.T) {
	f := newProgramFixture(t)

	program, err := f.svc.CreateProgram(f.parent.ID, f.child.ID, 2026, 12, "Dieren", fullWeek(1))
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	if _, err := f.svc.Publish(f.parent.ID, program.ID); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	progress, err := f.svc.Progress(f.child.ID, program.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.CurrentDay != 0 || progress.CurrentStep != 0 || progress.Finished {
		t.Errorf("fresh progress = %+v", progress)
	}

	if _, err := f.svc.MarkExercise(f.child.ID, program.ID, 5, 0, models.StatusCompleted); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("MarkExercise() out of range error = %v", err)
	}
	if _, err := f.svc.MarkExercise(f.child.ID, program.ID, 0, 0, models.StatusTodo); !errors.Is(err, ErrInvalidMarkStatus) {
		t.Errorf("MarkExercise() with todo error = %v", err)
	}

	// Skipping day one moves on, completing it later clears the skip
	progress, err = f.svc.MarkExercise(f.child.ID, program.ID, 0, 0, models.StatusSkipped)
	if err != nil {
		t.Fatalf("MarkExercise() error = %v", err)
	}
	if progress.CurrentDay != 1 || len(progress.SkippedItems) != 1 {
		t.Errorf("after skip = %+v", progress)
	}
	progress, err = f.svc.MarkExercise(f.child.ID, program.ID, 0, 0, models.StatusCompleted)
	if err != nil {
		t.Fatalf("MarkExercise() error = %v", err)
	}
	if len(progress.SkippedItems) != 0 || len(progress.CompletedItems) != 1 {
		t.Errorf("after completing a skipped item = %+v", progress)
	}
	if _, err := f.svc.MarkExercise(f.child.ID, program.ID, 0, 0, models.StatusSkipped); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("skipping a completed item error = %v", err)
	}

	// Marking twice does not duplicate the id
	if _, err := f.svc.MarkExercise(f.child.ID, program.ID, 0, 0, models.StatusCompleted); err != nil {
		t.Fatalf("MarkExercise() error = %v", err)
	}

	for day := 1; day < models.DaysPerWeek; day++ {
		status := models.StatusCompleted
		if day == 3 {
			status = models.StatusSkipped
		}
		progress, err = f.svc.MarkExercise(f.child.ID, program.ID, day, 0, status)
		if err != nil {
			t.Fatalf("MarkExercise(day %d) error = %v", day, err)
		}
	}
	if !progress.Finished || len(progress.CompletedItems) != 4 || len(progress.SkippedItems) != 1 {
		t.Errorf("final progress = %+v", progress)
	}

	finished, err := f.svc.GetProgram(f.parent.ID, program.ID)
	if err != nil {
		t.Fatalf("GetProgram() error = %v", err)
	}
	if finished.Status != models.ProgramCompleted {
		t.Errorf("program status = %s, want completed", finished.Status)
	}
	if _, err := f.svc.MarkExercise(f.child.ID, program.ID, 0, 0, models.StatusCompleted); !errors.Is(err, ErrProgramNotActive) {
		t.Errorf("MarkExercise() on a completed program error = %v", err)
	}
}

func TestGenerateProgram(t *testing.T) {
	f := newProgramFixture(t)

	program, err := f.svc.GenerateProgram(context.Background(), f.parent.ID, f.child.ID, 2026, 20, "")
	if err != nil {
		t.Fatalf("GenerateProgram() error = %v", err)
	}
	if program.Status != models.ProgramDraft || program.Theme != "Dieren" || len(program.Content.Days) != 5 {
		t.Errorf("GenerateProgram() = %+v", program)
	}
	if f.generator.prompts[0] != "" || f.generator.settings[0].Level != 2 {
		t.Errorf("generator called with prompt %q settings %+v", f.generator.prompts[0], f.generator.settings[0])
	}

	version, err := f.promptRepo.CreateVersion(f.parent.ID, "v2", "Maak leuke oefeningen", "")
	if err != nil {
		t.Fatalf("CreateVersion() error = %v", err)
	}
	if err := f.promptRepo.SetActive(f.parent.ID, version.ID); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}

	// Regenerating replaces the draft using the active prompt
	regenerated, err := f.svc.GenerateProgram(context.Background(), f.parent.ID, f.child.ID, 2026, 20, "Ruimte")
	if err != nil {
		t.Fatalf("GenerateProgram() error = %v", err)
	}
	if regenerated.ID != program.ID || regenerated.Theme != "Ruimte" {
		t.Errorf("regenerated = %+v", regenerated)
	}
	if f.generator.prompts[1] != "Maak leuke oefeningen" {
		t.Errorf("active prompt not used: %q", f.generator.prompts[1])
	}

	if _, err := f.svc.Publish(f.parent.ID, program.ID); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if _, err := f.svc.GenerateProgram(context.Background(), f.parent.ID, f.child.ID, 2026, 20, ""); !errors.Is(err, ErrProgramExists) {
		t.Errorf("generating over a published week error = %v", err)
	}

	f.generator.err = errors.New("model down")
	if _, err := f.svc.GenerateProgram(context.Background(), f.parent.ID, f.child.ID, 2026, 21, ""); err == nil {
		t.Error("GenerateProgram() should surface generator errors")
	}
}
