package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samber/lo"

	"maitje/internal/models"
	"maitje/internal/repository"
	"maitje/internal/validation"
)

var (
	ErrProgramNotFound   = errors.New("week program not found")
	ErrProgramExists     = errors.New("a week program already exists for this week")
	ErrProgramNotDraft   = errors.New("only draft programs can be changed")
	ErrProgramNotActive  = errors.New("week program is not published")
	ErrExerciseNotFound  = errors.New("exercise not found in program")
	ErrInvalidMarkStatus = errors.New("status must be completed or skipped")
)

// ContentGenerator produces week programs and feedback analyses
type ContentGenerator interface {
	GenerateWeekProgram(ctx context.Context, prompt string, settings models.GenerationSettings) (*models.ProgramContent, error)
	AnalyzeFeedback(ctx context.Context, prompt string, program models.ProgramContent, feedback []models.QuestionFeedback) (*models.FeedbackAnalysis, error)
}

// ProgramService manages week programs and the child's progress through them
type ProgramService struct {
	programRepo *repository.ProgramRepository
	childRepo   *repository.ChildRepository
	promptRepo  *repository.PromptRepository
	generator   ContentGenerator
	filter      WordFilter
}

// NewProgramService creates a new program service
func NewProgramService(programRepo *repository.ProgramRepository, childRepo *repository.ChildRepository, promptRepo *repository.PromptRepository, generator ContentGenerator, filter WordFilter) *ProgramService {
	return &ProgramService{
		programRepo: programRepo,
		childRepo:   childRepo,
		promptRepo:  promptRepo,
		generator:   generator,
		filter:      filter,
	}
}

func (s *ProgramService) connectedChild(userID, childID int64) (*models.ConnectedChild, error) {
	child, err := s.childRepo.GetConnectedChild(userID, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// GetProgram returns a program of a child the user is connected to
func (s *ProgramService) GetProgram(userID, programID int64) (*models.WeeklyProgram, error) {
	program, err := s.programRepo.GetProgram(programID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, ErrProgramNotFound
	}
	if _, err := s.connectedChild(userID, program.ChildID); err != nil {
		if errors.Is(err, ErrChildNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

func (s *ProgramService) checkContent(theme string, c models.ProgramContent) error {
	if err := c.Validate(false); err != nil {
		return validation.ValidationError{Field: "content", Message: err.Error()}
	}
	return checkWords(s.filter, theme)
}

// CreateProgram stores a draft program for a child and ISO week
func (s *ProgramService) CreateProgram(userID, childID int64, year, week int, theme string, c models.ProgramContent) (*models.WeeklyProgram, error) {
	if err := validation.ValidateYearWeek(year, week); err != nil {
		return nil, err
	}
	if _, err := s.connectedChild(userID, childID); err != nil {
		return nil, err
	}
	theme = strings.TrimSpace(theme)
	if err := s.checkContent(theme, c); err != nil {
		return nil, err
	}

	existing, err := s.programRepo.GetProgramByWeek(childID, year, week)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProgramExists
	}

	c.Theme = theme
	program := &models.WeeklyProgram{
		ChildID:   childID,
		CreatedBy: userID,
		Year:      year,
		Week:      week,
		Theme:     theme,
		Status:    models.ProgramDraft,
		Content:   c,
	}
	if err := s.programRepo.CreateProgram(program); err != nil {
		return nil, err
	}
	return program, nil
}

// UpdateProgram replaces the theme and content of a draft program
func (s *ProgramService) UpdateProgram(userID, programID int64, theme string, c models.ProgramContent) (*models.WeeklyProgram, error) {
	program, err := s.GetProgram(userID, programID)
	if err != nil {
		return nil, err
	}
	if program.Status != models.ProgramDraft {
		return nil, ErrProgramNotDraft
	}
	theme = strings.TrimSpace(theme)
	if err := s.checkContent(theme, c); err != nil {
		return nil, err
	}

	c.Theme = theme
	ok, err := s.programRepo.UpdateContent(programID, theme, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProgramNotDraft
	}
	program.Theme = theme
	program.Content = c
	return program, nil
}

// DeleteProgram removes a program and the child's progress through it
func (s *ProgramService) DeleteProgram(userID, programID int64) error {
	if _, err := s.GetProgram(userID, programID); err != nil {
		return err
	}
	return s.programRepo.DeleteProgram(programID)
}

// GenerateProgram asks the content generator for a program using the
// user's active prompt and stores it as a draft. An existing draft for the
// same week is replaced.
func (s *ProgramService) GenerateProgram(ctx context.Context, userID, childID int64, year, week int, theme string) (*models.WeeklyProgram, error) {
	if err := validation.ValidateYearWeek(year, week); err != nil {
		return nil, err
	}
	child, err := s.connectedChild(userID, childID)
	if err != nil {
		return nil, err
	}
	theme = strings.TrimSpace(theme)
	if err := checkWords(s.filter, theme); err != nil {
		return nil, err
	}

	existing, err := s.programRepo.GetProgramByWeek(childID, year, week)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != models.ProgramDraft {
		return nil, ErrProgramExists
	}

	prompt := ""
	active, err := s.promptRepo.GetActiveVersion(userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		prompt = active.PromptText
	}

	generated, err := s.generator.GenerateWeekProgram(ctx, prompt, models.GenerationSettings{
		Level: child.Level,
		Theme: theme,
		Year:  year,
		Week:  week,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate program: %w", err)
	}
	if theme == "" {
		theme = generated.Theme
	}

	if existing != nil {
		return s.UpdateProgram(userID, existing.ID, theme, *generated)
	}
	program, err := s.CreateProgram(userID, childID, year, week, theme, *generated)
	if err != nil {
		return nil, err
	}
	log.Printf("Generated week program %d for child %d (%d-W%02d)", program.ID, childID, year, week)
	return program, nil
}

// Publish makes a draft program visible to the child. It needs five days
// with at least one exercise each.
func (s *ProgramService) Publish(userID, programID int64) (*models.WeeklyProgram, error) {
	program, err := s.GetProgram(userID, programID)
	if err != nil {
		return nil, err
	}
	if !program.Status.CanTransitionTo(models.ProgramPublished) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, program.Status, models.ProgramPublished)
	}
	if err := program.Content.Validate(true); err != nil {
		return nil, validation.ValidationError{Field: "content", Message: err.Error()}
	}
	return s.setStatus(program, models.ProgramPublished)
}

// Complete closes a published program
func (s *ProgramService) Complete(userID, programID int64) (*models.WeeklyProgram, error) {
	program, err := s.GetProgram(userID, programID)
	if err != nil {
		return nil, err
	}
	if !program.Status.CanTransitionTo(models.ProgramCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, program.Status, models.ProgramCompleted)
	}
	return s.setStatus(program, models.ProgramCompleted)
}

func (s *ProgramService) setStatus(program *models.WeeklyProgram, to models.ProgramStatus) (*models.WeeklyProgram, error) {
	ok, err := s.programRepo.UpdateStatus(program.ID, program.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: program %d changed concurrently", ErrInvalidTransition, program.ID)
	}
	program.Status = to
	return program, nil
}

// ListPrograms returns the programs of a child the user is connected to
func (s *ProgramService) ListPrograms(userID, childID int64) ([]models.WeeklyProgram, error) {
	if _, err := s.connectedChild(userID, childID); err != nil {
		return nil, err
	}
	return s.programRepo.ListPrograms(childID)
}

// CurrentProgram returns the child's program for the ISO week of now. Draft
// programs are not shown to the child.
func (s *ProgramService) CurrentProgram(childID int64, now time.Time) (*models.WeeklyProgram, error) {
	year, week := now.ISOWeek()
	program, err := s.programRepo.GetProgramByWeek(childID, year, week)
	if err != nil {
		return nil, err
	}
	if program == nil || program.Status == models.ProgramDraft {
		return nil, ErrProgramNotFound
	}
	return program, nil
}

func (s *ProgramService) childProgram(childID, programID int64) (*models.WeeklyProgram, error) {
	program, err := s.programRepo.GetProgram(programID)
	if err != nil {
		return nil, err
	}
	if program == nil || program.ChildID != childID || program.Status == models.ProgramDraft {
		return nil, ErrProgramNotFound
	}
	return program, nil
}

// advance points progress at the first exercise in neither set and reports
// whether every exercise is done
func advance(c models.ProgramContent, p *models.WeekProgress) bool {
	for d, day := range c.Days {
		for e := range day.Exercises {
			id := models.ItemID(d, e)
			if !lo.Contains(p.CompletedItems, id) && !lo.Contains(p.SkippedItems, id) {
				p.CurrentDay, p.CurrentStep = d, e
				return false
			}
		}
	}
	return true
}

// Progress returns the child's pointer and done sets for a program
func (s *ProgramService) Progress(childID, programID int64) (*models.WeekProgress, error) {
	program, err := s.childProgram(childID, programID)
	if err != nil {
		return nil, err
	}
	progress, err := s.programRepo.GetProgress(childID, programID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &models.WeekProgress{
			ChildID:        childID,
			ProgramID:      programID,
			CompletedItems: []string{},
			SkippedItems:   []string{},
		}
	}
	progress.Finished = advance(program.Content, progress)
	return progress, nil
}

// MarkExercise records an exercise as completed or skipped and moves the
// pointer to the next open exercise. The program is completed once every
// exercise is done.
func (s *ProgramService) MarkExercise(childID, programID int64, day, exercise int, status models.PlanItemStatus) (*models.WeekProgress, error) {
	if status != models.StatusCompleted && status != models.StatusSkipped {
		return nil, ErrInvalidMarkStatus
	}
	program, err := s.childProgram(childID, programID)
	if err != nil {
		return nil, err
	}
	if program.Status != models.ProgramPublished {
		return nil, ErrProgramNotActive
	}
	if day < 0 || day >= len(program.Content.Days) || exercise < 0 || exercise >= len(program.Content.Days[day].Exercises) {
		return nil, ErrExerciseNotFound
	}

	id := models.ItemID(day, exercise)
	progress, err := s.programRepo.UpdateProgress(childID, programID, func(p *models.WeekProgress) error {
		if status == models.StatusSkipped {
			if lo.Contains(p.CompletedItems, id) {
				return fmt.Errorf("%w: %s is already completed", ErrInvalidTransition, id)
			}
			p.SkippedItems = lo.Uniq(append(p.SkippedItems, id))
		} else {
			p.CompletedItems = lo.Uniq(append(p.CompletedItems, id))
			p.SkippedItems = lo.Without(p.SkippedItems, id)
		}
		p.Finished = advance(program.Content, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if progress.Finished {
		if _, err := s.programRepo.UpdateStatus(programID, models.ProgramPublished, models.ProgramCompleted); err != nil {
			return nil, err
		}
		log.Printf("Child %d finished week program %d", childID, programID)
	}
	return progress, nil
}
