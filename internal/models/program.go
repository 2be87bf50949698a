package models

import (
	"errors"
	"fmt"
	"time"
)

// ProgramStatus is the lifecycle status of a weekly program
type ProgramStatus string

const (
	ProgramDraft     ProgramStatus = "draft"
	ProgramPublished ProgramStatus = "published"
	ProgramCompleted ProgramStatus = "completed"
)

// CanTransitionTo reports whether a program may move from s to next
func (s ProgramStatus) CanTransitionTo(next ProgramStatus) bool {
	switch s {
	case ProgramDraft:
		return next == ProgramPublished
	case ProgramPublished:
		return next == ProgramCompleted
	}
	return false
}

// DaysPerWeek is the number of school days a week program covers
const DaysPerWeek = 5

// ProgramQuestion is one question inside a program exercise
type ProgramQuestion struct {
	Question    string   `json:"question" jsonschema_description:"De vraag in eenvoudig Nederlands"`
	Options     []string `json:"options,omitempty" jsonschema_description:"Antwoordopties bij meerkeuzevragen"`
	Answer      string   `json:"answer" jsonschema_description:"Het juiste antwoord; bij meerkeuze de index van de juiste optie"`
	Explanation string   `json:"explanation,omitempty"`
}

// ProgramExercise groups questions of one category
type ProgramExercise struct {
	Title        string            `json:"title"`
	Category     ExerciseCategory  `json:"category" jsonschema:"enum=math,enum=reading,enum=english"`
	Instructions string            `json:"instructions"`
	Questions    []ProgramQuestion `json:"questions"`
}

// ProgramDay is one school day of a week program
type ProgramDay struct {
	Day       int               `json:"day" jsonschema:"minimum=1,maximum=5"`
	Title     string            `json:"title"`
	Exercises []ProgramExercise `json:"exercises"`
}

// ProgramContent is the nested days -> exercises -> questions structure
type ProgramContent struct {
	Theme string       `json:"theme"`
	Days  []ProgramDay `json:"days"`
}

var (
	ErrTooManyDays       = errors.New("a week program has at most five days")
	ErrIncompleteProgram = errors.New("a published week program needs five days with at least one exercise each")
)

// Validate checks the structure. With fullWeek set every one of the five
// days must be present and carry at least one exercise.
func (c ProgramContent) Validate(fullWeek bool) error {
	if len(c.Days) > DaysPerWeek {
		return ErrTooManyDays
	}
	for d, day := range c.Days {
		for e, ex := range day.Exercises {
			if !ex.Category.Valid() {
				return fmt.Errorf("day %d exercise %d: unknown category %q", d+1, e+1, ex.Category)
			}
			for q, question := range ex.Questions {
				if question.Question == "" {
					return fmt.Errorf("day %d exercise %d question %d: empty question", d+1, e+1, q+1)
				}
			}
		}
	}
	if !fullWeek {
		return nil
	}
	if len(c.Days) != DaysPerWeek {
		return ErrIncompleteProgram
	}
	for _, day := range c.Days {
		if len(day.Exercises) == 0 {
			return ErrIncompleteProgram
		}
	}
	return nil
}

// ItemID identifies an exercise in the progress tracker
func ItemID(day, exercise int) string {
	return fmt.Sprintf("d%d-e%d", day, exercise)
}

// ItemIDs lists every exercise of the program in order
func (c ProgramContent) ItemIDs() []string {
	var ids []string
	for d, day := range c.Days {
		for e := range day.Exercises {
			ids = append(ids, ItemID(d, e))
		}
	}
	return ids
}

// HasQuestion reports whether the given indexes address an existing question
func (c ProgramContent) HasQuestion(day, exercise, question int) bool {
	if day < 0 || day >= len(c.Days) {
		return false
	}
	exercises := c.Days[day].Exercises
	if exercise < 0 || exercise >= len(exercises) {
		return false
	}
	return question >= 0 && question < len(exercises[exercise].Questions)
}

// WeeklyProgram is a year+week numbered program for a child
type WeeklyProgram struct {
	ID        int64          `json:"id"`
	ChildID   int64          `json:"child_id"`
	CreatedBy int64          `json:"created_by"`
	Year      int            `json:"year"`
	Week      int            `json:"week"`
	Theme     string         `json:"theme"`
	Status    ProgramStatus  `json:"status"`
	Content   ProgramContent `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WeekProgress is the child's pointer into a program plus the sets of
// completed and skipped item ids
type WeekProgress struct {
	ID             int64     `json:"id"`
	ChildID        int64     `json:"child_id"`
	ProgramID      int64     `json:"program_id"`
	CurrentDay     int       `json:"current_day"`
	CurrentStep    int       `json:"current_step"`
	CompletedItems []string  `json:"completed_items"`
	SkippedItems   []string  `json:"skipped_items"`
	Finished       bool      `json:"finished"`
	UpdatedAt      time.Time `json:"updated_at"`
}
