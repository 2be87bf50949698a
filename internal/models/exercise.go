package models

import "time"

// ExerciseCategory is one of the exercise modules
type ExerciseCategory string

const (
	CategoryMath    ExerciseCategory = "math"
	CategoryReading ExerciseCategory = "reading"
	CategoryEnglish ExerciseCategory = "english"
)

// Valid reports whether c is a known category
func (c ExerciseCategory) Valid() bool {
	switch c {
	case CategoryMath, CategoryReading, CategoryEnglish:
		return true
	}
	return false
}

// Question is a single generated exercise question. For multiple choice
// questions Answer holds the index of the correct option.
type Question struct {
	Prompt  string   `json:"prompt"`
	Passage string   `json:"passage,omitempty"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"`
}

// IsMultipleChoice reports whether the question is answered by option index
func (q Question) IsMultipleChoice() bool {
	return len(q.Options) > 0
}

// Public returns the question without its answer
func (q Question) Public() Question {
	q.Answer = ""
	return q
}

// ExerciseSession is a practice run for a child
type ExerciseSession struct {
	ID           int64            `json:"id"`
	ChildID      int64            `json:"child_id"`
	Category     ExerciseCategory `json:"category"`
	Level        int              `json:"level"`
	Questions    []Question       `json:"questions"`
	CorrectCount int              `json:"correct_count"`
	TotalCount   int              `json:"total_count"`
	StartedAt    time.Time        `json:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// Accuracy returns the percentage of correct answers
func (s *ExerciseSession) Accuracy() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalCount) * 100
}

// ExerciseResult is the recorded answer to one question of a session
type ExerciseResult struct {
	ID             int64     `json:"id"`
	SessionID      int64     `json:"session_id"`
	QuestionIndex  int       `json:"question_index"`
	GivenAnswer    string    `json:"given_answer"`
	ExpectedAnswer string    `json:"expected_answer"`
	IsCorrect      bool      `json:"is_correct"`
	CreatedAt      time.Time `json:"created_at"`
}

// DailyProgress aggregates a child's activity on one date (YYYY-MM-DD)
type DailyProgress struct {
	ID             int64     `json:"id"`
	ChildID        int64     `json:"child_id"`
	Date           string    `json:"date"`
	SessionsCount  int       `json:"sessions_count"`
	ExercisesCount int       `json:"exercises_count"`
	CorrectCount   int       `json:"correct_count"`
	Streak         int       `json:"streak"`
	UpdatedAt      time.Time `json:"updated_at"`
}
