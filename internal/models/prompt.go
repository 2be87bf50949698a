package models

import (
	"errors"
	"time"
)

// PromptVersion is a saved LLM prompt. At most one per user is active.
type PromptVersion struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	PromptText string    `json:"prompt_text"`
	Notes      string    `json:"notes"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FeedbackStatus is the lifecycle status of a feedback session
type FeedbackStatus string

const (
	FeedbackInProgress FeedbackStatus = "in_progress"
	FeedbackCompleted  FeedbackStatus = "completed"
	FeedbackAnalyzed   FeedbackStatus = "analyzed"
)

// GenerationSettings parameterise a program generation run
type GenerationSettings struct {
	Level                int    `json:"level"`
	Theme                string `json:"theme"`
	Year                 int    `json:"year"`
	Week                 int    `json:"week"`
	ExercisesPerDay      int    `json:"exercises_per_day"`
	QuestionsPerExercise int    `json:"questions_per_exercise"`
}

// FeedbackSession records one test generation run and its human review
type FeedbackSession struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	PromptVersionID *int64             `json:"prompt_version_id,omitempty"`
	Settings        GenerationSettings `json:"settings"`
	Program         ProgramContent     `json:"program"`
	Notes           string             `json:"notes"`
	Status          FeedbackStatus     `json:"status"`
	Analysis        string             `json:"analysis"`
	SuggestedPrompt string             `json:"suggested_prompt"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// QuestionFeedback holds the ratings for one generated question
type QuestionFeedback struct {
	ID            int64     `json:"id"`
	SessionID     int64     `json:"session_id"`
	DayIndex      int       `json:"day_index"`
	ExerciseIndex int       `json:"exercise_index"`
	QuestionIndex int       `json:"question_index"`
	Thumbs        string    `json:"thumbs"`
	Difficulty    string    `json:"difficulty"`
	Clarity       string    `json:"clarity"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var (
	ErrInvalidThumbs     = errors.New("thumbs must be up, down or empty")
	ErrInvalidDifficulty = errors.New("difficulty must be too_easy, just_right, too_hard or empty")
	ErrInvalidClarity    = errors.New("clarity must be clear, unclear or empty")
)

// ValidateRatings checks the enumerated rating fields
func (f QuestionFeedback) ValidateRatings() error {
	switch f.Thumbs {
	case "", "up", "down":
	default:
		return ErrInvalidThumbs
	}
	switch f.Difficulty {
	case "", "too_easy", "just_right", "too_hard":
	default:
		return ErrInvalidDifficulty
	}
	switch f.Clarity {
	case "", "clear", "unclear":
	default:
		return ErrInvalidClarity
	}
	return nil
}

// FeedbackAnalysis is the result of analysing rated feedback
type FeedbackAnalysis struct {
	Analysis        string `json:"analysis"`
	SuggestedPrompt string `json:"suggested_prompt"`
}
