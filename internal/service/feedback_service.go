package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"maitje/internal/llm"
	"maitje/internal/models"
	"maitje/internal/repository"
	"maitje/internal/validation"
)

var (
	ErrFeedbackNotFound = errors.New("feedback session not found")
	ErrFeedbackClosed   = errors.New("feedback session is already analyzed")
	ErrNoRatings        = errors.New("rate at least one question before analyzing")
	ErrNoSuggestion     = errors.New("feedback session has no suggested prompt")
)

// FeedbackService runs test generations and collects ratings on them
type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
	promptRepo   *repository.PromptRepository
	generator    ContentGenerator
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(feedbackRepo *repository.FeedbackRepository, promptRepo *repository.PromptRepository, generator ContentGenerator) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		promptRepo:   promptRepo,
		generator:    generator,
	}
}

// promptFor resolves the text of a prompt version. A nil id selects the
// active version, falling back to the built-in prompt.
func (s *FeedbackService) promptFor(userID int64, promptVersionID *int64) (*models.PromptVersion, string, error) {
	var version *models.PromptVersion
	var err error
	if promptVersionID != nil {
		version, err = s.promptRepo.GetVersion(userID, *promptVersionID)
		if err != nil {
			return nil, "", err
		}
		if version == nil {
			return nil, "", ErrPromptNotFound
		}
	} else {
		version, err = s.promptRepo.GetActiveVersion(userID)
		if err != nil {
			return nil, "", err
		}
	}
	if version == nil {
		return nil, llm.DefaultPrompt, nil
	}
	return version, version.PromptText, nil
}

// RunTest generates a program with a prompt version and opens a feedback
// session on the result
func (s *FeedbackService) RunTest(ctx context.Context, userID int64, promptVersionID *int64, settings models.GenerationSettings) (*models.FeedbackSession, error) {
	if err := validation.ValidateLevel(settings.Level); err != nil {
		return nil, err
	}
	if settings.Week != 0 {
		if err := validation.ValidateYearWeek(settings.Year, settings.Week); err != nil {
			return nil, err
		}
	}

	version, prompt, err := s.promptFor(userID, promptVersionID)
	if err != nil {
		return nil, err
	}

	program, err := s.generator.GenerateWeekProgram(ctx, prompt, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to generate test program: %w", err)
	}

	session := &models.FeedbackSession{
		UserID:   userID,
		Settings: settings,
		Program:  *program,
	}
	if version != nil {
		session.PromptVersionID = &version.ID
	}
	if err := s.feedbackRepo.CreateSession(session); err != nil {
		return nil, err
	}
	log.Printf("Feedback session %d started by user %d", session.ID, userID)
	return session, nil
}

// GetSession returns one of the user's sessions with its ratings
func (s *FeedbackService) GetSession(userID, sessionID int64) (*models.FeedbackSession, []models.QuestionFeedback, error) {
	session, err := s.getSession(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	feedback, err := s.feedbackRepo.ListQuestionFeedback(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, feedback, nil
}

func (s *FeedbackService) getSession(userID, sessionID int64) (*models.FeedbackSession, error) {
	session, err := s.feedbackRepo.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrFeedbackNotFound
	}
	return session, nil
}

// ListSessions returns the user's sessions, newest first
func (s *FeedbackService) ListSessions(userID int64) ([]models.FeedbackSession, error) {
	return s.feedbackRepo.ListSessions(userID)
}

// RateQuestion stores the ratings of one question of the session's program
func (s *FeedbackService) RateQuestion(userID, sessionID int64, rating models.QuestionFeedback) (*models.QuestionFeedback, error) {
	session, err := s.getSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.FeedbackAnalyzed {
		return nil, ErrFeedbackClosed
	}
	if !session.Program.HasQuestion(rating.DayIndex, rating.ExerciseIndex, rating.QuestionIndex) {
		return nil, ErrQuestionNotFound
	}
	if err := rating.ValidateRatings(); err != nil {
		return nil, validation.ValidationError{Field: "rating", Message: err.Error()}
	}

	rating.SessionID = sessionID
	rating.Comment = strings.TrimSpace(rating.Comment)
	if err := s.feedbackRepo.UpsertQuestionFeedback(&rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

// UpdateNotes replaces the free-form notes of a session
func (s *FeedbackService) UpdateNotes(userID, sessionID int64, notes string) error {
	if _, err := s.getSession(userID, sessionID); err != nil {
		return err
	}
	return s.feedbackRepo.UpdateNotes(sessionID, strings.TrimSpace(notes))
}

// CompleteSession closes the rating phase of a session
func (s *FeedbackService) CompleteSession(userID, sessionID int64) (*models.FeedbackSession, error) {
	session, err := s.getSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.FeedbackInProgress {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, session.Status, models.FeedbackCompleted)
	}
	ok, err := s.feedbackRepo.UpdateStatus(sessionID, models.FeedbackInProgress, models.FeedbackCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: session %d changed concurrently", ErrInvalidTransition, sessionID)
	}
	session.Status = models.FeedbackCompleted
	return session, nil
}

func isRated(f models.QuestionFeedback) bool {
	return f.Thumbs != "" || f.Difficulty != "" || f.Clarity != "" || f.Comment != ""
}

// Analyze sends the prompt, the program and the ratings to the content
// generator and stores the analysis with a proposed prompt
func (s *FeedbackService) Analyze(ctx context.Context, userID, sessionID int64) (*models.FeedbackSession, error) {
	session, feedback, err := s.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	rated := lo.Filter(feedback, func(f models.QuestionFeedback, _ int) bool {
		return isRated(f)
	})
	if len(rated) == 0 {
		return nil, ErrNoRatings
	}

	prompt := llm.DefaultPrompt
	if session.PromptVersionID != nil {
		version, err := s.promptRepo.GetVersion(userID, *session.PromptVersionID)
		if err != nil {
			return nil, err
		}
		if version != nil {
			prompt = version.PromptText
		}
	}

	analysis, err := s.generator.AnalyzeFeedback(ctx, prompt, session.Program, rated)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze feedback: %w", err)
	}
	if err := s.feedbackRepo.SaveAnalysis(sessionID, *analysis); err != nil {
		return nil, err
	}

	session.Analysis = analysis.Analysis
	session.SuggestedPrompt = analysis.SuggestedPrompt
	session.Status = models.FeedbackAnalyzed
	log.Printf("Feedback session %d analyzed using %d ratings", sessionID, len(rated))
	return session, nil
}

// ApplySuggestion saves the suggested prompt of an analyzed session as a
// new, inactive prompt version
func (s *FeedbackService) ApplySuggestion(userID, sessionID int64) (*models.PromptVersion, error) {
	session, err := s.getSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(session.SuggestedPrompt) == "" {
		return nil, ErrNoSuggestion
	}

	name := fmt.Sprintf("Voorstel uit feedbacksessie %d", sessionID)
	notes := session.Analysis
	if session.PromptVersionID != nil {
		notes = fmt.Sprintf("Gebaseerd op versie %d.\n\n%s", *session.PromptVersionID, session.Analysis)
	}
	return s.promptRepo.CreateVersion(userID, name, session.SuggestedPrompt, notes)
}
