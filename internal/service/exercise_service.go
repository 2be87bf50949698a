package service

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"maitje/internal/content"
	"maitje/internal/models"
	"maitje/internal/repository"
)

var (
	ErrExerciseSessionNotFound = errors.New("exercise session not found")
	ErrSessionCompleted        = errors.New("exercise session already completed")
	ErrQuestionNotFound        = errors.New("question not found")
	ErrAlreadyAnswered         = errors.New("question already answered")
	ErrInvalidCategory         = errors.New("invalid exercise category")
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 30
	dateLayout           = "2006-01-02"
)

// AnswerResult is the outcome of one submitted answer
type AnswerResult struct {
	Correct  bool   `json:"correct"`
	Almost   bool   `json:"almost"`
	Expected string `json:"expected"`
}

// SessionSummary is returned when a session is completed
type SessionSummary struct {
	Session       *models.ExerciseSession `json:"session"`
	Progress      *models.DailyProgress   `json:"progress"`
	Encouragement string                  `json:"encouragement"`
}

// ExerciseService generates exercises and tracks answers and daily progress
type ExerciseService struct {
	exerciseRepo *repository.ExerciseRepository
	childRepo    *repository.ChildRepository

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewExerciseService creates a new exercise service
func NewExerciseService(exerciseRepo *repository.ExerciseRepository, childRepo *repository.ChildRepository) *ExerciseService {
	return &ExerciseService{
		exerciseRepo: exerciseRepo,
		childRepo:    childRepo,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
}

func (s *ExerciseService) generate(category models.ExerciseCategory, level, count int) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return content.Questions(s.rng, category, level, count)
}

// StartSession generates questions for the child's level and stores them
// with a new session. The returned session carries no answers.
func (s *ExerciseService) StartSession(childID int64, category models.ExerciseCategory, count int) (*models.ExerciseSession, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if count > MaxQuestionCount {
		count = MaxQuestionCount
	}

	child, err := s.childRepo.GetChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	questions, err := s.generate(category, child.Level, count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	session, err := s.exerciseRepo.CreateSession(childID, category, child.Level, questions)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return publicSession(session), nil
}

func publicSession(session *models.ExerciseSession) *models.ExerciseSession {
	public := *session
	public.Questions = make([]models.Question, len(session.Questions))
	for i, q := range session.Questions {
		public.Questions[i] = q.Public()
	}
	return &public
}

// GetSession returns a child's session without answers
func (s *ExerciseService) GetSession(childID, sessionID int64) (*models.ExerciseSession, error) {
	session, err := s.getSession(childID, sessionID)
	if err != nil {
		return nil, err
	}
	return publicSession(session), nil
}

func (s *ExerciseService) getSession(childID, sessionID int64) (*models.ExerciseSession, error) {
	session, err := s.exerciseRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.ChildID != childID {
		return nil, ErrExerciseSessionNotFound
	}
	return session, nil
}

// CheckAnswer compares a given answer to the expected one. Multiple choice
// answers are option indexes. English answers one edit away from the
// expected word are flagged as almost right.
func CheckAnswer(category models.ExerciseCategory, q models.Question, given string) AnswerResult {
	given = strings.ToLower(strings.TrimSpace(given))
	expected := strings.ToLower(strings.TrimSpace(q.Answer))

	if q.IsMultipleChoice() {
		want, err1 := strconv.Atoi(expected)
		got, err2 := strconv.Atoi(given)
		return AnswerResult{Correct: err1 == nil && err2 == nil && want == got, Expected: q.Answer}
	}

	result := AnswerResult{Correct: given == expected, Expected: q.Answer}
	if !result.Correct && category == models.CategoryEnglish && given != "" {
		result.Almost = fuzzy.LevenshteinDistance(given, expected) == 1
	}
	return result
}

// SubmitAnswer checks and records the answer to one question of a session
func (s *ExerciseService) SubmitAnswer(childID, sessionID int64, index int, answer string) (*AnswerResult, error) {
	session, err := s.getSession(childID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}
	if index < 0 || index >= len(session.Questions) {
		return nil, ErrQuestionNotFound
	}

	q := session.Questions[index]
	result := CheckAnswer(session.Category, q, answer)

	recorded, err := s.exerciseRepo.RecordResult(&models.ExerciseResult{
		SessionID:      sessionID,
		QuestionIndex:  index,
		GivenAnswer:    strings.TrimSpace(answer),
		ExpectedAnswer: q.Answer,
		IsCorrect:      result.Correct,
	})
	if err != nil {
		return nil, err
	}
	if !recorded {
		return nil, ErrAlreadyAnswered
	}
	return &result, nil
}

// CompleteSession totals the recorded results, stamps the session and
// updates the child's daily progress and streak
func (s *ExerciseService) CompleteSession(childID, sessionID int64) (*SessionSummary, error) {
	session, err := s.getSession(childID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}

	now := s.now()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	completion, completed, err := s.exerciseRepo.CompleteSession(sessionID, childID, now, today, yesterday,
		func(c *repository.SessionCompletion, p, previous *models.DailyProgress) {
			if p.SessionsCount == 0 {
				p.Streak = 1
				if previous != nil && previous.SessionsCount > 0 {
					p.Streak = previous.Streak + 1
				}
			}
			p.SessionsCount++
			p.ExercisesCount += c.Total
			p.CorrectCount += c.Correct
		})
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	if !completed {
		return nil, ErrSessionCompleted
	}
	correct, total := completion.Correct, completion.Total

	completedAt := now.UTC()
	session.CorrectCount = correct
	session.TotalCount = total
	session.CompletedAt = &completedAt

	return &SessionSummary{
		Session:       publicSession(session),
		Progress:      completion.Progress,
		Encouragement: content.Encouragement(correct, total),
	}, nil
}

// History returns the child's most recent sessions
func (s *ExerciseService) History(childID int64, limit int) ([]models.ExerciseSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	sessions, err := s.exerciseRepo.ListSessions(childID, limit)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i] = *publicSession(&sessions[i])
	}
	return sessions, nil
}

// DailyProgress returns the progress rows of the last days days, newest first
func (s *ExerciseService) DailyProgress(childID int64, days int) ([]models.DailyProgress, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().AddDate(0, 0, -(days - 1)).Format(dateLayout)
	return s.exerciseRepo.ListDailyProgress(childID, since)
}
