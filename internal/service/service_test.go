package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"maitje/internal/database"
	"maitje/internal/models"
	"maitje/internal/repository"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "maitje_service_test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createParent(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()
	user, err := repository.NewUserRepository(db).CreateUser(email, "hash", "Ouder", "Mama", false)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func createChild(t *testing.T, db *database.DB, userID int64, level int) *models.ConnectedChild {
	t.Helper()
	child, err := repository.NewChildRepository(db).CreateChild(userID, "Sanne", "groep 3", level, "🦊")
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	return child
}

// fullWeek builds a program with five days and the given exercises per day
func fullWeek(exercisesPerDay int) models.ProgramContent {
	c := models.ProgramContent{Theme: "Dieren"}
	for d := 1; d <= models.DaysPerWeek; d++ {
		day := models.ProgramDay{Day: d, Title: "Dag"}
		for e := 0; e < exercisesPerDay; e++ {
			day.Exercises = append(day.Exercises, models.ProgramExercise{
				Title:    "Sommen",
				Category: models.CategoryMath,
				Questions: []models.ProgramQuestion{
					{Question: "2 + 3 = ?", Answer: "5"},
					{Question: "4 + 4 = ?", Answer: "8"},
				},
			})
		}
		c.Days = append(c.Days, day)
	}
	return c
}

// fakeGenerator returns canned programs and analyses
type fakeGenerator struct {
	program  models.ProgramContent
	analysis models.FeedbackAnalysis
	err      error

	mu       sync.Mutex
	prompts  []string
	settings []models.GenerationSettings
	rated    int
}

func (f *fakeGenerator) GenerateWeekProgram(ctx context.Context, prompt string, settings models.GenerationSettings) (*models.ProgramContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.settings = append(f.settings, settings)
	if f.err != nil {
		return nil, f.err
	}
	program := f.program
	return &program, nil
}

func (f *fakeGenerator) AnalyzeFeedback(ctx context.Context, prompt string, program models.ProgramContent, feedback []models.QuestionFeedback) (*models.FeedbackAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.rated = len(feedback)
	if f.err != nil {
		return nil, f.err
	}
	analysis := f.analysis
	return &analysis, nil
}

// staticFilter blocks a fixed set of words
type staticFilter map[string]bool

func (f staticFilter) FindBlockedWords(text string) ([]string, error) {
	var found []string
	for word := range f {
		if strings.Contains(text, word) {
			found = append(found, word)
		}
	}
	return found, nil
}

func TestAuthService(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(repository.NewUserRepository(db), time.Hour, []string{"Dev@Example.com"})

	user, err := auth.Register(" Ouder@Example.com ", "geheim123", "Ouder", "Papa")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "ouder@example.com" || user.IsDeveloper {
		t.Errorf("Register() = %+v", user)
	}

	if _, err := auth.Register("ouder@example.com", "geheim123", "Ouder", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailTaken", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		userName string
	}{
		{"invalid email", "geen-email", "geheim123", "Ouder"},
		{"short password", "a@example.com", "kort", "Ouder"},
		{"short name", "b@example.com", "geheim123", "O"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Register(tt.email, tt.password, tt.userName, ""); err == nil {
				t.Error("Register() expected a validation error")
			}
		})
	}

	if _, _, err := auth.Login("ouder@example.com", "fout-wachtwoord"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with wrong password error = %v", err)
	}

	session, loggedIn, err := auth.Login("OUDER@example.com", "geheim123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Login() user = %d, want %d", loggedIn.ID, user.ID)
	}

	validated, err := auth.ValidateSession(session.ID)
	if err != nil || validated.ID != user.ID {
		t.Fatalf("ValidateSession() = %v, %v", validated, err)
	}

	if err := auth.Logout(session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := auth.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ValidateSession() after logout error = %v", err)
	}
}

func TestAuthServiceDeveloperFlag(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(repository.NewUserRepository(db), time.Hour, []string{"dev@example.com"})

	user, err := auth.Register("dev@example.com", "geheim123", "Ontwikkelaar", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !user.IsDeveloper {
		t.Error("configured developer should be flagged on register")
	}

	// Removing the email from the list revokes access on the next login
	auth = NewAuthService(repository.NewUserRepository(db), time.Hour, nil)
	_, user, err = auth.Login("dev@example.com", "geheim123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.IsDeveloper {
		t.Error("developer flag should be cleared when no longer configured")
	}
}

func TestAuthServiceExpiredSession(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(repository.NewUserRepository(db), -time.Minute, nil)

	if _, err := auth.Register("ouder@example.com", "geheim123", "Ouder", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	session, _, err := auth.Login("ouder@example.com", "geheim123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := auth.ValidateSession(session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("ValidateSession() error = %v, want ErrSessionExpired", err)
	}
	if _, err := auth.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expired session should be deleted, got %v", err)
	}
}

func TestAuthServiceOAuthLogin(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(repository.NewUserRepository(db), time.Hour, nil)

	existing, err := auth.Register("ouder@example.com", "geheim123", "Ouder", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, linked, err := auth.OAuthLogin("google", "sub-1", "ouder@example.com", "Ouder G", true)
	if err != nil {
		t.Fatalf("OAuthLogin() error = %v", err)
	}
	if linked.ID != existing.ID || linked.OAuthProvider != "google" {
		t.Errorf("OAuthLogin() should link the password account, got %+v", linked)
	}

	_, created, err := auth.OAuthLogin("google", "sub-2", "nieuw@example.com", "", true)
	if err != nil {
		t.Fatalf("OAuthLogin() error = %v", err)
	}
	if created.Name != "nieuw" {
		t.Errorf("new oauth user name = %q, want fallback from email", created.Name)
	}

	if _, _, err := auth.OAuthLogin("", "", "x@example.com", "", true); !errors.Is(err, ErrMissingOAuthInfo) {
		t.Errorf("OAuthLogin() without provider error = %v", err)
	}
}

func TestAuthServiceOAuthLoginRequiresVerifiedEmail(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	auth := NewAuthService(userRepo, time.Hour, []string{"dev@example.com"})

	dev, err := auth.Register("dev@example.com", "geheim123", "Dev", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, _, err := auth.OAuthLogin("google", "sub-x", "dev@example.com", "Mallory", false); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("OAuthLogin() with unverified email error = %v, want ErrEmailNotVerified", err)
	}
	got, _ := userRepo.GetUserByEmail("dev@example.com")
	if got == nil || got.ID != dev.ID || got.OAuthProvider != "" {
		t.Errorf("unverified sign-in must not link the account, got %+v", got)
	}

	if _, _, err := auth.OAuthLogin("google", "sub-y", "nieuw@example.com", "", false); !errors.Is(err, ErrEmailNotVerified) {
		t.Errorf("OAuthLogin() creating a user with unverified email error = %v", err)
	}

	if _, _, err := auth.OAuthLogin("google", "sub-x", "dev@example.com", "Dev", true); err != nil {
		t.Fatalf("OAuthLogin() verified error = %v", err)
	}
	if _, user, err := auth.OAuthLogin("google", "sub-x", "dev@example.com", "Dev", false); err != nil || user.ID != dev.ID {
		t.Errorf("known identity should sign in, got %+v, %v", user, err)
	}
}
