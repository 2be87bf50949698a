package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"maitje/internal/models"
	"maitje/internal/repository"
	"maitje/internal/security"
	"maitje/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrMissingOAuthInfo   = errors.New("missing oauth provider information")
	ErrEmailNotVerified   = errors.New("email address not verified by provider")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	sessionDuration time.Duration
	developers      map[string]bool
}

// NewAuthService creates a new auth service. Accounts whose email is in
// developerEmails get access to the prompt studio.
func NewAuthService(userRepo *repository.UserRepository, sessionDuration time.Duration, developerEmails []string) *AuthService {
	developers := make(map[string]bool, len(developerEmails))
	for _, email := range developerEmails {
		developers[normalizeEmail(email)] = true
	}
	return &AuthService{
		userRepo:        userRepo,
		sessionDuration: sessionDuration,
		developers:      developers,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new parent account
func (s *AuthService) Register(email, password, name, childDisplayName string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, strings.TrimSpace(name), strings.TrimSpace(childDisplayName), s.developers[email])
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.syncDeveloperFlag(user); err != nil {
		return nil, nil, err
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// syncDeveloperFlag keeps the stored flag in line with the configured list
func (s *AuthService) syncDeveloperFlag(user *models.User) error {
	want := s.developers[user.Email]
	if user.IsDeveloper == want {
		return nil
	}
	if err := s.userRepo.SetDeveloper(user.ID, want); err != nil {
		return fmt.Errorf("failed to update developer flag: %w", err)
	}
	user.IsDeveloper = want
	return nil
}

func (s *AuthService) createSession(userID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	n, err := s.userRepo.DeleteExpiredSessions()
	if err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	if n > 0 {
		log.Printf("Removed %d expired sessions", n)
	}
	return nil
}

// OAuthLogin authenticates or creates a user using an OAuth provider.
// An existing password account with the same email is linked to the provider.
// A new identity needs an email the provider has verified.
func (s *AuthService) OAuthLogin(provider, subject, email, name string, emailVerified bool) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, ErrMissingOAuthInfo
	}
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		if !emailVerified {
			return nil, nil, ErrEmailNotVerified
		}
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			if existingUser.OAuthProvider != "" {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			existingUser.OAuthProvider = provider
			existingUser.OAuthSubject = subject
			user = existingUser
		} else {
			if strings.TrimSpace(name) == "" {
				name = strings.Split(email, "@")[0]
			}
			user, err = s.userRepo.CreateOAuthUser(email, name, provider, subject, s.developers[email])
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
	}

	if err := s.syncDeveloperFlag(user); err != nil {
		return nil, nil, err
	}

	session, err := s.createSession(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// UpdateProfile changes the parent's name and the name their children see
func (s *AuthService) UpdateProfile(userID int64, name, childDisplayName string) (*models.User, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(userID, strings.TrimSpace(name), strings.TrimSpace(childDisplayName)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}
