package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"maitje/internal/content"
	"maitje/internal/credentials"
	"maitje/internal/models"
	"maitje/internal/repository"
	"maitje/internal/security"
	"maitje/internal/validation"
)

var (
	ErrChildNotFound    = errors.New("child not found")
	ErrInappropriate    = errors.New("text contains inappropriate words")
	ErrInviteInvalid    = errors.New("invalid connection code")
	ErrInviteExpired    = errors.New("connection code expired")
	ErrAlreadyConnected = errors.New("already connected to this child")
)

// DefaultAvatarEmoji is used when a child is added without an emoji
const DefaultAvatarEmoji = "🧒"

// InviteTTL is how long a connection code stays valid
const InviteTTL = 7 * 24 * time.Hour

// WordFilter finds blocked words in free text
type WordFilter interface {
	FindBlockedWords(text string) ([]string, error)
}

// ChildService handles child profiles and parent connections
type ChildService struct {
	childRepo    *repository.ChildRepository
	userRepo     *repository.UserRepository
	tokens       *security.ChildTokenIssuer
	emailService *EmailService
	filter       WordFilter
}

// NewChildService creates a new child service. filter and emailService may be nil.
func NewChildService(childRepo *repository.ChildRepository, userRepo *repository.UserRepository, tokens *security.ChildTokenIssuer, emailService *EmailService, filter WordFilter) *ChildService {
	return &ChildService{
		childRepo:    childRepo,
		userRepo:     userRepo,
		tokens:       tokens,
		emailService: emailService,
		filter:       filter,
	}
}

// checkWords rejects text containing blocked words
func checkWords(filter WordFilter, text string) error {
	if filter == nil || text == "" {
		return nil
	}
	blocked, err := filter.FindBlockedWords(text)
	if err != nil {
		return fmt.Errorf("failed to check words: %w", err)
	}
	if len(blocked) > 0 {
		return ErrInappropriate
	}
	return nil
}

func (s *ChildService) validateChild(name string, level int) (string, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateChildName(name); err != nil {
		return "", err
	}
	if err := validation.ValidateLevel(level); err != nil {
		return "", err
	}
	if err := checkWords(s.filter, name); err != nil {
		return "", err
	}
	return name, nil
}

// AddChild creates a child connected to the user. The first child a parent
// adds becomes primary.
func (s *ChildService) AddChild(userID int64, name string, level int, avatarEmoji string) (*models.ConnectedChild, error) {
	name, err := s.validateChild(name, level)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(avatarEmoji) == "" {
		avatarEmoji = DefaultAvatarEmoji
	}

	child, err := s.childRepo.CreateChild(userID, name, content.SchoolLevel(level), level, strings.TrimSpace(avatarEmoji))
	if err != nil {
		return nil, fmt.Errorf("failed to add child: %w", err)
	}
	return child, nil
}

// ListChildren returns the children connected to a user
func (s *ChildService) ListChildren(userID int64) ([]models.ConnectedChild, error) {
	children, err := s.childRepo.ListConnectedChildren(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// GetChild returns a child if the user is connected to it
func (s *ChildService) GetChild(userID, childID int64) (*models.ConnectedChild, error) {
	child, err := s.childRepo.GetConnectedChild(userID, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// UpdateChild changes a child's name, level and emoji
func (s *ChildService) UpdateChild(userID, childID int64, name string, level int, avatarEmoji string) (*models.ConnectedChild, error) {
	child, err := s.GetChild(userID, childID)
	if err != nil {
		return nil, err
	}
	name, err = s.validateChild(name, level)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(avatarEmoji) == "" {
		avatarEmoji = child.AvatarEmoji
	}

	if err := s.childRepo.UpdateChild(childID, name, content.SchoolLevel(level), level, strings.TrimSpace(avatarEmoji)); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	return s.GetChild(userID, childID)
}

// RemoveChild disconnects the user from a child. The child itself is
// deleted when no other parent remains.
func (s *ChildService) RemoveChild(userID, childID int64) (bool, error) {
	if _, err := s.GetChild(userID, childID); err != nil {
		return false, err
	}
	deleted, err := s.childRepo.RemoveConnection(userID, childID)
	if err != nil {
		return false, fmt.Errorf("failed to remove child: %w", err)
	}
	if deleted {
		log.Printf("Child %d deleted after last parent %d disconnected", childID, userID)
	}
	return deleted, nil
}

// SetPrimaryChild marks a child as the user's primary child
func (s *ChildService) SetPrimaryChild(userID, childID int64) error {
	if _, err := s.GetChild(userID, childID); err != nil {
		return err
	}
	if err := s.childRepo.SetPrimary(userID, childID); err != nil {
		return fmt.Errorf("failed to set primary child: %w", err)
	}
	return nil
}

// SelectChild issues the token that keeps a child selected across reloads
func (s *ChildService) SelectChild(userID, childID int64) (*models.ConnectedChild, string, time.Time, error) {
	child, err := s.GetChild(userID, childID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, expiresAt, err := s.tokens.Issue(userID, childID)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to issue child token: %w", err)
	}
	return child, token, expiresAt, nil
}

// ResolveSelection validates a child token for the given user and returns
// the selected child
func (s *ChildService) ResolveSelection(userID int64, token string) (*models.ConnectedChild, error) {
	tokenUserID, childID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if tokenUserID != userID {
		return nil, security.ErrInvalidChildToken
	}
	return s.GetChild(userID, childID)
}

// InviteParent creates a connection code for a child and emails it when an
// address is given
func (s *ChildService) InviteParent(ctx context.Context, userID, childID int64, email string) (*models.ConnectionInvite, error) {
	child, err := s.GetChild(userID, childID)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	code, err := credentials.GenerateConnectionCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate connection code: %w", err)
	}
	invite, err := s.childRepo.CreateInvite(code, childID, userID, email, time.Now().UTC().Add(InviteTTL))
	if err != nil {
		return nil, err
	}

	if email != "" && s.emailService != nil {
		inviterName := ""
		if inviter, err := s.userRepo.GetUserByID(userID); err == nil && inviter != nil {
			inviterName = inviter.Name
		}
		if err := s.emailService.SendParentInvite(ctx, email, inviterName, child.Name, code, invite.ExpiresAt); err != nil {
			// The code is still shown to the inviter
			log.Printf("Failed to send invite email for child %d: %v", childID, err)
		}
	}
	return invite, nil
}

// AcceptInvite connects the user to the child behind a connection code
func (s *ChildService) AcceptInvite(userID int64, code string) (*models.ConnectedChild, error) {
	code = credentials.NormalizeCode(code)
	if len(code) != credentials.CodeLength {
		return nil, ErrInviteInvalid
	}

	invite, err := s.childRepo.GetInviteByCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}
	if invite == nil || invite.Used {
		return nil, ErrInviteInvalid
	}
	if invite.IsExpired() {
		return nil, ErrInviteExpired
	}

	existing, err := s.childRepo.GetConnectedChild(userID, invite.ChildID)
	if err != nil {
		return nil, fmt.Errorf("failed to check connection: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyConnected
	}

	claimed, err := s.childRepo.MarkInviteUsed(invite.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrInviteInvalid
	}

	if _, err := s.childRepo.Connect(userID, invite.ChildID); err != nil {
		return nil, fmt.Errorf("failed to connect child: %w", err)
	}
	log.Printf("User %d connected to child %d via invite %d", userID, invite.ChildID, invite.ID)
	return s.GetChild(userID, invite.ChildID)
}
