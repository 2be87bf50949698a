package service

import (
	"errors"
	"fmt"
	"strings"

	"maitje/internal/models"
	"maitje/internal/repository"
	"maitje/internal/validation"
)

var (
	ErrPromptNotFound     = errors.New("prompt version not found")
	ErrPromptActive       = errors.New("the active prompt version cannot be deleted")
	ErrPromptTextRequired = errors.New("prompt text is required")
)

// PromptService manages a developer's prompt versions
type PromptService struct {
	promptRepo *repository.PromptRepository
}

// NewPromptService creates a new prompt service
func NewPromptService(promptRepo *repository.PromptRepository) *PromptService {
	return &PromptService{promptRepo: promptRepo}
}

func validatePrompt(name, text string) (string, string, error) {
	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	if name == "" {
		return "", "", validation.ValidationError{Field: "name", Message: "name is required"}
	}
	if text == "" {
		return "", "", ErrPromptTextRequired
	}
	return name, text, nil
}

// CreateVersion saves a new, inactive prompt version
func (s *PromptService) CreateVersion(userID int64, name, text, notes string) (*models.PromptVersion, error) {
	name, text, err := validatePrompt(name, text)
	if err != nil {
		return nil, err
	}
	return s.promptRepo.CreateVersion(userID, name, text, strings.TrimSpace(notes))
}

// GetVersion returns one of the user's versions
func (s *PromptService) GetVersion(userID, id int64) (*models.PromptVersion, error) {
	version, err := s.promptRepo.GetVersion(userID, id)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, ErrPromptNotFound
	}
	return version, nil
}

// UpdateVersion changes name, text and notes of a version
func (s *PromptService) UpdateVersion(userID, id int64, name, text, notes string) (*models.PromptVersion, error) {
	if _, err := s.GetVersion(userID, id); err != nil {
		return nil, err
	}
	name, text, err := validatePrompt(name, text)
	if err != nil {
		return nil, err
	}
	if err := s.promptRepo.UpdateVersion(userID, id, name, text, strings.TrimSpace(notes)); err != nil {
		return nil, err
	}
	return s.GetVersion(userID, id)
}

// DeleteVersion removes a version that is not active
func (s *PromptService) DeleteVersion(userID, id int64) error {
	version, err := s.GetVersion(userID, id)
	if err != nil {
		return err
	}
	if version.IsActive {
		return ErrPromptActive
	}
	deleted, err := s.promptRepo.DeleteVersion(userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		// Activated in the meantime
		return ErrPromptActive
	}
	return nil
}

// ListVersions returns all of the user's versions
func (s *PromptService) ListVersions(userID int64) ([]models.PromptVersion, error) {
	return s.promptRepo.ListVersions(userID)
}

// ActiveVersion returns the user's active version, nil when none is active
func (s *PromptService) ActiveVersion(userID int64) (*models.PromptVersion, error) {
	return s.promptRepo.GetActiveVersion(userID)
}

// SetActive makes id the user's only active version
func (s *PromptService) SetActive(userID, id int64) (*models.PromptVersion, error) {
	if _, err := s.GetVersion(userID, id); err != nil {
		return nil, err
	}
	if err := s.promptRepo.SetActive(userID, id); err != nil {
		return nil, fmt.Errorf("failed to activate prompt version: %w", err)
	}
	return s.GetVersion(userID, id)
}
