package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"maitje/internal/audio"
	"maitje/internal/llm"
	"maitje/internal/models"
	"maitje/internal/security"
	"maitje/internal/service"
	"maitje/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, map[string]string{"error": userMsg})
}

var (
	notFoundErrors = []error{
		service.ErrChildNotFound,
		service.ErrExerciseSessionNotFound,
		service.ErrQuestionNotFound,
		service.ErrPlanItemNotFound,
		service.ErrProgramNotFound,
		service.ErrExerciseNotFound,
		service.ErrPromptNotFound,
		service.ErrFeedbackNotFound,
	}
	badRequestErrors = []error{
		service.ErrInappropriate,
		service.ErrInviteInvalid,
		service.ErrInviteExpired,
		service.ErrInvalidCategory,
		service.ErrInvalidDate,
		service.ErrInvalidMarkStatus,
		service.ErrPromptTextRequired,
		service.ErrNoRatings,
		service.ErrNoSuggestion,
		service.ErrMissingOAuthInfo,
		service.ErrEmailNotVerified,
		models.ErrInvalidThumbs,
		models.ErrInvalidDifficulty,
		models.ErrInvalidClarity,
		audio.ErrInvalidWord,
	}
	conflictErrors = []error{
		service.ErrEmailTaken,
		service.ErrAlreadyConnected,
		service.ErrSessionCompleted,
		service.ErrAlreadyAnswered,
		service.ErrInvalidTransition,
		service.ErrProgramExists,
		service.ErrProgramNotDraft,
		service.ErrProgramNotActive,
		service.ErrPromptActive,
		service.ErrFeedbackClosed,
	}
	unauthorizedErrors = []error{
		service.ErrInvalidCredentials,
		service.ErrSessionNotFound,
		service.ErrSessionExpired,
		security.ErrInvalidChildToken,
	}
)

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to an HTTP status and the message the
// client sees. Unknown errors become a generic 500.
func statusFor(err error) (int, string) {
	var ve validation.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound, err.Error()
	case matchesAny(err, badRequestErrors):
		return http.StatusBadRequest, err.Error()
	case matchesAny(err, conflictErrors):
		return http.StatusConflict, err.Error()
	case matchesAny(err, unauthorizedErrors):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, llm.ErrInvalidReply):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, ErrInternalServerError
}

// respondWithServiceError answers err with the mapped status, logging
// anything that ends up as a server error
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		respondWithError(w, status, msg, logMsg, err)
		return
	}
	respondWithError(w, status, msg, "", nil)
}
