package handlers

import (
	"net/http"

	"maitje/internal/models"
	"maitje/internal/service"
)

// FeedbackHandler serves prompt test runs and their reviews
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type runTestRequest struct {
	PromptVersionID *int64                    `json:"prompt_version_id"`
	Settings        models.GenerationSettings `json:"settings"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type feedbackDetail struct {
	Session  *models.FeedbackSession   `json:"session"`
	Feedback []models.QuestionFeedback `json:"feedback"`
}

// RunTest generates a program with a prompt version and opens a session
func (h *FeedbackHandler) RunTest(w http.ResponseWriter, r *http.Request) {
	var req runTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	session, err := h.feedbackService.RunTest(r.Context(), user.ID, req.PromptVersionID, req.Settings)
	if err != nil {
		respondWithServiceError(w, "Failed to run prompt test", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// ListSessions lists the developer's feedback sessions
func (h *FeedbackHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	sessions, err := h.feedbackService.ListSessions(user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list feedback sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetSession returns a session together with its ratings
func (h *FeedbackHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	session, feedback, err := h.feedbackService.GetSession(user.ID, id)
	if err != nil {
		respondWithServiceError(w, "Failed to get feedback session", err)
		return
	}
	if feedback == nil {
		feedback = []models.QuestionFeedback{}
	}
	writeJSON(w, http.StatusOK, feedbackDetail{Session: session, Feedback: feedback})
}

// RateQuestion stores the ratings of one question
func (h *FeedbackHandler) RateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var rating models.QuestionFeedback
	if !decodeJSON(w, r, &rating) {
		return
	}
	user := GetUserFromContext(r.Context())
	saved, err := h.feedbackService.RateQuestion(user.ID, id, rating)
	if err != nil {
		respondWithServiceError(w, "Failed to rate question", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// UpdateNotes replaces the session notes
func (h *FeedbackHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req notesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	if err := h.feedbackService.UpdateNotes(user.ID, id, req.Notes); err != nil {
		respondWithServiceError(w, "Failed to update notes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteSession closes the review
func (h *FeedbackHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	session, err := h.feedbackService.CompleteSession(user.ID, id)
	if err != nil {
		respondWithServiceError(w, "Failed to complete feedback session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Analyze asks the language model to improve the prompt from the ratings
func (h *FeedbackHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	session, err := h.feedbackService.Analyze(r.Context(), user.ID, id)
	if err != nil {
		respondWithServiceError(w, "Failed to analyze feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ApplySuggestion saves the suggested prompt as a new version
func (h *FeedbackHandler) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	version, err := h.feedbackService.ApplySuggestion(user.ID, id)
	if err != nil {
		respondWithServiceError(w, "Failed to apply suggestion", err)
		return
	}
	writeJSON(w, http.StatusCreated, version)
}
