package handlers

import (
	"context"
	"net/http"

	"maitje/internal/llm"
	"maitje/internal/service"
)

// connectionTester checks that the language model answers
type connectionTester interface {
	TestConnection(ctx context.Context) (*llm.ConnectionResult, error)
}

// PromptHandler serves the prompt studio for developers
type PromptHandler struct {
	promptService *service.PromptService
	tester        connectionTester
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(promptService *service.PromptService, tester connectionTester) *PromptHandler {
	return &PromptHandler{promptService: promptService, tester: tester}
}

type promptRequest struct {
	Name       string `json:"name"`
	PromptText string `json:"prompt_text"`
	Notes      string `json:"notes"`
}

// ListVersions lists the developer's prompt versions
func (h *PromptHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	versions, err := h.promptService.ListVersions(user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list prompt versions", err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// CreateVersion saves a new prompt version
func (h *PromptHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	version, err := h.promptService.CreateVersion(user.ID, req.Name, req.PromptText, req.Notes)
	if err != nil {
		respondWithServiceError(w, "Failed to create prompt version", err)
		return
	}
	writeJSON(w, http.StatusCreated, version)
}

// ActiveVersion returns the active version, or null when none is active
func (h *PromptHandler) ActiveVersion(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	version, err := h.promptService.ActiveVersion(user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to load active prompt version", err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

// GetVersion returns one prompt version
func (h *PromptHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	version, err := h.promptService.GetVersion(user.ID, id)
	if err != nil {
		respondWithServiceError(w, "Failed to get prompt version", err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

// UpdateVersion edits a prompt version
func (h *PromptHandler) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req promptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	version, err := h.promptService.UpdateVersion(user.ID, id, req.Name, req.PromptText, req.Notes)
	if err != nil {
		respondWithServiceError(w, "Failed to update prompt version", err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

// DeleteVersion removes an inactive prompt version
func (h *PromptHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	if err := h.promptService.DeleteVersion(user.ID, id); err != nil {
		respondWithServiceError(w, "Failed to delete prompt version", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate makes a version the one used for generation
func (h *PromptHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	version, err := h.promptService.SetActive(user.ID, id)
	if err != nil {
		respondWithServiceError(w, "Failed to activate prompt version", err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

// TestConnection sends a tiny prompt to the configured model
func (h *PromptHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	result, err := h.tester.TestConnection(r.Context())
	if err != nil {
		respondWithServiceError(w, "AI connection test failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
