package handlers

import (
	"net/http"

	"maitje/internal/audio"
	"maitje/internal/models"
	"maitje/internal/service"
)

// ExerciseHandler serves practice sessions for the selected child
type ExerciseHandler struct {
	exerciseService *service.ExerciseService
	ttsService      *audio.TTSService
}

// NewExerciseHandler creates a new exercise handler
func NewExerciseHandler(exerciseService *service.ExerciseService, ttsService *audio.TTSService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		ttsService:      ttsService,
	}
}

type startExerciseRequest struct {
	Category models.ExerciseCategory `json:"category"`
	Count    int                     `json:"count"`
}

type answerRequest struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// StartSession generates a new set of questions
func (h *ExerciseHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	child := GetChildFromContext(r.Context())
	session, err := h.exerciseService.StartSession(child.ID, req.Category, req.Count)
	if err != nil {
		respondWithServiceError(w, "Failed to start exercise session", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// GetSession returns a session without its answers
func (h *ExerciseHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	child := GetChildFromContext(r.Context())
	session, err := h.exerciseService.GetSession(child.ID, sessionID)
	if err != nil {
		respondWithServiceError(w, "Failed to get exercise session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SubmitAnswer checks one answer
func (h *ExerciseHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	child := GetChildFromContext(r.Context())
	result, err := h.exerciseService.SubmitAnswer(child.ID, sessionID, req.Index, req.Answer)
	if err != nil {
		respondWithServiceError(w, "Failed to submit answer", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CompleteSession closes a session and updates daily progress
func (h *ExerciseHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	child := GetChildFromContext(r.Context())
	summary, err := h.exerciseService.CompleteSession(child.ID, sessionID)
	if err != nil {
		respondWithServiceError(w, "Failed to complete exercise session", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// History lists recent sessions
func (h *ExerciseHandler) History(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	sessions, err := h.exerciseService.History(child.ID, queryInt(r, "limit"))
	if err != nil {
		respondWithServiceError(w, "Failed to load exercise history", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Progress lists daily progress for the last days
func (h *ExerciseHandler) Progress(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	progress, err := h.exerciseService.DailyProgress(child.ID, queryInt(r, "days"))
	if err != nil {
		respondWithServiceError(w, "Failed to load progress", err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Audio serves the pronunciation of an English word
func (h *ExerciseHandler) Audio(w http.ResponseWriter, r *http.Request) {
	path, err := h.ttsService.AudioFile(r.Context(), r.PathValue("word"))
	if err != nil {
		if status, msg := statusFor(err); status < http.StatusInternalServerError {
			respondWithError(w, status, msg, "", nil)
			return
		}
		respondWithError(w, http.StatusBadGateway, "Audio not available", "Failed to fetch audio", err)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}
