package handlers

import (
	"net/http"
	"time"

	"maitje/internal/models"
	"maitje/internal/service"
)

// ProgramHandler serves week programs to parents and children
type ProgramHandler struct {
	programService *service.ProgramService
	now            func() time.Time
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(programService *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService, now: time.Now}
}

type programRequest struct {
	Year    int                   `json:"year"`
	Week    int                   `json:"week"`
	Theme   string                `json:"theme"`
	Content models.ProgramContent `json:"content"`
}

type markRequest struct {
	Day      int                   `json:"day"`
	Exercise int                   `json:"exercise"`
	Status   models.PlanItemStatus `json:"status"`
}

// yearWeek defaults an unset year and week to the current ISO week
func (h *ProgramHandler) yearWeek(year, week int) (int, int) {
	if year == 0 && week == 0 {
		return h.now().ISOWeek()
	}
	return year, week
}

// ListPrograms lists a child's programs
func (h *ProgramHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	programs, err := h.programService.ListPrograms(user.ID, childID)
	if err != nil {
		respondWithServiceError(w, "Failed to list programs", err)
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

// CreateProgram stores a hand-written draft program
func (h *ProgramHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req programRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	year, week := h.yearWeek(req.Year, req.Week)
	user := GetUserFromContext(r.Context())
	program, err := h.programService.CreateProgram(user.ID, childID, year, week, req.Theme, req.Content)
	if err != nil {
		respondWithServiceError(w, "Failed to create program", err)
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

// GenerateProgram asks the language model for a draft program
func (h *ProgramHandler) GenerateProgram(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req programRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	year, week := h.yearWeek(req.Year, req.Week)
	user := GetUserFromContext(r.Context())
	program, err := h.programService.GenerateProgram(r.Context(), user.ID, childID, year, week, req.Theme)
	if err != nil {
		respondWithServiceError(w, "Failed to generate program", err)
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

// GetProgram returns a program the parent can see
func (h *ProgramHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	program, err := h.programService.GetProgram(user.ID, programID)
	if err != nil {
		respondWithServiceError(w, "Failed to get program", err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// UpdateProgram replaces theme and content of a draft
func (h *ProgramHandler) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req programRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	program, err := h.programService.UpdateProgram(user.ID, programID, req.Theme, req.Content)
	if err != nil {
		respondWithServiceError(w, "Failed to update program", err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// DeleteProgram removes a program
func (h *ProgramHandler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	if err := h.programService.DeleteProgram(user.ID, programID); err != nil {
		respondWithServiceError(w, "Failed to delete program", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish makes a draft visible to the child
func (h *ProgramHandler) Publish(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	program, err := h.programService.Publish(user.ID, programID)
	if err != nil {
		respondWithServiceError(w, "Failed to publish program", err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// Complete closes a published program
func (h *ProgramHandler) Complete(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	program, err := h.programService.Complete(user.ID, programID)
	if err != nil {
		respondWithServiceError(w, "Failed to complete program", err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// CurrentProgram returns the selected child's program for this week
func (h *ProgramHandler) CurrentProgram(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	program, err := h.programService.CurrentProgram(child.ID, h.now())
	if err != nil {
		respondWithServiceError(w, "Failed to load current program", err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// Progress returns the child's progress through a program
func (h *ProgramHandler) Progress(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	child := GetChildFromContext(r.Context())
	progress, err := h.programService.Progress(child.ID, programID)
	if err != nil {
		respondWithServiceError(w, "Failed to load program progress", err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// MarkExercise records an exercise as completed or skipped
func (h *ProgramHandler) MarkExercise(w http.ResponseWriter, r *http.Request) {
	programID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req markRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	child := GetChildFromContext(r.Context())
	progress, err := h.programService.MarkExercise(child.ID, programID, req.Day, req.Exercise, req.Status)
	if err != nil {
		respondWithServiceError(w, "Failed to mark exercise", err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
