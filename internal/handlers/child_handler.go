package handlers

import (
	"net/http"

	"maitje/internal/security"
	"maitje/internal/service"
)

// ChildHandler manages children, child selection and parent invites
type ChildHandler struct {
	childService *service.ChildService
}

// NewChildHandler creates a new child handler
func NewChildHandler(childService *service.ChildService) *ChildHandler {
	return &ChildHandler{childService: childService}
}

type childRequest struct {
	Name        string `json:"name"`
	Level       int    `json:"level"`
	AvatarEmoji string `json:"avatar_emoji"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type acceptInviteRequest struct {
	Code string `json:"code"`
}

// ListChildren returns the children connected to the parent
func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	children, err := h.childService.ListChildren(user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list children", err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

// AddChild creates a child profile
func (h *ChildHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	child, err := h.childService.AddChild(user.ID, req.Name, req.Level, req.AvatarEmoji)
	if err != nil {
		respondWithServiceError(w, "Failed to add child", err)
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

// GetChild returns one connected child
func (h *ChildHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	child, err := h.childService.GetChild(user.ID, childID)
	if err != nil {
		respondWithServiceError(w, "Failed to get child", err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

// UpdateChild changes name, level and avatar of a child
func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req childRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	child, err := h.childService.UpdateChild(user.ID, childID, req.Name, req.Level, req.AvatarEmoji)
	if err != nil {
		respondWithServiceError(w, "Failed to update child", err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

// RemoveChild disconnects the parent. The child itself is deleted when no
// parent remains.
func (h *ChildHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	deleted, err := h.childService.RemoveChild(user.ID, childID)
	if err != nil {
		respondWithServiceError(w, "Failed to remove child", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// SetPrimary marks the child as the parent's primary child
func (h *ChildHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	if err := h.childService.SetPrimaryChild(user.ID, childID); err != nil {
		respondWithServiceError(w, "Failed to set primary child", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectChild switches the device to the child's view
func (h *ChildHandler) SelectChild(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := GetUserFromContext(r.Context())
	child, token, expiresAt, err := h.childService.SelectChild(user.ID, childID)
	if err != nil {
		respondWithServiceError(w, "Failed to select child", err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, security.ChildCookieName, token, expiresAt))
	writeJSON(w, http.StatusOK, child)
}

// ClearSelection returns the device to the parent view
func (h *ChildHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.ChildCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// CurrentChild returns the selected child
func (h *ChildHandler) CurrentChild(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetChildFromContext(r.Context()))
}

// InviteParent creates a connection code for a second parent
func (h *ChildHandler) InviteParent(w http.ResponseWriter, r *http.Request) {
	childID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	invite, err := h.childService.InviteParent(r.Context(), user.ID, childID, req.Email)
	if err != nil {
		respondWithServiceError(w, "Failed to create invite", err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

// AcceptInvite connects the parent to a child using a connection code
func (h *ChildHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user := GetUserFromContext(r.Context())
	child, err := h.childService.AcceptInvite(user.ID, req.Code)
	if err != nil {
		respondWithServiceError(w, "Failed to accept invite", err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}
