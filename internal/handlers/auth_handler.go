package handlers

import (
	"errors"
	"log"
	"net/http"

	"maitje/internal/models"
	"maitje/internal/security"
	"maitje/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	emailService         *service.EmailService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	appBaseURL           string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		emailService:         emailService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		appBaseURL:           appBaseURL,
	}
}

type authResponse struct {
	User      *models.User `json:"user"`
	CSRFToken string       `json:"csrf_token"`
}

type registerRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	ChildDisplayName string `json:"child_display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name             string `json:"name"`
	ChildDisplayName string `json:"child_display_name"`
}

// startSession sets the session cookie and answers with the user and a
// CSRF token bound to the new session
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, session *models.Session, user *models.User) {
	token, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate CSRF token", err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	writeJSON(w, status, authResponse{User: user, CSRFToken: token})
}

// Register creates a parent account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name, req.ChildDisplayName)
	if err != nil {
		respondWithServiceError(w, "Failed to register user", err)
		return
	}

	if h.emailService.IsEnabled() {
		if err := h.emailService.SendWelcomeEmail(r.Context(), user.Email, user.Name); err != nil {
			log.Printf("Failed to send welcome email to user %d: %v", user.ID, err)
		}
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to create session after registration", err)
		return
	}
	h.startSession(w, r, http.StatusCreated, session, user)
}

// Login handles email/password sign-in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
			return
		}
		respondWithServiceError(w, "Failed to log in", err)
		return
	}
	h.startSession(w, r, http.StatusOK, session, user)
}

// Logout ends the session and forgets the selected child
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(getSessionID(r.Context())); err != nil {
		log.Printf("Error logging out: %v", err)
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	http.SetCookie(w, security.CreateDeleteCookie(r, security.ChildCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user and a fresh CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.GenerateToken(getSessionID(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate CSRF token", err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: GetUserFromContext(r.Context()), CSRFToken: token})
}

// UpdateProfile changes the parent's name and the name children see
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := GetUserFromContext(r.Context())
	updated, err := h.authService.UpdateProfile(user.ID, req.Name, req.ChildDisplayName)
	if err != nil {
		respondWithServiceError(w, "Failed to update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
