package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"maitje/internal/models"
	"maitje/internal/security"
	"maitje/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey    ContextKey = "user"
	SessionContextKey ContextKey = "session"
	ChildContextKey   ContextKey = "child"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService   *service.AuthService
	childService  *service.ChildService
	csrf          *security.CSRFGenerator
	limiter       *security.RateLimiter
	allowedOrigin string
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, childService *service.ChildService, csrf *security.CSRFGenerator, limiter *security.RateLimiter, allowedOrigin string) *Middleware {
	return &Middleware{
		authService:   authService,
		childService:  childService,
		csrf:          csrf,
		limiter:       limiter,
		allowedOrigin: allowedOrigin,
	}
}

// RequireAuth is middleware that requires a valid parent session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil || cookie.Value == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, SessionContextKey, cookie.Value)
		next(w, r.WithContext(ctx))
	}
}

// RequireDeveloper limits a route to accounts with prompt studio access
func (m *Middleware) RequireDeveloper(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsDeveloper {
			respondWithError(w, http.StatusForbidden, "Developer access required", "", nil)
			return
		}
		next(w, r)
	})
}

// RequireChild requires a parent session plus a selected child the parent
// is still connected to
func (m *Middleware) RequireChild(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())

		cookie, err := r.Cookie(security.ChildCookieName)
		if err != nil || cookie.Value == "" {
			respondWithError(w, http.StatusUnauthorized, ErrSelectChild, "", nil)
			return
		}

		child, err := m.childService.ResolveSelection(user.ID, cookie.Value)
		if err != nil {
			if status, _ := statusFor(err); status >= http.StatusInternalServerError {
				respondWithError(w, status, ErrInternalServerError, "Failed to resolve child selection", err)
				return
			}
			http.SetCookie(w, security.CreateDeleteCookie(r, security.ChildCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrSelectChild, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ChildContextKey, child)
		next(w, r.WithContext(ctx))
	})
}

// CSRFProtect checks the CSRF header on state-changing requests. It must run
// inside RequireAuth so the session is known.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		sessionID := getSessionID(r.Context())
		if !m.csrf.ValidateRequest(r, sessionID) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, try again later", "", nil)
			return
		}
		next(w, r)
	}
}

// CORS allows the configured web client to call the API with cookies
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == m.allowedOrigin {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+security.CSRFHeader)
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetChildFromContext retrieves the selected child from the request context
func GetChildFromContext(ctx context.Context) *models.ConnectedChild {
	child, ok := ctx.Value(ChildContextKey).(*models.ConnectedChild)
	if !ok {
		return nil
	}
	return child
}

func getSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionContextKey).(string)
	return id
}
