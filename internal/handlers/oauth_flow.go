package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"maitje/internal/security"
)

const oauthStateTTL = 10 * time.Minute

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Label       string
	Config      *oauth2.Config
	UserInfoURL string
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

type oauthProviderView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type oauthUserInfo struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// Providers lists the sign-in providers that are configured
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	views := []oauthProviderView{}
	for key, provider := range h.oauthProviders {
		if !provider.configured() {
			continue
		}
		views = append(views, oauthProviderView{
			Name:  key,
			Label: provider.Label,
			URL:   fmt.Sprintf("/api/auth/%s/start", key),
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	writeJSON(w, http.StatusOK, views)
}

// StartOAuth initiates the OAuth flow for a provider
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || !provider.configured() {
		respondWithError(w, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, security.OAuthStateCookieName, providerKey+":"+state, oauthStateTTL)

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback handles the provider callback and sends the browser back
// to the web client
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerKey := r.PathValue("provider")
	provider, ok := h.oauthProviders[providerKey]
	if !ok || !provider.configured() {
		h.oauthError(w, r, "provider_not_configured", nil)
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		h.oauthError(w, r, "missing_code", nil)
		return
	}

	stateCookie, err := r.Cookie(security.OAuthStateCookieName)
	if err != nil || state == "" || stateCookie.Value != providerKey+":"+state {
		h.oauthError(w, r, "invalid_state", nil)
		return
	}
	h.clearTempCookie(w, r, security.OAuthStateCookieName)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, providerKey)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		h.oauthError(w, r, "exchange_failed", err)
		return
	}

	userInfo, err := fetchUserInfo(ctx, provider, token)
	if err != nil {
		h.oauthError(w, r, "userinfo_failed", err)
		return
	}

	session, _, err := h.authService.OAuthLogin(providerKey, userInfo.Subject, userInfo.Email, userInfo.Name, userInfo.EmailVerified)
	if err != nil {
		h.oauthError(w, r, "login_failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, strings.TrimRight(h.appBaseURL, "/")+"/", http.StatusSeeOther)
}

// fetchUserInfo reads the OpenID userinfo document of the provider
func fetchUserInfo(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info: %w", provider.Label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info: status %d", provider.Label, resp.StatusCode)
	}

	// Google's v2 endpoint says verified_email, OpenID userinfo says email_verified
	var payload struct {
		ID            string `json:"id"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		VerifiedEmail bool   `json:"verified_email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse %s user info: %w", provider.Label, err)
	}

	subject := payload.ID
	if subject == "" {
		subject = payload.Sub
	}
	return oauthUserInfo{
		Subject:       subject,
		Email:         payload.Email,
		Name:          payload.Name,
		EmailVerified: payload.VerifiedEmail || payload.EmailVerified,
	}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/api/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}

// oauthError sends the browser back to the client login page with a reason
func (h *AuthHandler) oauthError(w http.ResponseWriter, r *http.Request, reason string, err error) {
	if err != nil {
		log.Printf("OAuth sign-in failed (%s): %v", reason, err)
	}
	h.clearTempCookie(w, r, security.OAuthStateCookieName)
	target := strings.TrimRight(h.appBaseURL, "/") + "/login?" + url.Values{"error": []string{reason}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	cookie := security.CreateSessionCookie(r, name, value, time.Now().Add(ttl))
	cookie.MaxAge = int(ttl.Seconds())
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, security.CreateDeleteCookie(r, name))
}
