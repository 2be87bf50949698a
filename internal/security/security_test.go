package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "testPassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == password {
		t.Error("HashPassword() returned an unusable hash")
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes due to salt")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "mySecurePassword"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", password, hash, true},
		{"incorrect password", "wrongPassword", hash, false},
		{"empty password", "", hash, false},
		{"oauth account without hash", password, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCSRFGenerator(t *testing.T) {
	g := NewCSRFGenerator("secret")

	token, err := g.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !g.ValidateToken("session-1", token) {
		t.Error("token should validate for its own session")
	}
	if g.ValidateToken("session-2", token) {
		t.Error("token should not validate for another session")
	}
	if NewCSRFGenerator("other").ValidateToken("session-1", token) {
		t.Error("token should not validate with another secret")
	}
	if _, err := g.GenerateToken(""); err == nil {
		t.Error("expected error for empty session")
	}

	r := httptest.NewRequest("POST", "/api/children", nil)
	if g.ValidateRequest(r, "session-1") {
		t.Error("request without header should fail")
	}
	r.Header.Set(CSRFHeader, token)
	if !g.ValidateRequest(r, "session-1") {
		t.Error("request with header should pass")
	}
}

func TestChildTokenRoundTrip(t *testing.T) {
	issuer := NewChildTokenIssuer("child-secret", time.Hour)

	token, expires, err := issuer.Issue(7, 42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Error("expiry should be in the future")
	}

	userID, childID, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if userID != 7 || childID != 42 {
		t.Errorf("Parse() = (%d, %d), want (7, 42)", userID, childID)
	}
}

func TestChildTokenRejected(t *testing.T) {
	issuer := NewChildTokenIssuer("child-secret", time.Hour)
	token, _, _ := issuer.Issue(1, 2)

	expired := NewChildTokenIssuer("child-secret", -time.Minute)
	expiredToken, _, _ := expired.Issue(1, 2)

	tests := []struct {
		name   string
		issuer *ChildTokenIssuer
		token  string
	}{
		{"wrong secret", NewChildTokenIssuer("other", time.Hour), token},
		{"garbage", issuer, "not-a-token"},
		{"expired", issuer, expiredToken},
		{"tampered", issuer, token + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.issuer.Parse(tt.token); err != ErrInvalidChildToken {
				t.Errorf("Parse() error = %v, want ErrInvalidChildToken", err)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IPs have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("bucket should refill after the window")
	}

	now = now.Add(3 * time.Minute)
	if removed := rl.Cleanup(); removed != 2 {
		t.Errorf("Cleanup() removed %d, want 2", removed)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 172.16.0.1"}, "127.0.0.1:5000", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.2"}, "127.0.0.1:5000", "10.0.0.2"},
		{"remote addr", nil, "192.168.1.5:4321", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateSessionCookieSecure(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	c := CreateSessionCookie(r, SessionCookieName, "abc", time.Now().Add(time.Hour))
	if !c.Secure || !c.HttpOnly {
		t.Errorf("cookie flags: secure=%v httponly=%v", c.Secure, c.HttpOnly)
	}
	if d := CreateDeleteCookie(r, SessionCookieName); d.MaxAge != -1 {
		t.Errorf("delete cookie MaxAge = %d", d.MaxAge)
	}
}
