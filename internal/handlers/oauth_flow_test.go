package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func TestFetchUserInfoReadsVerifiedEmail(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantSubject  string
		wantVerified bool
	}{
		{"google v2", `{"id":"123","email":"a@example.com","verified_email":true}`, "123", true},
		{"openid", `{"sub":"456","email":"a@example.com","email_verified":true}`, "456", true},
		{"unverified", `{"id":"789","email":"a@example.com","verified_email":false}`, "789", false},
		{"missing flag", `{"id":"789","email":"a@example.com"}`, "789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer token-1" {
					t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			provider := OAuthProvider{Name: "google", Label: "Google", UserInfoURL: srv.URL}
			info, err := fetchUserInfo(context.Background(), provider, &oauth2.Token{AccessToken: "token-1"})
			if err != nil {
				t.Fatalf("fetchUserInfo() error = %v", err)
			}
			if info.Subject != tt.wantSubject || info.EmailVerified != tt.wantVerified {
				t.Errorf("fetchUserInfo() = %+v, want subject %q verified %v", info, tt.wantSubject, tt.wantVerified)
			}
		})
	}
}
