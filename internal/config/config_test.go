package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("SESSION_DURATION", "")
	t.Setenv("OPENAI_CONCURRENT_REQUESTS", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.SessionDuration != 7*24*time.Hour {
		t.Errorf("SessionDuration = %v, want 168h", cfg.SessionDuration)
	}
	if cfg.OpenAIConcurrentRequests != 3 {
		t.Errorf("OpenAIConcurrentRequests = %d, want 3", cfg.OpenAIConcurrentRequests)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("OPENAI_CONCURRENT_REQUESTS", "not-a-number")
	t.Setenv("DEVELOPER_EMAILS", " Dev@Example.com, ,ops@example.com")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.SessionDuration != 2*time.Hour {
		t.Errorf("SessionDuration = %v, want 2h", cfg.SessionDuration)
	}
	if cfg.OpenAIConcurrentRequests != 3 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.OpenAIConcurrentRequests)
	}
	want := []string{"dev@example.com", "ops@example.com"}
	if len(cfg.DeveloperEmails) != len(want) {
		t.Fatalf("DeveloperEmails = %v, want %v", cfg.DeveloperEmails, want)
	}
	for i := range want {
		if cfg.DeveloperEmails[i] != want[i] {
			t.Errorf("DeveloperEmails[%d] = %q, want %q", i, cfg.DeveloperEmails[i], want[i])
		}
	}
}
