package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	StaticFilesPath string
	AllowedOrigin   string
	AudioCacheDir   string
	TTSURL          string

	// Secrets for CSRF tokens and child selection tokens
	CSRFSecret  string
	ChildSecret string

	// Accounts whose email is listed here get access to the prompt studio
	DeveloperEmails []string

	// OpenAI
	OpenAIAPIKey             string
	OpenAIModel              string
	OpenAIConcurrentRequests int

	// Google sign-in
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	// Amazon SES
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
	EmailDebug   bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./maitje.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SessionDuration: getEnvDuration("SESSION_DURATION", 7*24*time.Hour),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		AudioCacheDir:   getEnv("AUDIO_CACHE_DIR", "./static/audio"),
		TTSURL:          getEnv("TTS_URL", ""),

		CSRFSecret:  getEnv("CSRF_SECRET", "change-me-csrf"),
		ChildSecret: getEnv("CHILD_TOKEN_SECRET", "change-me-child"),

		DeveloperEmails: splitList(getEnv("DEVELOPER_EMAILS", "")),

		OpenAIAPIKey:             getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:              getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIConcurrentRequests: getEnvInt("OPENAI_CONCURRENT_REQUESTS", 3),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "mAItje"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:5173"),
		EmailDebug:   getEnv("EMAIL_DEBUG", "") == "true",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// splitList splits a comma separated value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
