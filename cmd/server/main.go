package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"maitje/internal/audio"
	"maitje/internal/config"
	"maitje/internal/database"
	"maitje/internal/handlers"
	"maitje/internal/llm"
	"maitje/internal/repository"
	"maitje/internal/security"
	"maitje/internal/service"
)

// childTokenTTL is how long a child selection survives on a device
const childTokenTTL = 30 * 24 * time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	handlers.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	handlers.CompleteStep(handlers.StepDatabase)

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	handlers.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	handlers.CompleteStep(handlers.StepMigrations)

	log.Println("Migrations completed successfully")

	// Initialize repositories
	handlers.SetCurrentStep(handlers.StepServices)
	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	exerciseRepo := repository.NewExerciseRepository(db)
	planRepo := repository.NewPlanRepository(db)
	programRepo := repository.NewProgramRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// Language model
	generator, err := llm.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIConcurrentRequests)
	if err != nil {
		log.Fatalf("Failed to initialize language model: %v", err)
	}
	if generator.Enabled() {
		log.Printf("Language model configured (%s, %d concurrent requests)", generator.ModelName(), cfg.OpenAIConcurrentRequests)
	} else {
		log.Println("OPENAI_API_KEY not set, program generation is disabled")
	}

	emailService, err := service.NewEmailService(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		log.Printf("Warning: Failed to initialize email service: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration, cfg.DeveloperEmails)
	childTokens := security.NewChildTokenIssuer(cfg.ChildSecret, childTokenTTL)
	childService := service.NewChildService(childRepo, userRepo, childTokens, emailService, db)
	exerciseService := service.NewExerciseService(exerciseRepo, childRepo)
	planService := service.NewPlanService(planRepo, childRepo)
	programService := service.NewProgramService(programRepo, childRepo, promptRepo, generator, db)
	promptService := service.NewPromptService(promptRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo, promptRepo, generator)
	ttsService := audio.NewTTSService(cfg.AudioCacheDir, cfg.TTSURL)
	if files, err := ttsService.CachedFiles(); err == nil {
		log.Printf("Audio cache holds %d files", len(files))
	}

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, childService, csrf, limiter, cfg.AllowedOrigin)
	authHandler := handlers.NewAuthHandler(authService, emailService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL, cfg.AppBaseURL)
	childHandler := handlers.NewChildHandler(childService)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService, ttsService)
	planHandler := handlers.NewPlanHandler(planService)
	programHandler := handlers.NewProgramHandler(programService)
	promptHandler := handlers.NewPromptHandler(promptService, generator)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/health", handlers.Health)
	mux.HandleFunc("GET /api/helpers", handlers.Helpers)
	mux.HandleFunc("GET /api/faq", handlers.FAQ)
	mux.HandleFunc("GET /api/levels", handlers.Levels)

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", middleware.RequireAuth(middleware.CSRFProtect(authHandler.Logout)))
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PUT /api/auth/profile", middleware.RequireAuth(middleware.CSRFProtect(authHandler.UpdateProfile)))
	mux.HandleFunc("GET /api/auth/providers", authHandler.Providers)
	mux.HandleFunc("GET /api/auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/auth/{provider}/callback", authHandler.OAuthCallback)

	// Parent routes
	mux.HandleFunc("GET /api/children", middleware.RequireAuth(childHandler.ListChildren))
	mux.HandleFunc("POST /api/children", middleware.RequireAuth(middleware.CSRFProtect(childHandler.AddChild)))
	mux.HandleFunc("POST /api/children/connect", middleware.RequireAuth(middleware.CSRFProtect(childHandler.AcceptInvite)))
	mux.HandleFunc("GET /api/children/{id}", middleware.RequireAuth(childHandler.GetChild))
	mux.HandleFunc("PUT /api/children/{id}", middleware.RequireAuth(middleware.CSRFProtect(childHandler.UpdateChild)))
	mux.HandleFunc("DELETE /api/children/{id}", middleware.RequireAuth(middleware.CSRFProtect(childHandler.RemoveChild)))
	mux.HandleFunc("POST /api/children/{id}/primary", middleware.RequireAuth(middleware.CSRFProtect(childHandler.SetPrimary)))
	mux.HandleFunc("POST /api/children/{id}/select", middleware.RequireAuth(middleware.CSRFProtect(childHandler.SelectChild)))
	mux.HandleFunc("POST /api/children/{id}/invites", middleware.RequireAuth(middleware.CSRFProtect(childHandler.InviteParent)))

	// Week program routes (parent side)
	mux.HandleFunc("GET /api/children/{id}/programs", middleware.RequireAuth(programHandler.ListPrograms))
	mux.HandleFunc("POST /api/children/{id}/programs", middleware.RequireAuth(middleware.CSRFProtect(programHandler.CreateProgram)))
	mux.HandleFunc("POST /api/children/{id}/programs/generate", middleware.RequireAuth(middleware.CSRFProtect(programHandler.GenerateProgram)))
	mux.HandleFunc("GET /api/programs/{id}", middleware.RequireAuth(programHandler.GetProgram))
	mux.HandleFunc("PUT /api/programs/{id}", middleware.RequireAuth(middleware.CSRFProtect(programHandler.UpdateProgram)))
	mux.HandleFunc("DELETE /api/programs/{id}", middleware.RequireAuth(middleware.CSRFProtect(programHandler.DeleteProgram)))
	mux.HandleFunc("POST /api/programs/{id}/publish", middleware.RequireAuth(middleware.CSRFProtect(programHandler.Publish)))
	mux.HandleFunc("POST /api/programs/{id}/complete", middleware.RequireAuth(middleware.CSRFProtect(programHandler.Complete)))

	// Child routes
	mux.HandleFunc("GET /api/child", middleware.RequireChild(childHandler.CurrentChild))
	mux.HandleFunc("DELETE /api/child/selection", middleware.RequireAuth(middleware.CSRFProtect(childHandler.ClearSelection)))
	mux.HandleFunc("GET /api/child/program", middleware.RequireChild(programHandler.CurrentProgram))
	mux.HandleFunc("GET /api/child/programs/{id}/progress", middleware.RequireChild(programHandler.Progress))
	mux.HandleFunc("POST /api/child/programs/{id}/mark", middleware.RequireChild(middleware.CSRFProtect(programHandler.MarkExercise)))

	// Daily plan routes
	mux.HandleFunc("GET /api/plan", middleware.RequireChild(planHandler.GetPlan))
	mux.HandleFunc("POST /api/plan/items/{id}/{action}", middleware.RequireChild(middleware.CSRFProtect(planHandler.UpdateItem)))

	// Exercise routes
	mux.HandleFunc("POST /api/exercises", middleware.RequireChild(middleware.CSRFProtect(exerciseHandler.StartSession)))
	mux.HandleFunc("GET /api/exercises/history", middleware.RequireChild(exerciseHandler.History))
	mux.HandleFunc("GET /api/exercises/{id}", middleware.RequireChild(exerciseHandler.GetSession))
	mux.HandleFunc("POST /api/exercises/{id}/answers", middleware.RequireChild(middleware.CSRFProtect(exerciseHandler.SubmitAnswer)))
	mux.HandleFunc("POST /api/exercises/{id}/complete", middleware.RequireChild(middleware.CSRFProtect(exerciseHandler.CompleteSession)))
	mux.HandleFunc("GET /api/progress", middleware.RequireChild(exerciseHandler.Progress))
	mux.HandleFunc("GET /api/english/audio/{word}", middleware.RequireAuth(exerciseHandler.Audio))

	// Prompt studio routes
	mux.HandleFunc("GET /api/prompts", middleware.RequireDeveloper(promptHandler.ListVersions))
	mux.HandleFunc("POST /api/prompts", middleware.RequireDeveloper(middleware.CSRFProtect(promptHandler.CreateVersion)))
	mux.HandleFunc("GET /api/prompts/active", middleware.RequireDeveloper(promptHandler.ActiveVersion))
	mux.HandleFunc("GET /api/prompts/{id}", middleware.RequireDeveloper(promptHandler.GetVersion))
	mux.HandleFunc("PUT /api/prompts/{id}", middleware.RequireDeveloper(middleware.CSRFProtect(promptHandler.UpdateVersion)))
	mux.HandleFunc("DELETE /api/prompts/{id}", middleware.RequireDeveloper(middleware.CSRFProtect(promptHandler.DeleteVersion)))
	mux.HandleFunc("POST /api/prompts/{id}/activate", middleware.RequireDeveloper(middleware.CSRFProtect(promptHandler.Activate)))
	mux.HandleFunc("GET /api/ai/test", middleware.RequireDeveloper(promptHandler.TestConnection))

	// Feedback session routes
	mux.HandleFunc("GET /api/feedback", middleware.RequireDeveloper(feedbackHandler.ListSessions))
	mux.HandleFunc("POST /api/feedback", middleware.RequireDeveloper(middleware.CSRFProtect(feedbackHandler.RunTest)))
	mux.HandleFunc("GET /api/feedback/{id}", middleware.RequireDeveloper(feedbackHandler.GetSession))
	mux.HandleFunc("PUT /api/feedback/{id}/ratings", middleware.RequireDeveloper(middleware.CSRFProtect(feedbackHandler.RateQuestion)))
	mux.HandleFunc("PUT /api/feedback/{id}/notes", middleware.RequireDeveloper(middleware.CSRFProtect(feedbackHandler.UpdateNotes)))
	mux.HandleFunc("POST /api/feedback/{id}/complete", middleware.RequireDeveloper(middleware.CSRFProtect(feedbackHandler.CompleteSession)))
	mux.HandleFunc("POST /api/feedback/{id}/analyze", middleware.RequireDeveloper(middleware.CSRFProtect(feedbackHandler.Analyze)))
	mux.HandleFunc("POST /api/feedback/{id}/apply", middleware.RequireDeveloper(middleware.CSRFProtect(feedbackHandler.ApplySuggestion)))

	// Static files (built web client)
	mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticFilesPath)))

	handlers.CompleteStep(handlers.StepServices)

	// Wrap with logging, CORS and the startup gate
	handler := handlers.Logging(middleware.CORS(handlers.StartupGate(mux)))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Seed blocked words filter; the download may take a while
	handlers.SetCurrentStep(handlers.StepSeed)
	if err := db.SeedBlockedWords(); err != nil {
		log.Printf("Warning: Failed to seed blocked words filter: %v", err)
	}
	handlers.CompleteStep(handlers.StepSeed)
	handlers.MarkReady()
	log.Println("Server ready")

	// Start background cleanup
	go cleanupExpiredSessions(authService, limiter)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

// cleanupExpiredSessions periodically removes expired sessions and idle
// rate limiter entries
func cleanupExpiredSessions(authService *service.AuthService, limiter *security.RateLimiter) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}

		if n := limiter.Cleanup(); n > 0 {
			log.Printf("Removed %d idle rate limiter entries", n)
		}
	}
}
