package handlers

import (
	"net/http"
	"strings"
	"sync"
)

// Startup step names, in the order the server runs them
const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepSeed       = "Seeding blocked words"
	StepServices   = "Initializing services"
	StepReady      = "Server ready"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

var (
	startupMu     sync.RWMutex
	startupStatus = newStartupStatus()
)

func newStartupStatus() *StartupStatus {
	names := []string{StepDatabase, StepMigrations, StepSeed, StepServices, StepReady}
	steps := make([]StartupStep, len(names))
	for i, name := range names {
		steps[i] = StartupStep{Name: name}
	}
	return &StartupStatus{Current: "Initializing...", Steps: steps}
}

// SetCurrentStep updates the current initialization step
func SetCurrentStep(step string) {
	startupMu.Lock()
	defer startupMu.Unlock()
	startupStatus.Current = step
}

// CompleteStep marks a step as completed and updates progress
func CompleteStep(stepName string) {
	startupMu.Lock()
	defer startupMu.Unlock()

	for i := range startupStatus.Steps {
		if startupStatus.Steps[i].Name == stepName {
			startupStatus.Steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range startupStatus.Steps {
		if step.Completed {
			completed++
		}
	}
	startupStatus.Progress = (completed * 100) / len(startupStatus.Steps)
}

// MarkReady marks the server as fully initialized
func MarkReady() {
	startupMu.Lock()
	defer startupMu.Unlock()
	for i := range startupStatus.Steps {
		startupStatus.Steps[i].Completed = true
	}
	startupStatus.Ready = true
	startupStatus.Current = StepReady
	startupStatus.Progress = 100
}

// IsReady returns whether the server is fully initialized
func IsReady() bool {
	startupMu.RLock()
	defer startupMu.RUnlock()
	return startupStatus.Ready
}

// Health reports startup progress; 503 until the server is ready
func Health(w http.ResponseWriter, r *http.Request) {
	startupMu.RLock()
	snapshot := StartupStatus{
		Ready:    startupStatus.Ready,
		Current:  startupStatus.Current,
		Progress: startupStatus.Progress,
		Steps:    append([]StartupStep(nil), startupStatus.Steps...),
	}
	startupMu.RUnlock()

	status := http.StatusOK
	if !snapshot.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, &snapshot)
}

// StartupGate answers API requests with 503 while the server initializes.
// The health endpoint stays reachable.
func StartupGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsReady() && r.URL.Path != "/api/health" && strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Retry-After", "2")
			respondWithError(w, http.StatusServiceUnavailable, "Server is starting, try again shortly", "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
