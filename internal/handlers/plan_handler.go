package handlers

import (
	"net/http"

	"maitje/internal/models"
	"maitje/internal/service"
)

// PlanHandler serves the daily plan of the selected child
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// GetPlan returns the plan for ?date=YYYY-MM-DD, today by default
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	summary, err := h.planService.GetPlan(child.ID, r.URL.Query().Get("date"))
	if err != nil {
		respondWithServiceError(w, "Failed to load plan", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// UpdateItem applies the {action} of the path to a plan item
func (h *PlanHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	child := GetChildFromContext(r.Context())

	var apply func(childID, itemID int64) (*models.DailyPlanItem, error)
	switch r.PathValue("action") {
	case "start":
		apply = h.planService.StartItem
	case "complete":
		apply = h.planService.CompleteItem
	case "skip":
		apply = h.planService.SkipItem
	case "reset":
		apply = h.planService.ResetItem
	default:
		respondWithError(w, http.StatusNotFound, "Unknown action", "", nil)
		return
	}

	item, err := apply(child.ID, itemID)
	if err != nil {
		respondWithServiceError(w, "Failed to update plan item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
