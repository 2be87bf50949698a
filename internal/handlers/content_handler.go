package handlers

import (
	"net/http"

	"maitje/internal/content"
)

type schoolLevel struct {
	Level int    `json:"level"`
	Label string `json:"label"`
}

// Helpers lists the helper personas, or the one matching ?category=
func Helpers(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		writeJSON(w, http.StatusOK, content.HelperFor(category))
		return
	}
	writeJSON(w, http.StatusOK, content.Helpers())
}

// FAQ returns the parent FAQ
func FAQ(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, content.FAQ())
}

// Levels returns the supported school levels
func Levels(w http.ResponseWriter, r *http.Request) {
	levels := make([]schoolLevel, 0, content.MaxLevel)
	for l := content.MinLevel; l <= content.MaxLevel; l++ {
		levels = append(levels, schoolLevel{Level: l, Label: content.SchoolLevel(l)})
	}
	writeJSON(w, http.StatusOK, levels)
}
