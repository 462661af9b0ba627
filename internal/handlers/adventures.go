package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hearthfire/adventure-engine/internal/storage"
)

// AdventureSummary is a catalog entry. Location and item detail is
// deliberately left out of the listing.
type AdventureSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Author            string `json:"author,omitempty"`
	Rating            string `json:"rating,omitempty"`
	Difficulty        string `json:"difficulty,omitempty"`
	EstimatedDuration int    `json:"estimated_duration,omitempty"` // minutes
	LocationCount     int    `json:"location_count"`
}

type AdventuresHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewAdventuresHandler(st storage.Storage, logger *slog.Logger) *AdventuresHandler {
	return &AdventuresHandler{storage: st, logger: logger}
}

// ServeHTTP lists the loaded adventures at GET /v1/adventures.
func (h *AdventuresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	adventures, err := h.storage.ListAdventures(r.Context())
	if err != nil {
		h.logger.Error("Failed to list adventures", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list adventures")
		return
	}

	summaries := make([]AdventureSummary, 0, len(adventures))
	for _, adv := range adventures {
		summaries = append(summaries, AdventureSummary{
			ID:                adv.ID,
			Name:              adv.Name,
			Description:       adv.Description,
			Author:            adv.Author,
			Rating:            adv.Rating,
			Difficulty:        adv.Difficulty,
			EstimatedDuration: adv.EstimatedDuration,
			LocationCount:     len(adv.Locations),
		})
	}

	writeJSON(w, h.logger, http.StatusOK, summaries)
}
