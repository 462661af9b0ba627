package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hearthfire/adventure-engine/internal/services"
	"github.com/hearthfire/adventure-engine/internal/storage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	storage storage.Storage
	llm     services.LLMService
	logger  *slog.Logger
}

func NewHealthHandler(st storage.Storage, llm services.LLMService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: st,
		llm:     llm,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	// An unconfigured LLM is not a failure; the rule-based parser
	// still serves commands.
	if h.llm != nil && h.llm.IsConfigured() {
		components["llm"] = "configured"
	} else {
		components["llm"] = "fallback"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "adventure-engine",
		Components: components,
	})
}
