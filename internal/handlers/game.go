package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hearthfire/adventure-engine/internal/engine"
	"github.com/hearthfire/adventure-engine/internal/logger"
	"github.com/hearthfire/adventure-engine/internal/parser"
	"github.com/hearthfire/adventure-engine/internal/storage"
	"github.com/hearthfire/adventure-engine/pkg/command"
	"github.com/hearthfire/adventure-engine/pkg/session"
	"github.com/hearthfire/adventure-engine/pkg/textfilter"
)

// GameHandler serves the game session lifecycle and command endpoint.
type GameHandler struct {
	storage  storage.Storage
	parser   *parser.Parser
	executor *engine.Executor
	filter   *textfilter.Filter
	logger   *slog.Logger
}

func NewGameHandler(st storage.Storage, p *parser.Parser, ex *engine.Executor, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		storage:  st,
		parser:   p,
		executor: ex,
		filter:   textfilter.New(),
		logger:   logger,
	}
}

// CreateGameRequest is the body for starting a new game session.
type CreateGameRequest struct {
	AdventureID string `json:"adventure_id"`
	PlayerName  string `json:"player_name,omitempty"`
}

// CommandRequest is the body for sending one turn of player input.
type CommandRequest struct {
	Input string `json:"input"`
}

// CommandResponse carries the interpreted command, the outcome, and
// the session state after execution.
type CommandResponse struct {
	Command command.Command  `json:"command"`
	Result  command.Result   `json:"result"`
	Session *session.Session `json:"session"`
}

// GameStateResponse is the snapshot returned when a session is created
// or read. Message narrates the current location so clients can render
// an opening scene without a command round-trip.
type GameStateResponse struct {
	Session *session.Session `json:"session"`
	Message string           `json:"message"`
}

func (h *GameHandler) stateSnapshot(r *http.Request, s *session.Session) GameStateResponse {
	message := fmt.Sprintf("You are at location: %s", s.CurrentLocationID)
	adv, err := h.storage.GetAdventure(r.Context(), s.AdventureID)
	if err == nil && adv != nil {
		if loc := adv.Location(s.CurrentLocationID); loc != nil {
			message = fmt.Sprintf("%s\n\n%s", loc.Name, loc.Description)
		}
	}
	return GameStateResponse{Session: s, Message: message}
}

// ServeHTTP handles game session operations.
// Routes:
// POST /v1/games               - Create a new game session
// GET /v1/games/{id}           - Read session state
// DELETE /v1/games/{id}        - Delete a session
// POST /v1/games/{id}/command  - Interpret and execute one player input
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, rest, _ := strings.Cut(path, "/")
	sessionID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case rest == "command":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCommand(w, r, sessionID)

	case rest == "":
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, sessionID)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}

	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.AdventureID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "adventure_id field is required")
		return
	}

	adv, err := h.storage.GetAdventure(r.Context(), req.AdventureID)
	if err != nil {
		h.logger.Error("Failed to load adventure", "adventure_id", req.AdventureID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load adventure")
		return
	}
	if adv == nil {
		writeError(w, h.logger, http.StatusNotFound, "Adventure not found: "+req.AdventureID)
		return
	}

	s, err := h.storage.CreateSession(r.Context(), adv.ID, adv.StartingLocationID, req.PlayerName)
	if err != nil {
		h.logger.Error("Failed to create session", "adventure_id", adv.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info("Game session created", "session_id", s.ID.String(), "adventure_id", adv.ID)
	writeJSON(w, h.logger, http.StatusCreated, h.stateSnapshot(r, s))
}

func (h *GameHandler) handleCommand(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	log := logger.WithSessionID(h.logger, sessionID.String())

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid JSON in request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(req.Input) == "" {
		writeError(w, log, http.StatusBadRequest, "input field is required")
		return
	}

	s, err := h.storage.GetSession(r.Context(), sessionID)
	if err != nil {
		logger.WithError(log, err).Error("Failed to load session")
		writeError(w, log, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if s == nil {
		writeError(w, log, http.StatusNotFound, "Session not found")
		return
	}

	adv, err := h.storage.GetAdventure(r.Context(), s.AdventureID)
	if err != nil || adv == nil {
		log.Error("Failed to load adventure for session", "adventure_id", s.AdventureID, "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to load adventure")
		return
	}

	// The parser only needs a read-only snapshot for context; a nil
	// location is fine and the executor reports it. The executor re-reads
	// the session under its own lock.
	loc := adv.Location(s.CurrentLocationID)
	cmd := h.parser.Parse(r.Context(), req.Input, loc, s.Inventory)
	result := h.executor.Execute(r.Context(), cmd, sessionID)

	if textfilter.RatingFiltered(adv.Rating) {
		result.Message = h.filter.Clean(result.Message)
	}

	after, err := h.storage.GetSession(r.Context(), sessionID)
	if err != nil || after == nil {
		// The turn has already been applied and saved; returning the
		// pre-command snapshot keeps the result reachable, but its
		// location and inventory may lag the result flags.
		log.Error("Failed to reload session after command, returning pre-command snapshot", "error", err)
		after = s
	}

	log.Debug("Command processed",
		"type", cmd.Type,
		"target", cmd.Target,
		"success", result.Success)

	writeJSON(w, log, http.StatusOK, CommandResponse{
		Command: cmd,
		Result:  result,
		Session: after,
	})
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, err := h.storage.GetSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", sessionID.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.stateSnapshot(r, s))
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	s, err := h.storage.GetSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", sessionID.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	if err := h.storage.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to delete session", "session_id", sessionID.String(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	h.logger.Info("Game session deleted", "session_id", sessionID.String())
	w.WriteHeader(http.StatusNoContent)
}
