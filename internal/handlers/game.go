package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/questforge/questforge/internal/storage"
	"github.com/questforge/questforge/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// GameRequest is the request body for creating or updating a game record.
type GameRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Published   bool   `json:"published,omitempty"`
}

// GamesHandler serves the game-record CRUD API and forwards node paths to
// the nodes handler.
//
// Routes:
// POST /v1/games              - Create a game
// GET /v1/games               - List games
// GET /v1/games/{id}          - Read a game (with its tree)
// PUT /v1/games/{id}          - Update game info
// DELETE /v1/games/{id}       - Delete a game
// .../games/{id}/nodes[/...]  - Delegated to NodesHandler
type GamesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
	nodes   *NodesHandler
}

func NewGamesHandler(logger *slog.Logger, storage storage.Storage) *GamesHandler {
	return &GamesHandler{
		storage: storage,
		logger:  logger,
		nodes:   NewNodesHandler(logger, storage),
	}
}

func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeMethodNotAllowed(w, h.logger, "POST, GET")
		}
		return
	}

	segments := strings.Split(path, "/")
	gameID, err := uuid.Parse(segments[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", segments[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	if len(segments) > 1 {
		if segments[1] != "nodes" || len(segments) > 3 {
			writeError(w, h.logger, http.StatusNotFound, "Not found")
			return
		}
		nodeID := ""
		if len(segments) == 3 {
			nodeID = segments[2]
		}
		h.nodes.handle(w, r, gameID, nodeID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, gameID)
	case http.MethodPut:
		h.handleUpdate(w, r, gameID)
	case http.MethodDelete:
		h.handleDelete(w, r, gameID)
	default:
		writeMethodNotAllowed(w, h.logger, "GET, PUT, DELETE")
	}
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateGameInfo(req); len(errs) > 0 {
		writeValidationErrors(w, h.logger, errs)
		return
	}

	g := game.NewGame(strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err := h.storage.SaveGame(r.Context(), g); err != nil {
		h.logger.Error("Failed to save game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.logger.Info("Game created", "uuid", g.ID, "name", g.Name)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, h.logger, g.ID.String())
}

func (h *GamesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	games, err := h.storage.ListGames(r.Context())
	if err != nil {
		h.logger.Error("Failed to list games", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list games")
		return
	}
	writeJSON(w, h.logger, games)
}

func (h *GamesHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	g, err := h.storage.LoadGame(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if g == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, h.logger, g)
}

func (h *GamesHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validateGameInfo(req); len(errs) > 0 {
		writeValidationErrors(w, h.logger, errs)
		return
	}

	g, err := h.storage.LoadGame(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if g == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}

	g.Name = strings.TrimSpace(req.Name)
	g.Description = strings.TrimSpace(req.Description)
	g.Published = req.Published
	if err := h.storage.SaveGame(r.Context(), g); err != nil {
		h.logger.Error("Failed to save game", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	writeJSON(w, h.logger, game.ValidationResponse{})
}

func (h *GamesHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteGame(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete game", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	h.logger.Info("Game deleted", "uuid", id)
	w.WriteHeader(http.StatusNoContent)
}

func validateGameInfo(req GameRequest) []game.FieldError {
	var errs []game.FieldError
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Name)); n < game.MinFieldLen || n > game.MaxNameLen {
		errs = append(errs, game.FieldError{
			Field:          "name",
			DefaultMessage: "Name must be between 2 and 25 characters.",
		})
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.Description)); n < game.MinFieldLen || n > game.MaxDescriptionLen {
		errs = append(errs, game.FieldError{
			Field:          "description",
			DefaultMessage: "Description must be between 2 and 255 characters.",
		})
	}
	return errs
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	w.WriteHeader(status)
	writeJSON(w, logger, ErrorResponse{Error: message})
}

func writeValidationErrors(w http.ResponseWriter, logger *slog.Logger, errs []game.FieldError) {
	w.WriteHeader(http.StatusBadRequest)
	writeJSON(w, logger, game.ValidationResponse{HasErrors: true, FieldErrors: errs})
}

func writeMethodNotAllowed(w http.ResponseWriter, logger *slog.Logger, allowed string) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	writeJSON(w, logger, ErrorResponse{Error: "Method not allowed. Supported methods: " + allowed})
}
