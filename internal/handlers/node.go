package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/questforge/questforge/internal/storage"
	"github.com/questforge/questforge/pkg/editor"
	"github.com/questforge/questforge/pkg/game"
)

// NodesHandler is the authority side of the editor mutation protocol. It
// validates node payloads, applies the mutation to the stored tree with the
// structural rules enforced, and persists the result. Create and update
// answer with the field-error shape; delete answers with a bare boolean.
type NodesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewNodesHandler(logger *slog.Logger, storage storage.Storage) *NodesHandler {
	return &NodesHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *NodesHandler) handle(w http.ResponseWriter, r *http.Request, gameID uuid.UUID, nodeID string) {
	switch {
	case r.Method == http.MethodPost && nodeID == "":
		h.handleCreate(w, r, gameID)
	case r.Method == http.MethodPut && nodeID != "":
		h.handleUpdate(w, r, gameID, nodeID)
	case r.Method == http.MethodDelete && nodeID != "":
		h.handleDelete(w, r, gameID, nodeID)
	default:
		writeMethodNotAllowed(w, h.logger, "POST, PUT, DELETE")
	}
}

func (h *NodesHandler) handleCreate(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	var req editor.CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := game.ValidateNodePayload(req.Type, req.Name, req.Description, req.Condition); len(errs) > 0 {
		h.logger.Debug("Node creation rejected", "game", gameID, "node", req.ID, "errors", len(errs))
		writeValidationErrors(w, h.logger, errs)
		return
	}

	g, ok := h.loadGame(w, r, gameID)
	if !ok {
		return
	}

	if _, err := g.AddNode(req.ID, req.ParentID, req.Name, req.Description, req.Type, req.Condition); err != nil {
		h.writeTreeError(w, err)
		return
	}

	if err := h.storage.SaveGame(r.Context(), g); err != nil {
		h.logger.Error("Failed to save game", "uuid", gameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.logger.Info("Node created", "game", gameID, "node", req.ID, "type", req.Type)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, h.logger, req.ID)
}

func (h *NodesHandler) handleUpdate(w http.ResponseWriter, r *http.Request, gameID uuid.UUID, nodeID string) {
	var req editor.UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := game.ValidateNodePayload(req.Type, req.Name, req.Description, req.Condition); len(errs) > 0 {
		h.logger.Debug("Node update rejected", "game", gameID, "node", nodeID, "errors", len(errs))
		writeValidationErrors(w, h.logger, errs)
		return
	}

	g, ok := h.loadGame(w, r, gameID)
	if !ok {
		return
	}

	if err := g.EditNode(nodeID, req.Name, req.Description, req.Condition); err != nil {
		h.writeTreeError(w, err)
		return
	}

	if err := h.storage.SaveGame(r.Context(), g); err != nil {
		h.logger.Error("Failed to save game", "uuid", gameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.logger.Info("Node updated", "game", gameID, "node", nodeID)
	writeJSON(w, h.logger, game.ValidationResponse{})
}

func (h *NodesHandler) handleDelete(w http.ResponseWriter, r *http.Request, gameID uuid.UUID, nodeID string) {
	g, ok := h.loadGame(w, r, gameID)
	if !ok {
		return
	}

	if err := g.DeleteNode(nodeID); err != nil {
		// Deletion is a reason-less accept/reject: refusing the root or an
		// unknown node is a rejection, not a transport failure.
		h.logger.Warn("Node deletion refused", "game", gameID, "node", nodeID, "error", err)
		writeJSON(w, h.logger, false)
		return
	}

	if err := h.storage.SaveGame(r.Context(), g); err != nil {
		h.logger.Error("Failed to save game", "uuid", gameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.logger.Info("Node deleted", "game", gameID, "node", nodeID)
	writeJSON(w, h.logger, true)
}

func (h *NodesHandler) loadGame(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) (*game.Game, bool) {
	g, err := h.storage.LoadGame(r.Context(), gameID)
	if err != nil {
		h.logger.Error("Failed to load game", "uuid", gameID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return nil, false
	}
	if g == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return nil, false
	}
	return g, true
}

// writeTreeError maps structural tree violations to statuses. These are
// editor programming errors or stale-tree races, not field validation.
func (h *NodesHandler) writeTreeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNodeNotFound), errors.Is(err, game.ErrParentNotFound):
		writeError(w, h.logger, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrNodeExists), errors.Is(err, game.ErrRootExists),
		errors.Is(err, game.ErrParentMismatch), errors.Is(err, game.ErrFlagNotFound):
		writeError(w, h.logger, http.StatusConflict, err.Error())
	default:
		writeError(w, h.logger, http.StatusInternalServerError, err.Error())
	}
}
