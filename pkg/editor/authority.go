// Package editor implements the authoring side of a game: an in-memory
// editing session over the game tree, with optimistic local mutations
// confirmed by a remote authority and rolled back when it rejects them.
// The authority owns validation and persistence; the session owns the tree,
// the flag/condition indexes, and the visual-tree bookkeeping.
package editor

import (
	"context"

	"github.com/google/uuid"

	"github.com/questforge/questforge/pkg/game"
)

// CreateNodeRequest is the wire shape for creating a node. Name is omitted
// for condition nodes (their name is derived), Description is set for rooms
// only, Condition for condition nodes only. ParentID is game.RootParentID
// when creating the root room.
type CreateNodeRequest struct {
	ID          string          `json:"id"`
	ParentID    string          `json:"parentId"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Type        game.NodeType   `json:"type"`
	Condition   *game.Condition `json:"condition,omitempty"`
}

// UpdateNodeRequest is the wire shape for renaming or editing a node. The
// node's current condition payload rides along even on plain renames.
type UpdateNodeRequest struct {
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Type        game.NodeType   `json:"type"`
	Condition   *game.Condition `json:"condition,omitempty"`
}

// Authority is the remote owner of validation and persistence. Create and
// update report rejection as a list of field errors (nil means accepted);
// delete is a bare accept/reject. The error return is for transport
// failures only, never for rejections.
type Authority interface {
	CreateNode(ctx context.Context, gameID uuid.UUID, req CreateNodeRequest) ([]game.FieldError, error)
	UpdateNode(ctx context.Context, gameID uuid.UUID, nodeID string, req UpdateNodeRequest) ([]game.FieldError, error)
	DeleteNode(ctx context.Context, gameID uuid.UUID, nodeID string) (bool, error)
}

// TreeWidget is the visual tree consumed by the session. CreateNode returns
// the widget-assigned node id, which becomes the node's proposed id in the
// create round-trip. The widget renders condition siblings before room
// siblings; that is a display rule only and never reorders the model.
type TreeWidget interface {
	CreateNode(parentID string, node *game.Node) string
	RenameNode(nodeID, name string)
	DeleteNode(nodeID string)
	OpenSubtree(nodeID string)
}

// NopWidget is a headless TreeWidget that only assigns ids. It stands in
// for the real widget in tests and non-visual tooling.
type NopWidget struct{}

func (NopWidget) CreateNode(parentID string, node *game.Node) string { return uuid.NewString() }
func (NopWidget) RenameNode(nodeID, name string)                     {}
func (NopWidget) DeleteNode(nodeID string)                           {}
func (NopWidget) OpenSubtree(nodeID string)                          {}
