package editor

import "github.com/questforge/questforge/pkg/game"

// Action is an authoring operation that can be offered for a node in the
// editor's context menu.
type Action string

const (
	ActionAddRoom      Action = "add_room"
	ActionAddChoice    Action = "add_choice"
	ActionAddCondition Action = "add_condition"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
)

// Delete confirmation prompts. Flag deletion gets the stronger wording
// because it cascades to dependent conditions.
const (
	DeleteWarning     = "Are you sure?"
	DeleteFlagWarning = "Deleting a flag also deletes every condition that depends on it. Are you sure?"
)

// Actions returns the operations available for a node, narrowed by its kind
// and the session state: rooms take choices and flags, choices and
// conditions take conditions plus at most one room, flags take nothing.
// Adding a condition requires at least one flag in the tree, and the root
// room cannot be deleted.
func (s *Session) Actions(nodeID string) []Action {
	node := game.FindNode(s.root, nodeID)
	if node == nil {
		return nil
	}

	actions := []Action{ActionEdit, ActionDelete}
	switch node.Type {
	case game.TypeRoom:
		actions = append(actions, ActionAddChoice)
		if node == s.root {
			actions = remove(actions, ActionDelete)
		}
	case game.TypeChoice, game.TypeCondition:
		if !node.HasRoomChild() {
			actions = append(actions, ActionAddRoom)
		}
		if len(s.flags) > 0 {
			actions = append(actions, ActionAddCondition)
		}
	case game.TypeFlag:
		// edit and delete only
	}
	return actions
}

// ConfirmDeleteMessage returns the confirmation prompt for deleting a node.
func (s *Session) ConfirmDeleteMessage(nodeID string) string {
	if node := game.FindNode(s.root, nodeID); node != nil && node.Type == game.TypeFlag {
		return DeleteFlagWarning
	}
	return DeleteWarning
}

func remove(actions []Action, target Action) []Action {
	out := actions[:0]
	for _, a := range actions {
		if a != target {
			out = append(out, a)
		}
	}
	return out
}
