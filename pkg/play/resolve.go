// Package play implements the runtime side of a game: resolving which
// choices a room offers against the flags the player has triggered so far,
// and the session state of a single playthrough. All resolution functions
// are read-only over the tree; the session owns the only mutable state.
package play

import (
	"slices"

	"github.com/questforge/questforge/pkg/game"
)

// Choice describes one option presented to the player for the current room.
type Choice struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     game.NodeType `json:"type"`
	NextRoom *game.Node    `json:"-"`
}

// satisfied reports whether a condition holds for the given active-flag set:
// the referenced flag's triggered state must match the required state.
func satisfied(cond *game.Condition, activeFlags []string) bool {
	triggered := slices.Contains(activeFlags, cond.FlagID)
	if cond.FlagState == game.FlagActive {
		return triggered
	}
	return !triggered
}

// NextReachableRoom resolves the room a choice (or condition) leads to under
// the given active flags. The node's direct children are partitioned into
// the at-most-one default room and the condition children. Conditions are
// evaluated in child order; the first satisfied condition whose subtree
// resolves to a room wins outright, overriding the default room. Only when
// no condition resolves is the default room returned, which may be nil.
func NextReachableRoom(node *game.Node, activeFlags []string) *game.Node {
	var defaultRoom *game.Node
	var conditions []*game.Node

	for _, child := range node.Children {
		switch child.Type {
		case game.TypeRoom:
			defaultRoom = child
		case game.TypeCondition:
			conditions = append(conditions, child)
		}
	}

	for _, cond := range conditions {
		if cond.Condition == nil || !satisfied(cond.Condition, activeFlags) {
			continue
		}
		// A satisfied condition may nest further conditions and rooms.
		if room := NextReachableRoom(cond, activeFlags); room != nil {
			return room
		}
	}

	return defaultRoom
}

// NextChoices computes the choices the given room presents, in child order.
// A plain choice is offered only if it currently resolves to a room. A flag
// is offered only while untriggered, and its next room is the room itself:
// selecting it re-renders the room so newly satisfied conditions can take
// effect without leaving it. Rooms and conditions that are direct children
// of a room are never offered.
func NextChoices(room *game.Node, activeFlags []string) []Choice {
	var choices []Choice
	for _, child := range room.Children {
		switch child.Type {
		case game.TypeChoice:
			next := NextReachableRoom(child, activeFlags)
			if next == nil {
				continue
			}
			choices = append(choices, Choice{
				ID:       child.ID,
				Name:     child.Name,
				Type:     game.TypeChoice,
				NextRoom: next,
			})
		case game.TypeFlag:
			if slices.Contains(activeFlags, child.ID) {
				continue
			}
			choices = append(choices, Choice{
				ID:       child.ID,
				Name:     child.Name,
				Type:     game.TypeFlag,
				NextRoom: room,
			})
		}
	}
	return choices
}
