package game

import (
	"time"

	"github.com/google/uuid"
)

// Game is a branching, flag-gated interactive-fiction game: a record with
// authoring metadata plus the tree of rooms, choices, flags and conditions
// rooted at Root. Root is nil until the author creates the first room.
type Game struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Published   bool      `json:"published,omitempty"`
	Root        *Node     `json:"rootNode"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// NewGame creates an empty game with a fresh id and no root node.
func NewGame(name, description string) *Game {
	return &Game{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// Flags returns the game's flag index: all flag nodes in depth-first order.
func (g *Game) Flags() []*Node {
	return CollectFlags(g.Root)
}

// Conditions returns the game's condition index: all condition payloads in
// depth-first order.
func (g *Game) Conditions() []ConditionRef {
	return CollectConditions(g.Root)
}
