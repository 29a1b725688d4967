package play

import (
	"errors"
	"fmt"

	"github.com/questforge/questforge/pkg/game"
)

var (
	ErrNoRoot        = errors.New("game has no root room")
	ErrUnknownChoice = errors.New("choice not offered for this room")
)

// Session is the state of a single playthrough: the current room plus the
// ordered collection of flag ids the player has triggered. A session is
// single-player and not safe for concurrent use; each playthrough owns its
// own session.
type Session struct {
	root        *game.Node
	current     *game.Node
	activeFlags []string
}

// NewSession starts a playthrough at the game's root room.
func NewSession(g *game.Game) (*Session, error) {
	if g.Root == nil {
		return nil, ErrNoRoot
	}
	return &Session{
		root:        g.Root,
		current:     g.Root,
		activeFlags: []string{},
	}, nil
}

// Current returns the room the player is in.
func (s *Session) Current() *game.Node {
	return s.current
}

// ActiveFlags returns the ids of the flags triggered so far, in trigger
// order.
func (s *Session) ActiveFlags() []string {
	return s.activeFlags
}

// Choices returns the options the current room offers. An empty result
// means the game is over; that is a normal outcome, not an error.
func (s *Session) Choices() []Choice {
	return NextChoices(s.current, s.activeFlags)
}

// Over reports whether the current room offers no choices.
func (s *Session) Over() bool {
	return len(s.Choices()) == 0
}

// Choose selects one of the currently offered choices by node id. Selecting
// a flag triggers it and re-enters the same room; selecting a plain choice
// transitions to its resolved room. Returns the room the player is in after
// the selection.
func (s *Session) Choose(choiceID string) (*game.Node, error) {
	for _, c := range s.Choices() {
		if c.ID != choiceID {
			continue
		}
		if c.Type == game.TypeFlag {
			s.activeFlags = append(s.activeFlags, c.ID)
		}
		s.current = c.NextRoom
		return s.current, nil
	}
	return nil, fmt.Errorf("%s: %w", choiceID, ErrUnknownChoice)
}

// Restart resets the session to the root room with no triggered flags.
func (s *Session) Restart() {
	s.current = s.root
	s.activeFlags = []string{}
}
