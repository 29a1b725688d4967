package play

import (
	"errors"
	"reflect"
	"testing"

	"github.com/questforge/questforge/pkg/game"
)

// sessionGame is a two-room escape: the door only opens after the key flag
// is triggered, otherwise the choice leads back to the cell.
func sessionGame() *game.Game {
	g := game.NewGame("Escape", "A cell with a stubborn door.")
	g.Root = room("cell", "Cell",
		choice("door", "Try the door",
			room("cell2", "Cell",
				choice("door2", "Try the door again"),
			),
			condition("haskey", "key", game.FlagActive,
				room("outside", "Outside"),
			),
		),
		flag("key", "Take the key"),
	)
	return g
}

func TestNewSession(t *testing.T) {
	if _, err := NewSession(&game.Game{}); !errors.Is(err, ErrNoRoot) {
		t.Errorf("NewSession on rootless game: err = %v, want %v", err, ErrNoRoot)
	}

	s, err := NewSession(sessionGame())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.Current().ID != "cell" {
		t.Errorf("start room = %s, want cell", s.Current().ID)
	}
	if len(s.ActiveFlags()) != 0 {
		t.Errorf("fresh session has flags %v", s.ActiveFlags())
	}
}

func TestSessionPlaythrough(t *testing.T) {
	s, err := NewSession(sessionGame())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	// Without the key, the door leads to the dead-end cell.
	if _, err := s.Choose("door"); err != nil {
		t.Fatalf("Choose(door): %v", err)
	}
	if s.Current().ID != "cell2" {
		t.Errorf("room after keyless door = %s, want cell2", s.Current().ID)
	}
	if !s.Over() {
		t.Error("dead-end room should be game over")
	}

	s.Restart()
	if s.Current().ID != "cell" || len(s.ActiveFlags()) != 0 {
		t.Fatalf("after restart: room %s, flags %v", s.Current().ID, s.ActiveFlags())
	}

	// Taking the key re-enters the cell with the flag triggered.
	if _, err := s.Choose("key"); err != nil {
		t.Fatalf("Choose(key): %v", err)
	}
	if s.Current().ID != "cell" {
		t.Errorf("room after flag = %s, want cell", s.Current().ID)
	}
	if !reflect.DeepEqual(s.ActiveFlags(), []string{"key"}) {
		t.Errorf("active flags = %v, want [key]", s.ActiveFlags())
	}

	// The key flag is no longer offered.
	for _, c := range s.Choices() {
		if c.ID == "key" {
			t.Error("triggered flag still offered")
		}
	}

	// The same door now resolves through the condition.
	if _, err := s.Choose("door"); err != nil {
		t.Fatalf("Choose(door) with key: %v", err)
	}
	if s.Current().ID != "outside" {
		t.Errorf("room after keyed door = %s, want outside", s.Current().ID)
	}
	if !s.Over() {
		t.Error("outside has no choices, should be game over")
	}
}

func TestSessionChooseUnknown(t *testing.T) {
	s, err := NewSession(sessionGame())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if _, err := s.Choose("ghost"); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("Choose(ghost): err = %v, want %v", err, ErrUnknownChoice)
	}

	// Choosing a flag twice: the second attempt is no longer offered.
	if _, err := s.Choose("key"); err != nil {
		t.Fatalf("Choose(key): %v", err)
	}
	if _, err := s.Choose("key"); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("second Choose(key): err = %v, want %v", err, ErrUnknownChoice)
	}
}
