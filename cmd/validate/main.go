package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/questforge/questforge/pkg/game"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <game.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &GameValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Game file is valid!")
}

type GameValidator struct {
	errors []string
	seen   map[string]bool
}

func (v *GameValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var g game.Game
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&g); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.errors = nil
	v.seen = make(map[string]bool)
	v.validateGame(&g)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *GameValidator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf("  - "+format, args...))
}

func (v *GameValidator) validateGame(g *game.Game) {
	if errs := validGameInfo(g); len(errs) > 0 {
		v.errors = append(v.errors, errs...)
	}

	if g.Root == nil {
		return // an empty tree is a valid (unstarted) game
	}
	if g.Root.Type != game.TypeRoom {
		v.addError("root node %s must be a ROOM, got %s", g.Root.ID, g.Root.Type)
	}

	v.validateNode(g.Root, g.Root)

	// Unresolvable flag references are caught again here via name
	// derivation so corrupted files fail the same way the editor would.
	if err := game.PrepareTree(g.Root); err != nil {
		v.addError("tree preparation failed: %v", err)
	}
}

func validGameInfo(g *game.Game) []string {
	var errs []string
	for _, fe := range game.ValidateNodePayload(game.TypeRoom, g.Name, g.Description, nil) {
		errs = append(errs, fmt.Sprintf("  - game %s: %s", fe.Field, fe.DefaultMessage))
	}
	return errs
}

func (v *GameValidator) validateNode(node, root *game.Node) {
	if node.ID == "" {
		v.addError("node %q has no id", node.Name)
	} else if v.seen[node.ID] {
		v.addError("duplicate node id %s", node.ID)
	}
	v.seen[node.ID] = true

	switch node.Type {
	case game.TypeRoom, game.TypeChoice, game.TypeFlag:
		if node.Name == "" {
			v.addError("%s node %s has no name", node.Type, node.ID)
		}
	case game.TypeCondition:
		v.validateCondition(node, root)
	default:
		v.addError("node %s has unknown type %q", node.ID, node.Type)
	}

	roomChildren := 0
	for _, child := range node.Children {
		switch node.Type {
		case game.TypeRoom:
			if child.Type != game.TypeChoice && child.Type != game.TypeFlag {
				v.addError("%s node %s cannot be a child of room %s", child.Type, child.ID, node.ID)
			}
		case game.TypeChoice, game.TypeCondition:
			if child.Type != game.TypeRoom && child.Type != game.TypeCondition {
				v.addError("%s node %s cannot be a child of %s %s", child.Type, child.ID, node.Type, node.ID)
			}
			if child.Type == game.TypeRoom {
				roomChildren++
			}
		case game.TypeFlag:
			v.addError("flag %s cannot have children, found %s", node.ID, child.ID)
		}

		v.validateNode(child, root)
	}

	if roomChildren > 1 {
		v.addError("%s node %s has %d room children, at most one is allowed", node.Type, node.ID, roomChildren)
	}
}

func (v *GameValidator) validateCondition(node, root *game.Node) {
	if node.Condition == nil {
		v.addError("condition node %s has no condition payload", node.ID)
		return
	}
	if !node.Condition.FlagState.Valid() {
		v.addError("condition node %s has invalid flag state %q", node.ID, node.Condition.FlagState)
	}
	flag := game.FindNode(root, node.Condition.FlagID)
	if flag == nil {
		v.addError("condition node %s references missing flag %s", node.ID, node.Condition.FlagID)
	} else if flag.Type != game.TypeFlag {
		v.addError("condition node %s references %s node %s as its flag", node.ID, flag.Type, flag.ID)
	}
}
