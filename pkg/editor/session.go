package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/questforge/questforge/pkg/game"
)

// Result is the outcome of one mutation: either accepted (NodeID set for
// creates) or rejected with the authority's field errors, forwarded
// verbatim and in order.
type Result struct {
	Accepted    bool
	NodeID      string
	FieldErrors []game.FieldError
}

func rejected(errs []game.FieldError) *Result {
	return &Result{FieldErrors: errs}
}

// Session is a single-editor authoring session over one game tree. Every
// structural command flows through it: it applies the change optimistically
// to the tree, the widget and the flag/condition indexes, confirms it with
// the authority, and rolls the local change back if the authority rejects
// it. Mutations are serialized by an internal mutex so the apply-confirm
// window of one edit can never interleave with another.
type Session struct {
	mu         sync.Mutex
	log        *slog.Logger
	gameID     uuid.UUID
	root       *game.Node
	flags      []*game.Node
	conditions []game.ConditionRef
	authority  Authority
	widget     TreeWidget
}

// Open starts an editing session for the game. The tree is prepared once
// (children normalized, condition names derived) and both indexes are built
// from it; afterwards the session patches them incrementally.
func Open(g *game.Game, authority Authority, widget TreeWidget, log *slog.Logger) (*Session, error) {
	if err := game.PrepareTree(g.Root); err != nil {
		return nil, fmt.Errorf("prepare game tree: %w", err)
	}
	return &Session{
		log:        log,
		gameID:     g.ID,
		root:       g.Root,
		flags:      game.CollectFlags(g.Root),
		conditions: game.CollectConditions(g.Root),
		authority:  authority,
		widget:     widget,
	}, nil
}

// Root returns the session's tree root, nil for an empty game.
func (s *Session) Root() *game.Node { return s.root }

// Flags returns the flag index: all flag nodes in depth-first order.
func (s *Session) Flags() []*game.Node { return s.flags }

// Conditions returns the condition index: all condition payloads in
// depth-first order, with owning node ids.
func (s *Session) Conditions() []game.ConditionRef { return s.conditions }

// FindNode looks a node up by id in the session's tree.
func (s *Session) FindNode(id string) *game.Node {
	return game.FindNode(s.root, id)
}

// CreateRoom adds a room under parentID, or the root room when parentID is
// empty and the tree has no root yet.
func (s *Session) CreateRoom(ctx context.Context, parentID, name, description string) (*Result, error) {
	return s.createNode(ctx, parentID, game.NewRoom(name, description))
}

// CreateChoice adds a choice under parentID, or a flag when isFlag is set.
func (s *Session) CreateChoice(ctx context.Context, parentID, name string, isFlag bool) (*Result, error) {
	return s.createNode(ctx, parentID, game.NewChoice(name, isFlag))
}

// CreateCondition adds a condition under parentID gating on the given flag.
// The display name is derived from the flag immediately so the optimistic
// node renders correctly while the round-trip is in flight.
func (s *Session) CreateCondition(ctx context.Context, parentID, flagID string, state game.FlagState) (*Result, error) {
	node := game.NewCondition(flagID, state)
	if flag := s.FindNode(flagID); flag != nil {
		node.Name = game.ConditionName(flag.Name, state)
	}
	return s.createNode(ctx, parentID, node)
}

func (s *Session) createNode(ctx context.Context, parentID string, node *game.Node) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parent *game.Node
	wireParent := parentID
	if parentID == "" {
		if s.root != nil {
			return nil, game.ErrRootExists
		}
		wireParent = game.RootParentID
	} else {
		parent = game.FindNode(s.root, parentID)
		if parent == nil {
			return nil, fmt.Errorf("parent %s: %w", parentID, game.ErrParentNotFound)
		}
	}

	// Optimistic apply: the widget assigns the proposed id.
	node.ID = s.widget.CreateNode(parentID, node)
	if parent == nil {
		s.root = node
	} else {
		parent.Children = append(parent.Children, node)
	}

	req := CreateNodeRequest{
		ID:          node.ID,
		ParentID:    wireParent,
		Description: node.Description,
		Type:        node.Type,
		Condition:   node.Condition,
	}
	if node.Type != game.TypeCondition {
		req.Name = node.Name
	}

	fieldErrs, err := s.authority.CreateNode(ctx, s.gameID, req)
	if err != nil || len(fieldErrs) > 0 {
		// Rejection and transport failure both discard the optimistic
		// node; no partial state survives.
		s.widget.DeleteNode(node.ID)
		if parent == nil {
			s.root = nil
		} else {
			parent.Children = parent.Children[:len(parent.Children)-1]
		}
		if err != nil {
			return nil, fmt.Errorf("create node: %w", err)
		}
		s.log.Debug("Node creation rejected", "node", node.ID, "errors", len(fieldErrs))
		return rejected(fieldErrs), nil
	}

	switch node.Type {
	case game.TypeFlag:
		s.flags = append(s.flags, node)
	case game.TypeCondition:
		s.conditions = append(s.conditions, game.ConditionRef{
			NodeID:    node.ID,
			FlagID:    node.Condition.FlagID,
			FlagState: node.Condition.FlagState,
		})
	}
	s.widget.OpenSubtree(node.ID)

	s.log.Debug("Node created", "node", node.ID, "type", node.Type, "parent", wireParent)
	return &Result{Accepted: true, NodeID: node.ID}, nil
}

// Rename updates a node's name (and description, for rooms) after the
// authority accepts. Renaming a flag cascades: every condition referencing
// it gets its display name re-derived in the tree and the widget. The
// node's current condition payload rides along on the wire unchanged.
func (s *Session) Rename(ctx context.Context, nodeID, name, description string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := game.FindNode(s.root, nodeID)
	if node == nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, game.ErrNodeNotFound)
	}

	fieldErrs, err := s.authority.UpdateNode(ctx, s.gameID, nodeID, UpdateNodeRequest{
		Name:        name,
		Description: description,
		Type:        node.Type,
		Condition:   node.Condition,
	})
	if err != nil {
		return nil, fmt.Errorf("rename node: %w", err)
	}
	if len(fieldErrs) > 0 {
		return rejected(fieldErrs), nil
	}

	node.Name = name
	s.widget.RenameNode(nodeID, name)
	if node.Type == game.TypeRoom {
		node.Description = description
	}
	if node.Type == game.TypeFlag {
		s.renameDependentConditions(node)
	}
	return &Result{Accepted: true, NodeID: nodeID}, nil
}

// EditCondition replaces a condition node's payload. The display name is
// re-derived from the newly referenced flag.
func (s *Session) EditCondition(ctx context.Context, nodeID, flagID string, state game.FlagState) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := game.FindNode(s.root, nodeID)
	if node == nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, game.ErrNodeNotFound)
	}
	cond := &game.Condition{FlagID: flagID, FlagState: state}

	fieldErrs, err := s.authority.UpdateNode(ctx, s.gameID, nodeID, UpdateNodeRequest{
		Type:      node.Type,
		Condition: cond,
	})
	if err != nil {
		return nil, fmt.Errorf("edit condition: %w", err)
	}
	if len(fieldErrs) > 0 {
		return rejected(fieldErrs), nil
	}

	node.Condition = cond
	if flag := game.FindNode(s.root, flagID); flag != nil {
		node.Name = game.ConditionName(flag.Name, state)
		s.widget.RenameNode(nodeID, node.Name)
	}
	for i := range s.conditions {
		if s.conditions[i].NodeID == nodeID {
			s.conditions[i].FlagID = flagID
			s.conditions[i].FlagState = state
		}
	}
	return &Result{Accepted: true, NodeID: nodeID}, nil
}

// Delete removes a node once the authority accepts. Deleting a flag
// cascades to every condition referencing it: those nodes leave the tree,
// the widget and the condition index together. A rejected delete leaves
// all state untouched; the caller surfaces a generic notice and the user
// must retry. The root room cannot be deleted.
func (s *Session) Delete(ctx context.Context, nodeID string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := game.FindNode(s.root, nodeID)
	if node == nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, game.ErrNodeNotFound)
	}
	if node == s.root {
		return nil, game.ErrRootDelete
	}

	ok, err := s.authority.DeleteNode(ctx, s.gameID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("delete node: %w", err)
	}
	if !ok {
		return &Result{}, nil
	}

	// Flags and conditions nested deeper in the removed subtree keep their
	// index entries until the session is reopened; only a flag delete prunes
	// the indexes beyond the node itself.
	s.removeFromTree(nodeID)
	s.widget.DeleteNode(nodeID)

	if node.Type == game.TypeFlag {
		for i, f := range s.flags {
			if f.ID == nodeID {
				s.flags = append(s.flags[:i], s.flags[i+1:]...)
				break
			}
		}
		kept := s.conditions[:0]
		for _, ref := range s.conditions {
			if ref.FlagID == nodeID {
				s.removeFromTree(ref.NodeID)
				s.widget.DeleteNode(ref.NodeID)
				continue
			}
			kept = append(kept, ref)
		}
		s.conditions = kept
	}

	s.log.Debug("Node deleted", "node", nodeID, "type", node.Type)
	return &Result{Accepted: true, NodeID: nodeID}, nil
}

func (s *Session) removeFromTree(nodeID string) {
	var walk func(n *game.Node) bool
	walk = func(n *game.Node) bool {
		for i, child := range n.Children {
			if child.ID == nodeID {
				n.Children = append(n.Children[:i], n.Children[i+1:]...)
				return true
			}
			if walk(child) {
				return true
			}
		}
		return false
	}
	if s.root != nil {
		walk(s.root)
	}
}

func (s *Session) renameDependentConditions(flag *game.Node) {
	for _, ref := range s.conditions {
		if ref.FlagID != flag.ID {
			continue
		}
		name := game.ConditionName(flag.Name, ref.FlagState)
		if cond := game.FindNode(s.root, ref.NodeID); cond != nil {
			cond.Name = name
		}
		s.widget.RenameNode(ref.NodeID, name)
	}
}
