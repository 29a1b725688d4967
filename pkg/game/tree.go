package game

import (
	"errors"
	"fmt"
	"strings"
)

// RootParentID is the sentinel parent id used when creating the root room
// of an empty tree.
const RootParentID = "###"

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrNodeExists     = errors.New("node already exists")
	ErrParentNotFound = errors.New("parent node not found")
	ErrParentMismatch = errors.New("node type cannot be added to this parent")
	ErrFlagNotFound   = errors.New("referenced flag not found")
	ErrRootDelete     = errors.New("root node cannot be deleted")
	ErrRootExists     = errors.New("root node already exists")
	ErrEmptyValue     = errors.New("value cannot be empty")
)

// FindNode does a depth-first search for a node by id. Returns nil when no
// node matches.
func FindNode(root *Node, id string) *Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := FindNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// CollectFlags returns all flag nodes in depth-first child order. This order
// is the canonical flag-index order.
func CollectFlags(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var flags []*Node
	if root.Type == TypeFlag {
		flags = append(flags, root)
	}
	for _, child := range root.Children {
		flags = append(flags, CollectFlags(child)...)
	}
	return flags
}

// CollectConditions returns all condition payloads in depth-first child
// order, each carrying the id of its owning node.
func CollectConditions(root *Node) []ConditionRef {
	if root == nil {
		return nil
	}
	var conditions []ConditionRef
	if root.Type == TypeCondition && root.Condition != nil {
		conditions = append(conditions, ConditionRef{
			NodeID:    root.ID,
			FlagID:    root.Condition.FlagID,
			FlagState: root.Condition.FlagState,
		})
	}
	for _, child := range root.Children {
		conditions = append(conditions, CollectConditions(child)...)
	}
	return conditions
}

// canParent reports whether a child of type childType may be attached to
// parent. The room-child check is separate because it depends on the
// parent's current children, not just the types.
func canParent(parent *Node, childType NodeType) bool {
	switch parent.Type {
	case TypeRoom:
		return childType == TypeChoice || childType == TypeFlag
	case TypeChoice, TypeCondition:
		return childType == TypeRoom || childType == TypeCondition
	default: // flags are leaves
		return false
	}
}

// AddNode attaches a new node to the tree under parentID, enforcing the
// structural rules: one root room per tree (created with the RootParentID
// sentinel), rooms only under choices and conditions that have no room child
// yet, choices and flags only under rooms, conditions referencing an
// existing flag. Returns the created node.
func (g *Game) AddNode(id, parentID, name, description string, nodeType NodeType, cond *Condition) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("node id: %w", ErrEmptyValue)
	}

	if g.Root == nil {
		if parentID != RootParentID {
			return nil, fmt.Errorf("tree is empty, parent must be %q: %w", RootParentID, ErrParentNotFound)
		}
		if nodeType != TypeRoom {
			return nil, fmt.Errorf("root must be a room: %w", ErrParentMismatch)
		}
		root := NewRoom(strings.TrimSpace(name), strings.TrimSpace(description))
		root.ID = id
		g.Root = root
		return root, nil
	}

	if parentID == RootParentID {
		return nil, ErrRootExists
	}
	if FindNode(g.Root, id) != nil {
		return nil, fmt.Errorf("node %s: %w", id, ErrNodeExists)
	}
	parent := FindNode(g.Root, parentID)
	if parent == nil {
		return nil, fmt.Errorf("parent %s: %w", parentID, ErrParentNotFound)
	}
	if !canParent(parent, nodeType) {
		return nil, fmt.Errorf("%s under %s: %w", nodeType, parent.Type, ErrParentMismatch)
	}

	var node *Node
	switch nodeType {
	case TypeRoom:
		if parent.HasRoomChild() {
			return nil, fmt.Errorf("parent %s already has a room child: %w", parentID, ErrParentMismatch)
		}
		node = NewRoom(strings.TrimSpace(name), strings.TrimSpace(description))
	case TypeChoice, TypeFlag:
		node = NewChoice(strings.TrimSpace(name), nodeType == TypeFlag)
	case TypeCondition:
		if cond == nil {
			return nil, fmt.Errorf("condition payload: %w", ErrEmptyValue)
		}
		if flag := FindNode(g.Root, cond.FlagID); flag == nil || flag.Type != TypeFlag {
			return nil, fmt.Errorf("flag %s: %w", cond.FlagID, ErrFlagNotFound)
		}
		node = NewCondition(cond.FlagID, cond.FlagState)
	default:
		return nil, fmt.Errorf("unknown node type %q: %w", nodeType, ErrParentMismatch)
	}

	node.ID = id
	parent.Children = append(parent.Children, node)
	return node, nil
}

// EditNode updates a node in place. Rooms take a new name and description,
// choices and flags a new name, conditions a new payload (which must
// reference an existing flag). Condition display names are not updated here;
// they are derived, see DeriveConditionNames.
func (g *Game) EditNode(nodeID, name, description string, cond *Condition) error {
	node := FindNode(g.Root, nodeID)
	if node == nil {
		return fmt.Errorf("node %s: %w", nodeID, ErrNodeNotFound)
	}

	switch node.Type {
	case TypeRoom:
		node.Name = strings.TrimSpace(name)
		node.Description = strings.TrimSpace(description)
	case TypeChoice, TypeFlag:
		node.Name = strings.TrimSpace(name)
	case TypeCondition:
		if cond == nil {
			return fmt.Errorf("condition payload: %w", ErrEmptyValue)
		}
		if flag := FindNode(g.Root, cond.FlagID); flag == nil || flag.Type != TypeFlag {
			return fmt.Errorf("flag %s: %w", cond.FlagID, ErrFlagNotFound)
		}
		node.Condition = &Condition{FlagID: cond.FlagID, FlagState: cond.FlagState}
	}
	return nil
}

// DeleteNode removes a node from the tree. Deleting the root is refused.
// Deleting a flag cascades: every condition node referencing the flag is
// removed as well, anywhere in the tree.
func (g *Game) DeleteNode(nodeID string) error {
	node := FindNode(g.Root, nodeID)
	if node == nil {
		return fmt.Errorf("node %s: %w", nodeID, ErrNodeNotFound)
	}
	if node == g.Root {
		return ErrRootDelete
	}

	removeChild(g.Root, nodeID)
	if node.Type == TypeFlag {
		removeConditionsByFlag(g.Root, nodeID)
	}
	return nil
}

func removeChild(node *Node, id string) bool {
	for i, child := range node.Children {
		if child.ID == id {
			node.Children = append(node.Children[:i], node.Children[i+1:]...)
			return true
		}
		if removeChild(child, id) {
			return true
		}
	}
	return false
}

// removeConditionsByFlag prunes every condition node referencing flagID,
// including conditions nested under other removed-from parents.
func removeConditionsByFlag(node *Node, flagID string) {
	kept := node.Children[:0]
	for _, child := range node.Children {
		if child.Type == TypeCondition && child.Condition != nil && child.Condition.FlagID == flagID {
			continue
		}
		removeConditionsByFlag(child, flagID)
		kept = append(kept, child)
	}
	node.Children = kept
}
