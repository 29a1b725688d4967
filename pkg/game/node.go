package game

// NodeType discriminates the four kinds of nodes in a game tree.
type NodeType string

const (
	TypeRoom      NodeType = "ROOM"
	TypeChoice    NodeType = "CHOICE"
	TypeFlag      NodeType = "FLAG"
	TypeCondition NodeType = "CONDITION"
)

// FlagState is the flag state a condition requires to be satisfied.
type FlagState string

const (
	FlagActive    FlagState = "ACTIVE"
	FlagNotActive FlagState = "NOT_ACTIVE"
)

// Valid reports whether the flag state is one of the known values.
func (fs FlagState) Valid() bool {
	return fs == FlagActive || fs == FlagNotActive
}

// Condition gates a subtree on the runtime state of a referenced flag.
// It references the flag by id; it does not own the flag node.
type Condition struct {
	FlagID    string    `json:"flagId"`
	FlagState FlagState `json:"flagState"`
}

// Node is a single element of the game tree. Which fields are meaningful
// depends on Type: Description is set for rooms only, Condition for
// condition nodes only. A condition node's Name is always derived from the
// referenced flag and is never author-supplied.
type Node struct {
	ID          string     `json:"id,omitempty"` // empty until assigned by the authority
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Type        NodeType   `json:"type"`
	Condition   *Condition `json:"condition,omitempty"`
	Children    []*Node    `json:"children"`
}

// NewRoom creates an unsaved room node.
func NewRoom(name, description string) *Node {
	return &Node{
		Name:        name,
		Description: description,
		Type:        TypeRoom,
		Children:    []*Node{},
	}
}

// NewChoice creates an unsaved choice node, or a flag node when isFlag is
// set. A flag behaves as a one-time-triggerable choice during play.
func NewChoice(name string, isFlag bool) *Node {
	t := TypeChoice
	if isFlag {
		t = TypeFlag
	}
	return &Node{
		Name:     name,
		Type:     t,
		Children: []*Node{},
	}
}

// NewCondition creates an unsaved condition node. The display name is left
// empty; it is derived from the referenced flag via DeriveConditionNames.
func NewCondition(flagID string, flagState FlagState) *Node {
	return &Node{
		Type:      TypeCondition,
		Condition: &Condition{FlagID: flagID, FlagState: flagState},
		Children:  []*Node{},
	}
}

// HasRoomChild reports whether a room exists among the node's direct
// children. A choice or condition subtree resolves to at most one default
// next room, so a second room child is never allowed.
func (n *Node) HasRoomChild() bool {
	for _, child := range n.Children {
		if child.Type == TypeRoom {
			return true
		}
	}
	return false
}

// ConditionRef is a flat condition-index entry: the condition payload plus
// the id of the node that owns it.
type ConditionRef struct {
	NodeID    string    `json:"nodeId"`
	FlagID    string    `json:"flagId"`
	FlagState FlagState `json:"flagState"`
}
