package game

import (
	"fmt"
)

// Condition display name fragments. The derived name reads
// "If <flag name> is active" / "If <flag name> is not active".
const (
	conditionPrefix = "If"
	activeSuffix    = "is active"
	notActiveSuffix = "is not active"
)

// ConditionName builds the derived display name for a condition on the
// given flag.
func ConditionName(flagName string, state FlagState) string {
	suffix := activeSuffix
	if state == FlagNotActive {
		suffix = notActiveSuffix
	}
	return conditionPrefix + " " + flagName + " " + suffix
}

// PrepareTree readies a freshly-decoded game tree for the editor and the
// resolution engine: every node gets a non-nil children slice, and every
// condition node gets its display name derived from the flag it references.
// Each node is visited exactly once. An unresolvable flag reference is a
// data-integrity failure and is returned as an ErrFlagNotFound error.
func PrepareTree(root *Node) error {
	if root == nil {
		return nil
	}
	if err := normalize(root); err != nil {
		return err
	}
	return DeriveConditionNames(root, root)
}

func normalize(node *Node) error {
	switch node.Type {
	case TypeRoom, TypeChoice, TypeFlag:
	case TypeCondition:
		if node.Condition == nil {
			return fmt.Errorf("condition node %s has no condition payload: %w", node.ID, ErrEmptyValue)
		}
	default:
		return fmt.Errorf("node %s has unknown type %q: %w", node.ID, node.Type, ErrNodeNotFound)
	}
	if node.Children == nil {
		node.Children = []*Node{}
	}
	for _, child := range node.Children {
		if err := normalize(child); err != nil {
			return err
		}
	}
	return nil
}

// DeriveConditionNames recomputes the display name of every condition node
// in the subtree at node, resolving flags against root. It must be re-run
// for affected conditions whenever a flag is renamed. Idempotent: repeated
// calls without an intervening flag rename produce identical names.
func DeriveConditionNames(node, root *Node) error {
	if node.Type == TypeCondition && node.Condition != nil {
		flag := FindNode(root, node.Condition.FlagID)
		if flag == nil {
			return fmt.Errorf("condition %s references flag %s: %w", node.ID, node.Condition.FlagID, ErrFlagNotFound)
		}
		node.Name = ConditionName(flag.Name, node.Condition.FlagState)
	}
	for _, child := range node.Children {
		if err := DeriveConditionNames(child, root); err != nil {
			return err
		}
	}
	return nil
}
