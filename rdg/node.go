// Copyright (c) 2026 The reana authors
//
// MIT License

// Package rdg defines Reliability Dependency Graphs (RDG): directed acyclic
// graphs of models whose reliability depends on the reliability of their
// children, each child being scoped by a presence condition over the
// features of a product line.
package rdg

import (
	"fmt"
	"strings"

	"github.com/reana-spl/reana/add"
)

// Node is an element of an RDG. Nodes are immutable once created; the same
// node may be the child of several parents.
type Node struct {
	id       string
	model    any
	presence add.Node
	children []*Node
}

// NewNode returns a node with the given identifier, model, presence condition
// and children, in this order. The identifier is used both as a cache key and
// as the name of the variable that stands for the reliability of the node in
// the expression of its parents. A nil presence condition means that the node
// is always present.
func NewNode(id string, model any, presence add.Node, children ...*Node) *Node {
	c := make([]*Node, len(children))
	copy(c, children)
	return &Node{
		id:       id,
		model:    model,
		presence: presence,
		children: c,
	}
}

// ID returns the identifier of the node.
func (n *Node) ID() string {
	return n.id
}

// Model returns the state-transition model of the node. Its content is only
// meaningful to a model checker.
func (n *Node) Model() any {
	return n.model
}

// PresenceCondition returns the boolean diagram of the configurations where
// the node is present, or nil if it is always present.
func (n *Node) PresenceCondition() add.Node {
	return n.presence
}

// Children returns a copy of the (ordered) list of children of the node.
func (n *Node) Children() []*Node {
	c := make([]*Node, len(n.children))
	copy(c, n.children)
	return c
}

func (n *Node) String() string {
	if len(n.children) == 0 {
		return n.id
	}
	ids := make([]string, len(n.children))
	for k, c := range n.children {
		if c == nil {
			ids[k] = "<nil>"
			continue
		}
		ids[k] = c.id
	}
	return fmt.Sprintf("%s(%s)", n.id, strings.Join(ids, ", "))
}
