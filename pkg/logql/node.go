package logql

import "strings"

// Node is one matched grammar rule. Leaf nodes carry the token value in
// Value (quoted strings are unquoted); composite nodes carry their source
// text.
type Node struct {
	Rule  string
	Value string
	Pos   int
	Text  string
	// Nodes are the direct children in source order.
	Nodes []*Node
}

// Tree is the result of a successful parse.
type Tree struct {
	Root *Node
}

// Child returns the first descendant matching rule, searching depth-first in
// source order. It returns nil if there is none.
func (n *Node) Child(rule string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Nodes {
		if c.Rule == rule {
			return c
		}
		if found := c.Child(rule); found != nil {
			return found
		}
	}
	return nil
}

// Children returns every descendant matching rule in source order, including
// matches nested inside other matches.
func (n *Node) Children(rule string) []*Node {
	if n == nil {
		return nil
	}
	var res []*Node
	for _, c := range n.Nodes {
		if c.Rule == rule {
			res = append(res, c)
		}
		res = append(res, c.Children(rule)...)
	}
	return res
}

// Has reports whether a direct child matches rule.
func (n *Node) Has(rule string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Nodes {
		if c.Rule == rule {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	if n == nil {
		return ""
	}
	return n.Text
}

// Dump renders the rule structure of the subtree, e.g.
// (log_stream_selector (log_stream_selector_rule (label app) ...)).
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(n.Rule)
	if len(n.Nodes) == 0 {
		sb.WriteByte(' ')
		sb.WriteString(n.Value)
	}
	for _, c := range n.Nodes {
		sb.WriteByte(' ')
		c.dump(sb)
	}
	sb.WriteByte(')')
}

func (n *Node) add(children ...*Node) *Node {
	n.Nodes = append(n.Nodes, children...)
	return n
}
