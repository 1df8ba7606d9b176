package content

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type (
	// TreeNode one URL path in the navigation tree of a site
	TreeNode struct {
		Title      string     `json:"title,omitempty"`
		Path       string     `json:"path"`
		Modified   *time.Time `json:"modified,omitempty"`
		ChangeFreq string     `json:"changefreq,omitempty"`
		Children   URLSet     `json:"children"`
	}
	// URLSet maps absolute paths to tree nodes. It is either the tree of a
	// single site or the union of several sites.
	URLSet map[string]*TreeNode
)

// NewTreeNode constructor
func NewTreeNode(path string) *TreeNode {
	return &TreeNode{
		Path:     path,
		Children: URLSet{},
	}
}

// IsPlaceholder nodes that only exist as ancestors carry no title
func (n *TreeNode) IsPlaceholder() bool {
	return n.Title == "" && n.Modified == nil
}

// IsLeaf whether the node has no children
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Clone deep copy of a node
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	c := *n
	if n.Modified != nil {
		m := *n.Modified
		c.Modified = &m
	}
	c.Children = n.Children.Clone()
	return &c
}

// Keys sorted keys of the set
func (s URLSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone deep copy of the set
func (s URLSet) Clone() URLSet {
	c := make(URLSet, len(s))
	for key, node := range s {
		c[key] = node.Clone()
	}
	return c
}

// Walk visits every node depth-first, parents before children, siblings in
// key order
func (s URLSet) Walk(fn func(node *TreeNode) error) error {
	for _, key := range s.Keys() {
		node := s[key]
		if node == nil {
			continue
		}
		if err := fn(node); err != nil {
			return err
		}
		if err := node.Children.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Len number of nodes in the set including all descendants
func (s URLSet) Len() (n int) {
	_ = s.Walk(func(*TreeNode) error {
		n++
		return nil
	})
	return n
}

// PrintTree essentially a recursive dump
func (s URLSet) PrintTree(level int) string {
	var b strings.Builder
	for _, key := range s.Keys() {
		node := s[key]
		b.WriteString(fmt.Sprintf("%s%s %q\n", strings.Repeat(Indent, level), key, node.Title))
		b.WriteString(node.Children.PrintTree(level + 1))
	}
	return b.String()
}
