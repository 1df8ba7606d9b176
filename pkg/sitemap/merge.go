package sitemap

import (
	"github.com/foomo/docsite/content"
)

// Part the tree of one site and the optional server it is deployed at
type Part struct {
	Tree   content.URLSet
	Server string
}

// Rewrite returns a copy of set with server prepended to every key and path
func Rewrite(set content.URLSet, server string) content.URLSet {
	if server == "" {
		return set.Clone()
	}
	out := make(content.URLSet, len(set))
	for key, node := range set {
		out[server+key] = rewriteNode(node, server)
	}
	return out
}

func rewriteNode(node *content.TreeNode, server string) *content.TreeNode {
	if node == nil {
		return nil
	}
	c := node.Clone()
	c.Path = server + node.Path
	c.Children = make(content.URLSet, len(node.Children))
	for key, child := range node.Children {
		c.Children[server+key] = rewriteNode(child, server)
	}
	return c
}

// Merge unions the rewritten top level entries of all parts. Inputs are not
// modified. Prefixes are expected to be disjoint, see ValidateSpecs.
func Merge(parts ...Part) content.URLSet {
	out := content.URLSet{}
	for _, part := range parts {
		for key, node := range Rewrite(part.Tree, part.Server) {
			out[key] = node
		}
	}
	return out
}
