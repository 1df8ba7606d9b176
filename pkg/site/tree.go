package site

import (
	"sort"
	"strings"

	"github.com/foomo/docsite/content"
	"go.uber.org/zap"
)

type (
	// Entry one built page as seen by the tree builder
	Entry struct {
		PagePath string
		Parent   string
		Pattern  string
		Metadata *content.Metadata
	}
	// TreeBuilder assembles the navigation tree of a site from its flat page list
	TreeBuilder struct {
		l   *zap.Logger
		cfg Config
	}
)

// NewEntry normalizes the page path into an entry
func NewEntry(cfg Config, pagePath string, meta *content.Metadata) Entry {
	parent, pattern := Normalize(cfg, pagePath)
	return Entry{
		PagePath: pagePath,
		Parent:   parent,
		Pattern:  pattern,
		Metadata: meta,
	}
}

func NewTreeBuilder(l *zap.Logger, cfg Config) *TreeBuilder {
	return &TreeBuilder{
		l:   l.Named("tree"),
		cfg: cfg,
	}
}

// BuildTree returns a set with the site root as its only key. Entries are
// applied in page path order; when two pages map onto the same pattern the
// later one wins and a warning is logged.
func (b *TreeBuilder) BuildTree(entries []Entry) content.URLSet {
	rootPath := b.cfg.RootPath()
	root := content.NewTreeNode(rootPath)
	root.Title = b.cfg.HumanName

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PagePath < sorted[j].PagePath
	})

	owners := map[string]string{}
	for _, entry := range sorted {
		if entry.Metadata.ExcludedFromTree() {
			b.l.Debug("excluded from tree", zap.String("page", entry.PagePath))
			continue
		}
		if owner, ok := owners[entry.Pattern]; ok {
			b.l.Warn("pages collide on the same path, last one wins",
				zap.String("path", entry.Pattern),
				zap.String("page", entry.PagePath),
				zap.String("overwritten", owner),
			)
		}
		owners[entry.Pattern] = entry.PagePath

		node := root
		for _, subpath := range b.subpaths(entry.Parent) {
			child, ok := node.Children[subpath]
			if !ok {
				child = content.NewTreeNode(subpath)
				node.Children[subpath] = child
			}
			node = child
		}
		if entry.Pattern != node.Path {
			child, ok := node.Children[entry.Pattern]
			if !ok {
				child = content.NewTreeNode(entry.Pattern)
				node.Children[entry.Pattern] = child
			}
			node = child
		}
		b.apply(node, entry.Metadata)
	}
	return content.URLSet{rootPath: root}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (b *TreeBuilder) apply(node *content.TreeNode, meta *content.Metadata) {
	if meta == nil {
		return
	}
	node.Title = meta.Title
	node.ChangeFreq = meta.ChangeFreq
	node.Modified = nil
	if !meta.Modified.IsZero() {
		modified := meta.Modified
		node.Modified = &modified
	}
}

// subpaths successive ancestors of parent below the root, shortest first
func (b *TreeBuilder) subpaths(parent string) []string {
	rootPath := b.cfg.RootPath()
	base := strings.TrimSuffix(rootPath, content.PathSeparator)
	rel := strings.Trim(strings.TrimPrefix(parent, rootPath), content.PathSeparator)
	if rel == "" {
		return nil
	}
	segments := strings.Split(rel, content.PathSeparator)
	subpaths := make([]string, 0, len(segments))
	current := base
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		current += content.PathSeparator + segment
		subpaths = append(subpaths, current)
	}
	return subpaths
}
