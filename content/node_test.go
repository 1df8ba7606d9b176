package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testURLSet() URLSet {
	modified := time.Date(2019, 2, 11, 18, 41, 35, 0, time.UTC)
	root := NewTreeNode("/")
	root.Title = "root"
	foo := NewTreeNode("/foo")
	foo.Title = "Foo"
	foo.Modified = &modified
	bar := NewTreeNode("/foo/bar")
	bar.Title = "Bar"
	foo.Children[bar.Path] = bar
	root.Children[foo.Path] = foo
	root.Children["/baz"] = NewTreeNode("/baz")
	return URLSet{root.Path: root}
}

func TestURLSetWalkOrder(t *testing.T) {
	var paths []string
	err := testURLSet().Walk(func(node *TreeNode) error {
		paths = append(paths, node.Path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/baz", "/foo", "/foo/bar"}, paths)
}

func TestURLSetLen(t *testing.T) {
	assert.Equal(t, 4, testURLSet().Len())
	assert.Equal(t, 0, URLSet{}.Len())
}

func TestURLSetClone(t *testing.T) {
	original := testURLSet()
	clone := original.Clone()
	require.Equal(t, original, clone)

	clone["/"].Children["/foo"].Title = "changed"
	*clone["/"].Children["/foo"].Modified = time.Time{}
	assert.Equal(t, "Foo", original["/"].Children["/foo"].Title)
	assert.False(t, original["/"].Children["/foo"].Modified.IsZero())
}

func TestTreeNodePlaceholder(t *testing.T) {
	set := testURLSet()
	assert.True(t, set["/"].Children["/baz"].IsPlaceholder())
	assert.False(t, set["/"].Children["/foo"].IsPlaceholder())
	assert.True(t, set["/"].Children["/baz"].IsLeaf())
}

func TestMetadataExcludedFromTree(t *testing.T) {
	tests := []struct {
		name string
		meta *Metadata
		want bool
	}{
		{"no response", &Metadata{Title: "a"}, false},
		{"ok", &Metadata{Response: &Response{Status: 200}}, false},
		{"deleted", &Metadata{Response: &Response{Deleted: true}}, true},
		{"redirect", &Metadata{Response: &Response{Status: 301}}, true},
		{"not found", &Metadata{Response: &Response{Status: 404}}, true},
		{"not modified boundary", &Metadata{Response: &Response{Status: 299}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.ExcludedFromTree())
		})
	}
}
