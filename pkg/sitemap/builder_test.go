package sitemap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/foomo/docsite/pkg/repo/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// fakeClone writes the mock site below the spec's source dir
func fakeClone(clones *[]string) CloneFunc {
	return func(ctx context.Context, l *zap.Logger, url, ref, dir string) error {
		*clones = append(*clones, url+"@"+ref)
		for name, data := range mock.SiteFiles {
			p := filepath.Join(dir, "source", filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
				return err
			}
			if err := os.WriteFile(p, []byte(data), 0o600); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestBuilderCreate(t *testing.T) {
	var clones []string
	b := NewBuilder(zaptest.NewLogger(t),
		BuilderWithWorkDir(t.TempDir()),
		BuilderWithCloneFunc(fakeClone(&clones)),
	)

	labs := testSpec("labs", "/labs")
	labs.Server = "https://labs.arxiv.org"
	set, err := b.Create(context.Background(), []Spec{testSpec("help", "/help"), labs})
	require.NoError(t, err)
	assert.Len(t, clones, 2)

	assert.ElementsMatch(t, []string{"/help", "https://labs.arxiv.org/labs"}, set.Keys())
	help := set["/help"]
	assert.Equal(t, "Home", help.Title)
	assert.ElementsMatch(t, []string{"/help/about", "/help/help"}, help.Children.Keys())

	remote := set["https://labs.arxiv.org/labs"]
	require.NotNil(t, remote)
	assert.Equal(t, "https://labs.arxiv.org/labs", remote.Path)
	assert.ElementsMatch(t, []string{"https://labs.arxiv.org/labs/help/submit"}, remote.Children["https://labs.arxiv.org/labs/help"].Children.Keys())
}

func TestBuilderCreateValidatesFirst(t *testing.T) {
	var clones []string
	b := NewBuilder(zaptest.NewLogger(t), BuilderWithCloneFunc(fakeClone(&clones)))

	invalid := testSpec("labs", "/labs")
	invalid.Repo = "https://github.com/arXiv/arxiv-labs"
	_, err := b.Create(context.Background(), []Spec{testSpec("help", "/help"), invalid})
	assert.ErrorIs(t, err, ErrInvalidSpec)
	assert.Empty(t, clones)
}

func TestBuilderCreateCloneFails(t *testing.T) {
	b := NewBuilder(zaptest.NewLogger(t), BuilderWithCloneFunc(func(ctx context.Context, l *zap.Logger, url, ref, dir string) error {
		return os.ErrPermission
	}))
	_, err := b.Create(context.Background(), []Spec{testSpec("help", "/help")})
	assert.ErrorIs(t, err, os.ErrPermission)
}
