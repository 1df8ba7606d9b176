package vcs

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/foomo/docsite/content"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const gitHubURL = "https://github.com"

var gitHubRemotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^git@github\.com:([^\.]+)\.git$`),
	regexp.MustCompile(`^https://github\.com/([^\.]+?)(?:\.git)?$`),
}

// Git reads history through go-git, no git binary is required
type Git struct {
	l        *zap.Logger
	repo     *git.Repository
	root     string
	repoName string
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// OpenGit opens the repository containing path
func OpenGit(l *zap.Logger, path string) (*Git, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open repository for %q", path)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get worktree")
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	inst := &Git{
		l:    l.Named("git"),
		repo: repo,
		root: root,
	}
	inst.repoName = inst.gitHubRepoName()
	inst.l.Debug("opened repository", zap.String("root", root), zap.String("github", inst.repoName))
	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (g *Git) LastCommit(filename string) (*Commit, error) {
	var last *Commit
	err := g.log(filename, func(c *object.Commit, rel string) error {
		last = g.commit(c, rel)
		return storer.ErrStop
	})
	return last, err
}

func (g *Git) RevisionHistory(filename string) ([]content.Revision, error) {
	var revisions []content.Revision
	err := g.log(filename, func(c *object.Commit, rel string) error {
		revisions = append(revisions, content.Revision{
			URL:     g.treeURL(c.Hash.String(), rel),
			Time:    c.Committer.When.UTC(),
			Message: strings.TrimSpace(c.Message),
		})
		return nil
	})
	return revisions, err
}

// LastVersion the tag pointing at the most recent commit
func (g *Git) LastVersion() (*Version, error) {
	tags, err := g.repo.Tags()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}
	type tag struct {
		name string
		when time.Time
	}
	var all []tag
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		hash, err := g.repo.ResolveRevision(plumbing.Revision(ref.Name().String()))
		if err != nil {
			return err
		}
		c, err := g.repo.CommitObject(*hash)
		if err != nil {
			return err
		}
		all = append(all, tag{name: ref.Name().Short(), when: c.Committer.When})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve tags")
	}
	if len(all) == 0 {
		return nil, nil
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].when.Equal(all[j].when) {
			return all[i].name < all[j].name
		}
		return all[i].when.Before(all[j].when)
	})
	v := &Version{Name: all[len(all)-1].name}
	if g.repoName != "" {
		v.URL = gitHubURL + "/" + g.repoName + "/releases/tag/" + v.Name
	}
	return v, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (g *Git) log(filename string, fn func(c *object.Commit, rel string) error) error {
	rel, err := g.relative(filename)
	if err != nil {
		return err
	}
	iter, err := g.repo.Log(&git.LogOptions{
		FileName: &rel,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to read log of %q", rel)
	}
	defer iter.Close()
	return iter.ForEach(func(c *object.Commit) error {
		return fn(c, rel)
	})
}

func (g *Git) commit(c *object.Commit, rel string) *Commit {
	hash := c.Hash.String()
	return &Commit{
		Hash:    hash,
		Time:    c.Committer.When.UTC(),
		Message: strings.TrimSpace(c.Message),
		URL:     g.treeURL(hash[:8], rel),
	}
}

func (g *Git) treeURL(rev, rel string) string {
	if g.repoName == "" {
		return ""
	}
	return gitHubURL + "/" + g.repoName + "/tree/" + rev + "/" + rel
}

// relative path of filename inside the repository, slash separated
func (g *Git) relative(filename string) (string, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.Errorf("%q is outside of the repository", filename)
	}
	return filepath.ToSlash(rel), nil
}

func (g *Git) gitHubRepoName() string {
	remotes, err := g.repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return ""
	}
	remote := remotes[0]
	for _, r := range remotes {
		if r.Config().Name == git.DefaultRemoteName {
			remote = r
		}
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return GitHubRepoName(urls[0])
}

// GitHubRepoName extracts "org/repo" from GitHub remote URLs
func GitHubRepoName(remoteURL string) string {
	for _, pattern := range gitHubRemotePatterns {
		if m := pattern.FindStringSubmatch(remoteURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// Clone checks out ref of the repository at url into dir. The ref is tried
// as a branch first and as a tag second, an empty ref clones HEAD.
func Clone(ctx context.Context, l *zap.Logger, url, ref, dir string) error {
	opts := &git.CloneOptions{URL: url}
	if ref == "" {
		_, err := git.PlainCloneContext(ctx, dir, false, opts)
		return errors.Wrapf(err, "failed to clone %q", url)
	}

	var err error
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewTagReferenceName(ref),
	} {
		opts.ReferenceName = name
		opts.SingleBranch = true
		l.Info("cloning", zap.String("url", url), zap.String("ref", name.String()), zap.String("dir", dir))
		if _, err = git.PlainCloneContext(ctx, dir, false, opts); err == nil {
			return nil
		}
		l.Debug("clone attempt failed", zap.String("ref", name.String()), zap.Error(err))
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return rmErr
		}
	}
	return errors.Wrapf(err, "failed to clone %q at %q", url, ref)
}
