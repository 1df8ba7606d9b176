// Package vcs reads version control metadata of site sources
package vcs

import (
	"time"

	"github.com/foomo/docsite/content"
)

type (
	// VCS answers history questions about files of a checked out source
	VCS interface {
		// LastCommit returns nil without error when no commit touched filename
		LastCommit(filename string) (*Commit, error)
		RevisionHistory(filename string) ([]content.Revision, error)
		// LastVersion returns nil without error when there are no tags
		LastVersion() (*Version, error)
	}
	Commit struct {
		Hash    string
		Time    time.Time
		Message string
		// URL browse URL of the file at this commit, if known
		URL string
	}
	Version struct {
		Name string
		URL  string
	}
)
