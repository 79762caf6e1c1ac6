// Package gitscope restricts a tagging run to files changed in the
// enclosing git working tree.
package gitscope

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
)

// Set is a set of absolute file paths.
type Set map[string]struct{}

// Includes reports whether path is in the set.
func (s Set) Includes(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := s[filepath.Clean(abs)]
	return ok
}

// ChangedFiles opens the repository containing path and returns every file
// that differs from HEAD in the index or worktree, untracked files included.
// Deleted files are left out.
func ChangedFiles(path string) (Set, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ferrors.FileSystemError("resolve path").WithCause(err).WithContext("path", path).Build()
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "open git repository").
			WithContext("path", abs).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "open worktree").Build()
	}
	status, err := wt.Status()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "read worktree status").Build()
	}

	root := wt.Filesystem.Root()
	set := make(Set, len(status))
	for file, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		if st.Worktree == git.Deleted || st.Staging == git.Deleted {
			continue
		}
		set[filepath.Join(root, filepath.FromSlash(file))] = struct{}{}
	}
	return set, nil
}
