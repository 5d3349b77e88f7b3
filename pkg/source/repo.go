package source

import (
	"context"
	"os"

	"github.com/matzehuels/cratemap/pkg/errors"
	"github.com/matzehuels/cratemap/pkg/manifest"
)

// RepoSource resolves dependencies by locating each package's manifest in a
// filesystem tree: a cloned repository or a local checkout.
type RepoSource struct {
	root string
	memo map[string][]string
}

// NewRepo creates a source over the tree rooted at root.
func NewRepo(root string) (*RepoSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "repository root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "repository root %s is not a directory", root)
	}

	return &RepoSource{
		root: root,
		memo: make(map[string][]string),
	}, nil
}

// Name returns "repo".
func (s *RepoSource) Name() string { return "repo" }

// DependenciesOf locates pkg's manifest under the root and returns its
// declared dependencies. Each package is looked up at most once per run.
func (s *RepoSource) DependenciesOf(ctx context.Context, pkg string) ([]string, error) {
	if deps, ok := s.memo[pkg]; ok {
		return deps, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := manifest.Locate(s.root, pkg)
	if err != nil {
		return nil, err
	}

	s.memo[pkg] = m.Dependencies
	return m.Dependencies, nil
}

// Close is a no-op; the tree is owned by the caller.
func (s *RepoSource) Close() error { return nil }
