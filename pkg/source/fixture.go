package source

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/cratemap/pkg/errors"
)

// FixtureSource serves dependency lists from a static line-oriented file.
// It exists for deterministic tests and offline runs.
//
// Format: one package per line, "name: dep1 dep2 ..." or "name:" for no
// dependencies. Blank lines and #-comments are ignored. When a name appears
// on several lines the last one wins.
type FixtureSource struct {
	deps map[string][]string
}

// NewFixture loads the fixture file at path.
func NewFixture(path string) (*FixtureSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open fixture %s", path)
	}
	defer f.Close()
	return parseFixture(f)
}

func parseFixture(r io.Reader) (*FixtureSource, error) {
	deps := make(map[string][]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, rest, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			// Lines without a "name:" shape carry no data.
			continue
		}
		deps[name] = strings.Fields(rest)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read fixture")
	}

	return &FixtureSource{deps: deps}, nil
}

// Name returns "fixture".
func (s *FixtureSource) Name() string { return "fixture" }

// DependenciesOf looks the package up in the fixture map. A package that
// does not appear in the file has no dependencies.
func (s *FixtureSource) DependenciesOf(_ context.Context, pkg string) ([]string, error) {
	return s.deps[pkg], nil
}

// Close is a no-op; fixtures hold no resources.
func (s *FixtureSource) Close() error { return nil }
