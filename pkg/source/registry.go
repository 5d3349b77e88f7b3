package source

import (
	"context"

	"github.com/matzehuels/cratemap/pkg/integrations/crates"
	"github.com/matzehuels/cratemap/pkg/manifest"
	"github.com/matzehuels/cratemap/pkg/scratch"
)

// RegistrySource resolves dependencies against a package registry. For each
// crate it looks up the latest version, downloads the source archive into a
// scratch directory, and parses the manifest found there. Parsed dependency
// lists are cached durably under "manifest:<name>@<version>" keys within the
// client's namespace, so a version that was already unpacked once is never
// downloaded again across runs.
type RegistrySource struct {
	client  *crates.Client
	scratch *scratch.Dir
	memo    map[string][]string
}

// NewRegistry creates a registry-backed source. The client's cache backend
// also stores the parsed dependency lists.
func NewRegistry(client *crates.Client) (*RegistrySource, error) {
	dir, err := scratch.New()
	if err != nil {
		return nil, err
	}

	return &RegistrySource{
		client:  client,
		scratch: dir,
		memo:    make(map[string][]string),
	}, nil
}

// Name returns "registry".
func (s *RegistrySource) Name() string { return "registry" }

// DependenciesOf resolves pkg's latest version and returns the dependencies
// declared in its manifest. Each package is resolved at most once per run.
func (s *RegistrySource) DependenciesOf(ctx context.Context, pkg string) ([]string, error) {
	if deps, ok := s.memo[pkg]; ok {
		return deps, nil
	}

	deps, err := s.resolve(ctx, pkg)
	if err != nil {
		return nil, err
	}

	s.memo[pkg] = deps
	return deps, nil
}

func (s *RegistrySource) resolve(ctx context.Context, pkg string) ([]string, error) {
	version, err := s.client.LatestVersion(ctx, pkg)
	if err != nil {
		return nil, err
	}

	var deps []string
	err = s.client.Cached(ctx, "manifest:"+pkg+"@"+version, &deps, func() error {
		dir, err := s.scratch.Sub("crates", pkg+"-"+version)
		if err != nil {
			return err
		}
		if err := s.client.DownloadTo(ctx, pkg, version, dir); err != nil {
			return err
		}
		m, err := manifest.Locate(dir, pkg)
		if err != nil {
			return err
		}
		deps = m.Dependencies
		return nil
	})
	return deps, err
}

// Close removes the scratch directory with all unpacked archives.
func (s *RegistrySource) Close() error { return s.scratch.Close() }
