package graph

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/cratemap/pkg/errors"
	"github.com/matzehuels/cratemap/pkg/observability"
	"github.com/matzehuels/cratemap/pkg/source"
)

// Options configures graph construction.
type Options struct {
	// Filter drops every dependency whose name contains it as a substring.
	// Filtered packages never appear in dependency lists and are never
	// expanded. Empty means no filtering.
	Filter string
	// Logger is the error channel for packages that degrade to an empty
	// dependency list (optional).
	Logger func(string, ...any)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// frame is one entry of the explicit DFS stack. It carries its own ancestry
// path because several independent paths can reach a node before it is
// expanded; cycle detection must compare against the discovering path, not
// shared state.
type frame struct {
	name string
	path []string
}

// Build walks the dependency graph rooted at root, visiting every reachable
// package exactly once. Each visited package records its filtered direct
// dependency list; every dependency that points back to an ancestor on its
// discovering path is reported as a [CycleEdge] and not expanded further.
//
// A failure to resolve the root package aborts the build. Failures on any
// other package degrade that package to an empty dependency list, logged
// through [Options.Logger].
//
// The traversal is iterative with an explicit stack, so arbitrarily deep
// graphs cannot exhaust goroutine stack space.
func Build(ctx context.Context, src source.Source, root string, opts Options) (*Graph, []CycleEdge, error) {
	opts = opts.WithDefaults()

	if strings.TrimSpace(root) == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidPackage, "root package name cannot be empty")
	}
	if opts.Filter != "" && strings.Contains(root, opts.Filter) {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"root package %q matches filter %q; nothing to build", root, opts.Filter)
	}

	hooks := observability.Resolve()
	hooks.OnBuildStart(ctx, root)
	start := time.Now()

	g := &Graph{root: root, nodes: make(map[string][]string)}
	var cycles []CycleEdge

	stack := []frame{{name: root, path: []string{root}}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			hooks.OnBuildComplete(ctx, root, g.Len(), len(cycles), time.Since(start), err)
			return nil, nil, err
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// A node may be pushed by several parents before its first
		// expansion; only the first pop counts.
		if g.Has(f.name) {
			continue
		}

		deps, err := resolve(ctx, src, f.name)
		if err != nil {
			if f.name == root {
				hooks.OnBuildComplete(ctx, root, 0, 0, time.Since(start), err)
				return nil, nil, err
			}
			opts.Logger("resolve failed: %s: %v", f.name, err)
			deps = nil
		}

		if opts.Filter != "" {
			kept := make([]string, 0, len(deps))
			for _, dep := range deps {
				if !strings.Contains(dep, opts.Filter) {
					kept = append(kept, dep)
				}
			}
			deps = kept
		}
		g.nodes[f.name] = deps

		for _, dep := range deps {
			if slices.Contains(f.path, dep) {
				cycles = append(cycles, CycleEdge{From: f.name, To: dep})
			}
		}

		// Push in reverse so dependencies expand in declaration order.
		for i := len(deps) - 1; i >= 0; i-- {
			dep := deps[i]
			if slices.Contains(f.path, dep) {
				continue
			}
			if g.Has(dep) {
				continue
			}
			path := make([]string, len(f.path)+1)
			copy(path, f.path)
			path[len(f.path)] = dep
			stack = append(stack, frame{name: dep, path: path})
		}
	}

	hooks.OnBuildComplete(ctx, root, g.Len(), len(cycles), time.Since(start), nil)
	return g, cycles, nil
}

func resolve(ctx context.Context, src source.Source, pkg string) ([]string, error) {
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, pkg)

	start := time.Now()
	deps, err := src.DependenciesOf(ctx, pkg)
	hooks.OnResolveComplete(ctx, pkg, len(deps), time.Since(start), err)

	return deps, err
}
