package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cratemap/pkg/buildinfo"
	"github.com/matzehuels/cratemap/pkg/cache"
	"github.com/matzehuels/cratemap/pkg/config"
	cratemaperrors "github.com/matzehuels/cratemap/pkg/errors"
	"github.com/matzehuels/cratemap/pkg/export"
	"github.com/matzehuels/cratemap/pkg/graph"
	"github.com/matzehuels/cratemap/pkg/integrations/crates"
	"github.com/matzehuels/cratemap/pkg/scratch"
	"github.com/matzehuels/cratemap/pkg/source"
)

// sharedOpts holds the persistent flags visible to every command.
type sharedOpts struct {
	configPath string
	noCache    bool
	verbose    bool
}

// sourceOpts identify the package to analyze and where its manifests
// come from. Both the root command and serve bind these flags.
type sourceOpts struct {
	pkg      string
	repoURL  string
	testMode bool
	filter   string
}

// rootOpts adds the root command's rendering flags on top of the
// source selection.
type rootOpts struct {
	sourceOpts
	asciiTree   bool
	output      string
	format      string
	interactive bool
}

// Execute runs the cratemap CLI and returns the error the selected
// command produced. Errors are printed here in their user-facing form;
// callers only inspect the returned error to pick an exit code.
func Execute(ctx context.Context) error {
	shared := &sharedOpts{}
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:   "cratemap",
		Short: "Map the dependency graph of a Cargo package",
		Long: `Cratemap computes the transitive dependency graph of a Cargo package
and renders it as a plain-text report, an ASCII tree, an interactive
explorer, or an exported DOT/SVG/PNG/JSON file.

Dependencies are read from crates.io when --repo-url points at the
registry, from a shallow Git clone for any other URL, and from a local
fixture file or source tree in --test-mode.`,
		Example: `  cratemap --package serde --repo-url https://crates.io/crates/serde
  cratemap --package app --repo-url examples/fixture/simple.txt --test-mode --ascii-tree
  cratemap --package tokio --repo-url https://github.com/tokio-rs/tokio -o deps.svg`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if shared.verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			if shared.verbose {
				registerDebugHooks(logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), opts, shared, cmd.OutOrStdout())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&shared.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&shared.configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().BoolVar(&shared.noCache, "no-cache", false, "disable the response cache")

	addSourceFlags(root, &opts.sourceOpts)
	root.Flags().BoolVar(&opts.asciiTree, "ascii-tree", false, "print the graph as an ASCII tree")
	root.Flags().StringVarP(&opts.output, "output", "o", "", "write the graph to a file (dot, svg, png or json)")
	root.Flags().StringVarP(&opts.format, "format", "f", "", "output format, overrides the file extension")
	root.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "explore the graph in the terminal")

	root.AddCommand(newServeCmd(shared))
	root.AddCommand(newCacheCmd(shared))

	err := root.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		printRunError(err)
	}
	return err
}

// addSourceFlags binds the source selection flags shared by the root
// command and serve.
func addSourceFlags(cmd *cobra.Command, opts *sourceOpts) {
	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "name of the package to analyze")
	cmd.Flags().StringVarP(&opts.repoURL, "repo-url", "r", "", "crates.io page, Git remote, or local path with --test-mode")
	cmd.Flags().BoolVar(&opts.testMode, "test-mode", false, "treat --repo-url as a local fixture file or source tree")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "drop dependencies whose name contains this substring")
	_ = cmd.MarkFlagRequired("package")
	_ = cmd.MarkFlagRequired("repo-url")
}

func runRoot(ctx context.Context, opts *rootOpts, shared *sharedOpts, out io.Writer) error {
	problems := opts.sourceOpts.problems()
	problems = append(problems, opts.renderProblems()...)
	if len(problems) > 0 {
		return validationError(problems)
	}

	g, cycles, err := computeGraph(ctx, opts.sourceOpts, shared)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := export.ToFile(g, cycles, opts.output, opts.format); err != nil {
			return err
		}
		printSuccess("Wrote %s", opts.output)
	}

	switch {
	case opts.interactive:
		return exploreGraph(g)
	case opts.output != "":
		return nil
	case opts.asciiTree:
		_, err := io.WriteString(out, renderTree(g))
		return err
	default:
		_, err := io.WriteString(out, renderText(g, cycles))
		return err
	}
}

// problems collects every validation failure instead of stopping at
// the first, so a bad invocation is fixable in one pass.
func (o sourceOpts) problems() []string {
	var ps []string
	if err := cratemaperrors.ValidatePackageName(o.pkg); err != nil {
		ps = append(ps, cratemaperrors.UserMessage(err))
	}
	if strings.TrimSpace(o.repoURL) == "" {
		ps = append(ps, "repo url cannot be empty")
	} else if !o.testMode {
		if err := cratemaperrors.ValidateURL(o.repoURL); err != nil {
			ps = append(ps, cratemaperrors.UserMessage(err))
		}
	}
	return ps
}

func (o *rootOpts) renderProblems() []string {
	var ps []string
	if o.format != "" {
		f, err := export.ParseFormat(o.format)
		if err != nil {
			ps = append(ps, cratemaperrors.UserMessage(err))
		} else {
			o.format = f
		}
		if o.output == "" {
			ps = append(ps, "--format requires --output")
		}
	}
	if o.output != "" && o.format == "" {
		if _, err := export.DetectFormat(o.output); err != nil {
			ps = append(ps, cratemaperrors.UserMessage(err))
		}
	}
	return ps
}

func validationError(problems []string) error {
	var b strings.Builder
	b.WriteString("invalid arguments:")
	for _, p := range problems {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return cratemaperrors.New(cratemaperrors.ErrCodeInvalidInput, "%s", b.String())
}

// computeGraph resolves the dependency source from the flags and
// builds the graph. The cache backend and the source only live for the
// duration of the build; the returned graph is self-contained.
func computeGraph(ctx context.Context, opts sourceOpts, shared *sharedOpts) (*graph.Graph, []graph.CycleEdge, error) {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(shared.configPath)
	if err != nil {
		return nil, nil, err
	}

	backend := newCacheBackend(ctx, cfg, shared.noCache)
	defer backend.Close()

	src, err := newSource(ctx, opts, cfg, backend)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	if shared.verbose {
		printBanner("cratemap configuration", [][2]string{
			{"package", opts.pkg},
			{"repo url", opts.repoURL},
			{"source", src.Name()},
			{"test mode", yesNo(opts.testMode)},
			{"filter", orNotSet(opts.filter)},
			{"cache", backendLabel(cfg, shared.noCache)},
		})
	}

	spin := newSpinner(ctx, fmt.Sprintf("Resolving %s...", opts.pkg))
	spin.Start()
	prog := newProgress(logger)

	g, cycles, err := graph.Build(ctx, src, opts.pkg, graph.Options{
		Filter: opts.filter,
		Logger: func(format string, args ...any) { logger.Warnf(format, args...) },
	})
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Failed to resolve %s", opts.pkg))
		return nil, nil, err
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Resolved %d packages, %d cycle edges", g.Len(), len(cycles)))

	return g, cycles, nil
}

// newSource picks the dependency source for the given flags. Test mode
// serves local files, crates.io URLs hit the registry API, and any
// other URL is shallow-cloned.
func newSource(ctx context.Context, opts sourceOpts, cfg *config.Config, backend cache.Cache) (source.Source, error) {
	if opts.testMode {
		info, err := os.Stat(opts.repoURL)
		if err != nil {
			return nil, cratemaperrors.Wrap(cratemaperrors.ErrCodeInvalidPath, err, "test repository %s", opts.repoURL)
		}
		if info.IsDir() {
			return source.NewRepo(opts.repoURL)
		}
		return source.NewFixture(opts.repoURL)
	}

	if isCratesURL(opts.repoURL) {
		client := crates.NewClient(crates.Options{
			BaseURL:   cfg.Registry.BaseURL,
			UserAgent: cfg.Registry.UserAgent,
			Timeout:   cfg.Registry.Timeout.Duration,
			Cache:     backend,
			TTL:       cfg.Cache.TTL.Duration,
		})
		return source.NewRegistry(client)
	}

	return cloneSourceFor(ctx, opts.repoURL)
}

// isCratesURL reports whether raw points at the crates.io registry.
func isCratesURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "crates.io" || strings.HasSuffix(host, ".crates.io")
}

// cloneSource serves dependencies from a shallow clone held in a
// scratch directory. Close removes the checkout.
type cloneSource struct {
	*source.RepoSource
	scratch *scratch.Dir
}

func (s *cloneSource) Name() string { return "git" }

func (s *cloneSource) Close() error { return s.scratch.Close() }

func cloneSourceFor(ctx context.Context, remote string) (source.Source, error) {
	scr, err := scratch.New()
	if err != nil {
		return nil, err
	}

	dir, err := scr.Sub("repo")
	if err != nil {
		scr.Close()
		return nil, err
	}

	spin := newSpinner(ctx, fmt.Sprintf("Cloning %s...", remote))
	spin.Start()
	if err := source.Clone(ctx, remote, dir); err != nil {
		spin.StopWithError(fmt.Sprintf("Clone failed: %s", remote))
		scr.Close()
		return nil, err
	}
	spin.StopWithSuccess(fmt.Sprintf("Cloned %s", remote))

	repo, err := source.NewRepo(dir)
	if err != nil {
		scr.Close()
		return nil, err
	}
	return &cloneSource{RepoSource: repo, scratch: scr}, nil
}

// newCacheBackend builds the configured cache. Cache failures are
// never fatal; the command degrades to an uncached run with a warning.
func newCacheBackend(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}

	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache()
	case config.BackendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			printWarning("Cache disabled: %s", cratemaperrors.UserMessage(err))
			return cache.NewNullCache()
		}
		return c
	case config.BackendMongo:
		c, err := cache.NewMongoCache(ctx, cfg.Cache.MongoURI)
		if err != nil {
			printWarning("Cache disabled: %s", cratemaperrors.UserMessage(err))
			return cache.NewNullCache()
		}
		return c
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				printWarning("Cache disabled: %v", err)
				return cache.NewNullCache()
			}
			dir = d
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			printWarning("Cache disabled: %s", cratemaperrors.UserMessage(err))
			return cache.NewNullCache()
		}
		return c
	}
}

func backendLabel(cfg *config.Config, noCache bool) string {
	if noCache {
		return "disabled"
	}
	return cfg.Cache.Backend
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// printRunError renders a failure for the terminal. Coded errors print
// their message with the cause underneath; anything else prints as-is.
// Validation failures get a usage pointer since the fix is a flag change.
func printRunError(err error) {
	var e *cratemaperrors.Error
	if stderrors.As(err, &e) {
		printError("%s", e.Message)
		if e.Cause != nil {
			printDetail("%v", e.Cause)
		}
		if cratemaperrors.IsValidation(err) {
			printDetail("Run 'cratemap --help' for usage.")
		}
		return
	}
	printError("%v", err)
}
