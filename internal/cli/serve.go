package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	cratemaperrors "github.com/matzehuels/cratemap/pkg/errors"
	"github.com/matzehuels/cratemap/pkg/export"
	"github.com/matzehuels/cratemap/pkg/graph"
)

const shutdownTimeout = 5 * time.Second

type serveOpts struct {
	sourceOpts
	addr string
}

func newServeCmd(shared *sharedOpts) *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency graph over HTTP",
		Long: `Serve builds the dependency graph once and exposes it over HTTP:
an HTML page with the rendered graph on /, the raw SVG on /graph.svg,
a JSON document on /graph.json, and a liveness probe on /healthz.`,
		Example: `  cratemap serve --package serde --repo-url https://crates.io/crates/serde
  cratemap serve --package app --repo-url examples/workspace --test-mode --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, shared)
		},
	}

	addSourceFlags(cmd, &opts.sourceOpts)
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")

	return cmd
}

func runServe(ctx context.Context, opts *serveOpts, shared *sharedOpts) error {
	problems := opts.sourceOpts.problems()
	if strings.TrimSpace(opts.addr) == "" {
		problems = append(problems, "listen address cannot be empty")
	}
	if len(problems) > 0 {
		return validationError(problems)
	}

	g, cycles, err := computeGraph(ctx, opts.sourceOpts, shared)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newGraphHandler(logger, g, cycles),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printInfo("Serving %s at %s", opts.pkg, StyleLink.Render("http://"+displayAddr(opts.addr)))
	printDetail("endpoints: /  /graph.svg  /graph.json  /healthz")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return cratemaperrors.Wrap(cratemaperrors.ErrCodeInternal, err, "http server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	}
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// graphServer serves a single immutable graph. The SVG is rendered on
// first request and reused afterwards.
type graphServer struct {
	graph  *graph.Graph
	cycles []graph.CycleEdge

	svgOnce sync.Once
	svg     []byte
	svgErr  error
}

// newGraphHandler builds the HTTP routes for a computed graph.
func newGraphHandler(logger *charmlog.Logger, g *graph.Graph, cycles []graph.CycleEdge) http.Handler {
	s := &graphServer{graph: g, cycles: cycles}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logRequests(logger))
	r.Get("/", s.handlePage)
	r.Get("/graph.svg", s.handleSVG)
	r.Get("/graph.json", s.handleJSON)
	r.Get("/healthz", s.handleHealth)
	return r
}

func logRequests(logger *charmlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
		})
	}
}

func (s *graphServer) renderSVG() ([]byte, error) {
	s.svgOnce.Do(func() {
		s.svg, s.svgErr = export.Render(s.graph, s.cycles, export.FormatSVG)
	})
	return s.svg, s.svgErr
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Root}} dependencies</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 960px; padding: 0 1rem; color: #1f2328; }
h1 { font-size: 1.4rem; margin-bottom: 0.25rem; }
.meta { color: #656d76; font-size: 0.9rem; }
.links { margin: 1rem 0; }
.links a { margin-right: 1rem; }
.graph { border: 1px solid #d0d7de; border-radius: 6px; padding: 1rem; overflow: auto; }
.graph svg { max-width: 100%; height: auto; }
</style>
</head>
<body>
<h1>{{.Root}}</h1>
<p class="meta">{{.Packages}} packages, {{.CycleEdges}} cycle edges</p>
<p class="links"><a href="/graph.svg">SVG</a><a href="/graph.json">JSON</a></p>
<div class="graph">{{.SVG}}</div>
</body>
</html>
`))

func (s *graphServer) handlePage(w http.ResponseWriter, r *http.Request) {
	svg, err := s.renderSVG()
	if err != nil {
		http.Error(w, fmt.Sprintf("render graph: %v", err), http.StatusInternalServerError)
		return
	}

	data := struct {
		Root       string
		Packages   int
		CycleEdges int
		SVG        template.HTML
	}{
		Root:       s.graph.Root(),
		Packages:   s.graph.Len(),
		CycleEdges: len(s.cycles),
		SVG:        template.HTML(svg),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *graphServer) handleSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := s.renderSVG()
	if err != nil {
		http.Error(w, fmt.Sprintf("render graph: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *graphServer) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(s.graph, s.cycles, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *graphServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
