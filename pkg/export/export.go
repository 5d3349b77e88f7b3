package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cratemap/pkg/errors"
	"github.com/matzehuels/cratemap/pkg/graph"
	"github.com/matzehuels/cratemap/pkg/render/nodelink"
)

// Supported output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// validFormats is the set of formats Render understands.
var validFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ParseFormat validates a format name from user input.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if !validFormats[f] {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"unknown format %q (expected dot, svg, png or json)", s)
	}
	return f, nil
}

// DetectFormat derives the output format from a file extension.
func DetectFormat(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"cannot detect format of %q: missing file extension", path)
	}
	return ParseFormat(ext)
}

// document is the JSON wire format for a finished graph.
type document struct {
	Root   string              `json:"root"`
	Nodes  map[string][]string `json:"nodes"`
	Cycles []cycleEdge         `json:"cycles"`
}

type cycleEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes the graph and its cycle edges as indented JSON on w.
// Dependency lists keep their declaration order; packages without
// dependencies encode as empty arrays, never null.
func WriteJSON(g *graph.Graph, cycles []graph.CycleEdge, w io.Writer) error {
	out := document{
		Root:   g.Root(),
		Nodes:  make(map[string][]string, g.Len()),
		Cycles: make([]cycleEdge, len(cycles)),
	}

	for _, name := range g.Nodes() {
		deps := g.Dependencies(name)
		if deps == nil {
			deps = []string{}
		}
		out.Nodes[name] = deps
	}
	for i, e := range cycles {
		out.Cycles[i] = cycleEdge{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Render produces the graph in the requested format as raw bytes.
func Render(g *graph.Graph, cycles []graph.CycleEdge, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := WriteJSON(g, cycles, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, cycles, nodelink.Options{})), nil
	case FormatSVG:
		return nodelink.RenderSVG(nodelink.ToDOT(g, cycles, nodelink.Options{}))
	case FormatPNG:
		return nodelink.RenderPNG(nodelink.ToDOT(g, cycles, nodelink.Options{}))
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown format %q (expected dot, svg, png or json)", format)
	}
}

// ToFile renders the graph and writes it to path. An empty format is
// detected from the path's extension.
func ToFile(g *graph.Graph, cycles []graph.CycleEdge, path, format string) error {
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return err
		}
		format = f
	}

	data, err := Render(g, cycles, format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
