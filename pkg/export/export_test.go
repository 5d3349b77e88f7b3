package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cratemaperrors "github.com/matzehuels/cratemap/pkg/errors"
	"github.com/matzehuels/cratemap/pkg/graph"
)

// mapSource serves dependency lists from a plain map.
type mapSource map[string][]string

func (m mapSource) Name() string { return "test" }

func (m mapSource) DependenciesOf(_ context.Context, pkg string) ([]string, error) {
	return m[pkg], nil
}

func (m mapSource) Close() error { return nil }

func buildGraph(t *testing.T, root string, deps map[string][]string) (*graph.Graph, []graph.CycleEdge) {
	t.Helper()
	g, cycles, err := graph.Build(context.Background(), mapSource(deps), root, graph.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g, cycles
}

func TestWriteJSON(t *testing.T) {
	g, cycles := buildGraph(t, "app", map[string][]string{
		"app": {"b", "a"},
		"b":   {"app"},
	})

	var buf bytes.Buffer
	if err := WriteJSON(g, cycles, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	want := `{
  "root": "app",
  "nodes": {
    "a": [],
    "app": [
      "b",
      "a"
    ],
    "b": [
      "app"
    ]
  },
  "cycles": [
    {
      "from": "b",
      "to": "app"
    }
  ]
}
`
	if got := buf.String(); got != want {
		t.Errorf("WriteJSON() = %s, want %s", got, want)
	}
}

func TestWriteJSONNoCycles(t *testing.T) {
	g, cycles := buildGraph(t, "solo", map[string][]string{})

	var buf bytes.Buffer
	if err := WriteJSON(g, cycles, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var doc struct {
		Root   string              `json:"root"`
		Nodes  map[string][]string `json:"nodes"`
		Cycles []any               `json:"cycles"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Root != "solo" {
		t.Errorf("root = %q, want solo", doc.Root)
	}
	if doc.Cycles == nil {
		t.Error("cycles should encode as [], not null")
	}
	if strings.Contains(buf.String(), "null") {
		t.Errorf("output contains null: %s", buf.String())
	}
}

func TestRenderJSON(t *testing.T) {
	g, cycles := buildGraph(t, "app", map[string][]string{"app": {"lib"}})

	data, err := Render(g, cycles, FormatJSON)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(g, cycles, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Error("Render(json) differs from WriteJSON output")
	}
}

func TestRenderDOT(t *testing.T) {
	g, cycles := buildGraph(t, "app", map[string][]string{"app": {"lib"}})

	data, err := Render(g, cycles, FormatDOT)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph deps {") {
		t.Errorf("Render(dot) = %s, want DOT source", data)
	}
	if !strings.Contains(string(data), `"app" -> "lib";`) {
		t.Errorf("Render(dot) missing edge: %s", data)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	g, cycles := buildGraph(t, "app", map[string][]string{})

	if _, err := Render(g, cycles, "tiff"); !cratemaperrors.Is(err, cratemaperrors.ErrCodeInvalidInput) {
		t.Errorf("Render(tiff) error = %v, want INVALID_INPUT", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"DOT", FormatDOT, false},
		{" svg ", FormatSVG, false},
		{"png", FormatPNG, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"graph.json", FormatJSON, false},
		{"out/deps.svg", FormatSVG, false},
		{"deps.DOT", FormatDOT, false},
		{"x.png", FormatPNG, false},
		{"report.txt", "", true},
		{"noextension", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestToFile(t *testing.T) {
	g, cycles := buildGraph(t, "app", map[string][]string{"app": {"lib"}})
	path := filepath.Join(t.TempDir(), "deps.json")

	if err := ToFile(g, cycles, path, FormatJSON); err != nil {
		t.Fatalf("ToFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc struct {
		Root string `json:"root"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Root != "app" {
		t.Errorf("root = %q, want app", doc.Root)
	}
}

func TestToFileDetectsFormat(t *testing.T) {
	g, cycles := buildGraph(t, "app", map[string][]string{"app": {"lib"}})
	path := filepath.Join(t.TempDir(), "deps.dot")

	if err := ToFile(g, cycles, path, ""); err != nil {
		t.Fatalf("ToFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph deps {") {
		t.Errorf("detected output = %s, want DOT source", data)
	}
}

func TestToFileUnknownExtension(t *testing.T) {
	g, cycles := buildGraph(t, "app", map[string][]string{})
	path := filepath.Join(t.TempDir(), "deps.xyz")

	err := ToFile(g, cycles, path, "")
	if !cratemaperrors.Is(err, cratemaperrors.ErrCodeInvalidInput) {
		t.Errorf("ToFile() error = %v, want INVALID_INPUT", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("ToFile() should not create a file on format errors")
	}
}
