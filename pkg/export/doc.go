// Package export serializes finished dependency graphs to files.
//
// # Overview
//
// This package is the bridge between the in-memory graph and everything that
// consumes it outside the process: JSON for tooling, DOT for Graphviz, and
// SVG/PNG images rendered in-process. One entry point covers the CLI's
// --output flag:
//
//	err := export.ToFile(g, cycles, "deps.svg", "")
//
// An empty format is detected from the file extension; an explicit format
// overrides it.
//
// # JSON Format
//
// The JSON document carries the root name, every visited package with its
// filtered dependency list, and the cycle edges:
//
//	{
//	  "root": "app",
//	  "nodes": {
//	    "app": ["lib-a", "lib-b"],
//	    "lib-a": ["lib-b"],
//	    "lib-b": []
//	  },
//	  "cycles": [
//	    {"from": "lib-b", "to": "app"}
//	  ]
//	}
//
// Dependency lists keep declaration order. Node keys marshal in sorted
// order, so the output is deterministic and diff-friendly.
//
// # Image Formats
//
// DOT, SVG, and PNG delegate to [render/nodelink]; cycle edges come out
// dashed and red. Rendering happens in-process via goccy/go-graphviz, so no
// system Graphviz installation is needed.
//
// [render/nodelink]: github.com/matzehuels/cratemap/pkg/render/nodelink
package export
