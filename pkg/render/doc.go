// Package render groups the visual renderers for dependency graphs.
//
// # Overview
//
// Rendering is split by output family:
//
//   - Node-link diagrams (in [nodelink] subpackage): Graphviz DOT, SVG, PNG
//   - Plain-text reports (flat listing, ASCII tree) live in the CLI layer,
//     since their exact byte layout is part of the command-line contract
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders directed graph diagrams using Graphviz.
// Packages appear as boxes connected by arrows; cycle edges are drawn dashed
// and red.
//
//	dot := nodelink.ToDOT(g, cycles, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/render/nodelink
package render
