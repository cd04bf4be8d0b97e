// Package render holds the graphical renderers for dependency trees.
//
// The [dot] subpackage writes Graphviz DOT and renders it to SVG with an
// embedded Graphviz build, so no external tools are needed. Text and JSON
// output live in [depgraph] and [pipeline] because they need nothing beyond
// the tree itself.
package render
