// Package dot renders dependency trees as Graphviz node-link diagrams.
//
// [ToDOT] turns a tree built by [depgraph.Build] into DOT source with one
// node per package id, so a package reached from several branches appears
// once with several incoming edges. Dev edges are dashed, build edges bold,
// and duplicate packages are filled to stand out.
//
// [RenderSVG] lays the DOT source out with the Graphviz WebAssembly build
// shipped by goccy/go-graphviz, so no system Graphviz install is needed.
//
//	src := dot.ToDOT(root, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
package dot
