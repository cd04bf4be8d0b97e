// Package pkg provides the core libraries for upkeep.
//
// # Overview
//
// Upkeep answers questions about a resolved Cargo dependency graph: what the
// tree looks like, which crates are duplicated, why a crate is in the build,
// and which paths bring in vulnerable crates. The pkg directory is organized
// into these areas:
//
//  1. [depgraph] - The engine: graph model, duplicate index, tree builder,
//     path finder and stats aggregator
//  2. [cargo] and [graph] - Decoding cargo metadata, Cargo.lock and the
//     normalized graph JSON into engine input
//  3. [advisory] - Advisory decoding, CVSS scoring and path attribution
//  4. [pipeline] - Orchestration (load → build → render) shared by the CLI
//     and the HTTP API
//  5. [render/dot] - Graphviz DOT and SVG output
//  6. Infrastructure: [cache], [config], [observability], [errors]
//
// # Architecture
//
//	cargo metadata / Cargo.lock / graph JSON
//	         ↓
//	    [cargo] package (decode)
//	         ↓
//	    [depgraph] package (graph + duplicate index, built once)
//	         ↓
//	    tree / path / audit queries
//	         ↓
//	    text, JSON, DOT or SVG output
//
// # Quick Start
//
//	in, _, err := cargo.Load("Cargo.lock", nil)
//	if err != nil {
//	    return err
//	}
//	g, err := depgraph.New(in)
//	if err != nil {
//	    return err
//	}
//	root, err := depgraph.Build(g, depgraph.NewDuplicateIndex(g), depgraph.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(depgraph.RenderText(root, false))
//
// Most callers should go through [pipeline.Runner] instead, which adds
// option validation, logging and observability hooks.
package pkg
