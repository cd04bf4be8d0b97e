// Package graph provides the serialization format for resolved dependency graphs.
//
// This package defines upkeep's canonical wire format for a resolved graph,
// used by `upkeep export`, as an input format for every command, and in
// HTTP API fixtures.
//
// # Architecture
//
// The package sits at the serialization boundary between the engine and
// external formats:
//
//   - [Graph]: Serialization type (this package)
//   - pkg/depgraph.Graph: Validated engine graph
//   - pkg/depgraph.Input: Raw engine input
//
// Use [FromGraph]/[ToInput]/[ToGraph] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. Edge kinds are omitted for plain
// normal dependencies:
//
//	{
//	  "root": "app",
//	  "packages": [{"id": "app", "name": "app", "version": "0.1.0"},
//	               {"id": "log", "name": "log", "version": "0.4.22",
//	                "source": "registry+https://github.com/rust-lang/crates.io-index"}],
//	  "edges": [{"from": "app", "to": "log"},
//	            {"from": "app", "to": "log", "kinds": ["dev"]}]
//	}
//
// Repeated edges between the same pair merge into one edge when the graph
// is validated.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("deps.json")    // File → engine graph
//	graph.WriteGraphFile(g, "output.json")      // engine graph → File
//	data, _ := graph.MarshalGraph(g)            // engine graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph
//
// # Concurrency
//
// All functions are safe for concurrent use.
package graph
