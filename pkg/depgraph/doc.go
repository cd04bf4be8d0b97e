// Package depgraph is the dependency-graph engine behind upkeep's tree, why,
// dups and audit commands.
//
// # Overview
//
// The engine works over a graph that has already been resolved by the package
// manager. It never reads manifests, never performs I/O and keeps no state
// between calls: a [Graph] is built once from an [Input] and is immutable
// afterwards, so several goroutines may query the same Graph concurrently.
// Every query owns its own traversal state.
//
// # Components
//
//   - [Graph]: normalized forward adjacency with per-edge dev/build flags,
//     plus lookups by id and by (name, version, source).
//   - [DuplicateIndex]: name to distinct versions, used for the global
//     duplicate flag on tree nodes.
//   - [Build]: bounded, cycle-safe, duplicate-aware display trees, forward
//     or inverted.
//   - [Graph.PathTo]: shortest attribution path from any root to a package.
//   - [ComputeStats]: summary counts over a built tree.
//
// # Building Trees
//
//	g, err := depgraph.New(input)
//	if err != nil {
//	    return err
//	}
//	root, err := depgraph.Build(g, depgraph.NewDuplicateIndex(g), depgraph.Options{
//	    MaxDepth:   depgraph.Depth(2),
//	    ExcludeDev: true,
//	})
//	fmt.Println(depgraph.RenderText(root, false))
//
// # Cycles and Re-visits
//
// The builder tracks the packages on the current root-to-node path and skips
// any child already on it, so cyclic graphs terminate. The first time a
// package is expanded its full subtree is built; later encounters on other
// branches render as childless leaves. A hard depth ceiling independent of
// [Options.MaxDepth] turns pathological input into an ErrCodeDepthExceeded
// error instead of unbounded recursion.
//
// # Attribution Paths
//
// [Graph.PathTo] runs one breadth-first search seeded with every root, so the
// returned path has the fewest edges over all roots. Ties go to the earlier
// root, then to the earlier edge in input order.
package depgraph
