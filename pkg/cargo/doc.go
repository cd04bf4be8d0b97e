// Package cargo decodes resolved Rust dependency graphs into engine input.
//
// # Overview
//
// The engine in pkg/depgraph never runs cargo. It consumes a graph that was
// resolved elsewhere, in one of three shapes:
//
//   - `cargo metadata --format-version 1` JSON ([Metadata])
//   - Cargo.lock files ([Lockfile])
//   - upkeep's own normalized graph JSON (pkg/graph)
//
// # Loading
//
// [Load] picks the decoder from the file name and, for JSON, from its
// content:
//
//	in, format, err := cargo.Load("Cargo.lock", os.Stdin)
//	g, err := depgraph.New(in)
//
// The path "-" reads cargo metadata JSON from the given reader, so the tool
// composes with `cargo metadata --format-version 1 | upkeep tree -`.
//
// # Lockfiles
//
// Cargo.lock carries no dependency kinds, so every edge decoded from it is
// normal. The lockfile does not name its workspace either: source-less
// packages that nothing depends on are taken as the roots.
package cargo
