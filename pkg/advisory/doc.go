// Package advisory attributes vulnerability findings to dependency paths.
//
// Findings come from a `cargo audit --json` report or from a plain JSON list
// produced by another scanner. [Decode] accepts both shapes. Each finding is
// resolved against the dependency graph with [depgraph.Graph.PathTo] and the
// results are collected into a [Report]:
//
//	findings, err := advisory.Decode(f)
//	if err != nil {
//	    return err
//	}
//	report := advisory.Attribute(g, findings)
//	fmt.Println(report.Summary.Total)
//
// # Severity
//
// An explicit severity string wins. Otherwise the CVSS v3.x or v4.0 score is
// computed from the vector and bucketed the way RustSec does: below 4.0 is
// low, below 7.0 moderate, below 9.0 high, and critical above that. Findings
// without a usable vector are reported as high.
package advisory
