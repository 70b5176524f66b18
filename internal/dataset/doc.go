// Package dataset downloads and rewrites a single catalog dataset.
//
// Process is the per-item unit of work run by the pipeline's worker
// pool. For each descriptor it decides skip-vs-download against the
// prior metadata snapshot, streams the CSV through the header
// normalizer, and writes the result to the output bucket in a single
// whole-object call — the transform finishes before any byte is
// stored, so a failed item never leaves a partial file behind.
//
// Every outcome is a [Result] rather than an error: item failures are
// reported and absorbed at this boundary so one broken dataset cannot
// abort the run. A Result distinguishes Updated, Skipped and Failed so
// callers and tests can tell an unchanged dataset from a broken one,
// but only Updated results contribute to the metadata snapshot.
package dataset
