// Package pipeline drives a full sync run.
//
// A run is: load the prior metadata snapshot, fetch the filtered
// catalog, fan every descriptor out to a fixed-size worker pool of
// dataset processors, fold updated results into a copy of the
// snapshot, and persist the snapshot exactly once.
//
// Workers share no mutable state. Each worker emits one Result per
// dataset onto a channel; the single collecting goroutine performs the
// snapshot merge, so no locking is needed around the map. The run
// waits for every dataset regardless of individual failures.
//
// Only two things abort a run: an unreadable/malformed metadata
// sidecar and a catalog fetch failure. Everything per-item is absorbed
// into the summary.
package pipeline
