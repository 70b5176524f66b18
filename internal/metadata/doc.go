// Package metadata persists the per-file modification cache.
//
// A Snapshot maps output filename to the modified timestamp string the
// file was last downloaded with. The Store keeps it as a single JSON
// object ("metadata.json") next to the output files, replaced wholesale
// on every save:
//
//	{
//	  "Hospital_General_Information.csv": "2021-01-01",
//	  "HCAHPS-Hospital.csv": "2021-02-15"
//	}
//
// A missing sidecar loads as an empty snapshot. A malformed sidecar is
// an error, not an empty snapshot: silently discarding it would make
// every skip decision wrong on the next run.
package metadata
