// Package report provides human-readable run reporting for sync runs.
//
// The reporter outputs one line per dataset decision to stdout plus a
// run summary. Workers call it concurrently; output is serialized.
//
// # Usage
//
//	reporter := report.NewReporter(os.Stdout)
//	reporter.RunStarted(catalogURL, len(datasets), workers)
//
//	// From workers, as datasets resolve:
//	reporter.Downloading(title, url)
//	reporter.Saved(name, bytes)
//	reporter.Skipped(name)
//	reporter.Failed(name, err)
//
//	reporter.RunCompleted()
//
// # Output Format
//
//	[hospsync] Catalog: 128 datasets | Workers: 8
//	[hospsync] Downloading: Hospital General Information from https://...
//	[hospsync] Saved: Hospital_General_Information.csv (2.31 MB)
//	[hospsync] Skipping: HCAHPS-Hospital.csv (unchanged)
//	[hospsync] Failed: Timely_Care.csv: http: resource not found
//	[hospsync] Done: 12 updated | 115 unchanged | 1 failed | 41.52 MB in 12s
//
// The package also exposes the byte-size helpers used by config
// parsing: [ParseBytes] and [FormatBytes].
package report
