// Package catalog fetches and filters the open-data dataset catalog.
//
// The catalog endpoint returns a JSON array of dataset descriptors
// (title, theme, modified timestamp, distribution list). Fetch issues
// a single GET, decodes the array, and keeps only datasets whose
// theme matches the configured term. A descriptor without a theme
// never matches.
//
// Endpoint failures are wrapped in [*RemoteError]; the caller treats
// them as fatal since no datasets can be known without the catalog.
//
// The modified timestamp is an opaque string. It is compared only for
// equality against the cached value, never parsed: the publisher's
// format is not part of this tool's contract.
package catalog
