// Package http provides the HTTP client used for catalog and dataset
// fetches.
//
// This package handles:
//   - Connection pooling sized for parallel dataset downloads
//   - Per-request timeouts
//   - Mapping status codes to sentinel errors
//   - JSON response decoding
//
// There is deliberately no retry logic: a failed dataset fetch is
// reported and picked up again on the next run, and a failing catalog
// endpoint is fatal to the run.
//
// # Usage
//
//	client := http.NewClient(http.Options{
//	    Timeout: 60 * time.Second,
//	})
//
//	body, err := client.Get(ctx, url)
//	defer body.Close()
//
//	var items []Item
//	err = client.GetJSON(ctx, url, &items)
package http
