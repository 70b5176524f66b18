// Package config defines configuration structures for the hospsync CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (HOSPSYNC_ prefix)
//   - YAML configuration file
//
// Precedence is flags over environment over file over defaults.
//
// # Structure
//
//	type Config struct {
//	    CatalogURL  string        // catalog endpoint
//	    Theme       string        // category filter term
//	    Output      string        // output directory or bucket URL
//	    Workers     int           // parallel dataset processors
//	    Timeout     time.Duration // per-request HTTP timeout
//	    MaxBodySize int64         // per-dataset download cap (0 = off)
//	    Schedule    string        // optional cron expression
//	}
package config
