package report

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Reporter outputs per-dataset progress lines and a run summary.
// All methods are safe for concurrent use.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer

	updated atomic.Int32
	skipped atomic.Int32
	failed  atomic.Int32
	bytes   atomic.Int64

	start time.Time
}

// NewReporter creates a reporter writing to out.
// If out is nil, os.Stdout is used.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

// RunStarted prints the run header and resets counters.
func (r *Reporter) RunStarted(total, workers int) {
	r.updated.Store(0)
	r.skipped.Store(0)
	r.failed.Store(0)
	r.bytes.Store(0)
	r.start = time.Now()

	r.printf("[hospsync] Catalog: %d datasets | Workers: %d\n", total, workers)
}

// Downloading reports that a dataset transfer has started.
func (r *Reporter) Downloading(title, url string) {
	r.printf("[hospsync] Downloading: %s from %s\n", title, url)
}

// Saved reports a successfully written output file.
func (r *Reporter) Saved(name string, size int64) {
	r.updated.Add(1)
	r.bytes.Add(size)
	r.printf("[hospsync] Saved: %s (%s)\n", name, formatBytes(size))
}

// Skipped reports a dataset left untouched because it is unchanged.
func (r *Reporter) Skipped(name string) {
	r.skipped.Add(1)
	r.printf("[hospsync] Skipping: %s (unchanged)\n", name)
}

// Failed reports a per-dataset failure. Failures are never fatal to
// the run.
func (r *Reporter) Failed(name string, err error) {
	r.failed.Add(1)
	r.printf("[hospsync] Failed: %s: %v\n", name, err)
}

// RunCompleted prints the run summary.
func (r *Reporter) RunCompleted() {
	r.printf("[hospsync] Done: %d updated | %d unchanged | %d failed | %s in %s\n",
		r.updated.Load(),
		r.skipped.Load(),
		r.failed.Load(),
		formatBytes(r.bytes.Load()),
		formatDuration(time.Since(r.start)),
	)
}

// Updated returns the number of datasets saved so far in this run.
func (r *Reporter) Updated() int {
	return int(r.updated.Load())
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}

// ParseBytes parses a human-readable byte string (e.g., "256MB").
func ParseBytes(s string) (int64, error) {
	var multiplier int64 = 1
	s = trimSuffix(s, " ")

	switch {
	case hasSuffix(s, "TB"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case hasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	if err != nil {
		return 0, fmt.Errorf("invalid byte string: %s", s)
	}

	return int64(value * float64(multiplier)), nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func trimSuffix(s, suffix string) string {
	for hasSuffix(s, suffix) {
		s = s[:len(s)-len(suffix)]
	}
	return s
}
