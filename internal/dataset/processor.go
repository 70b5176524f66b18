package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"gocloud.dev/blob"

	"github.com/hospsync/hospsync/internal/catalog"
	hosphttp "github.com/hospsync/hospsync/internal/http"
	"github.com/hospsync/hospsync/internal/metadata"
	"github.com/hospsync/hospsync/internal/normalize"
	"github.com/hospsync/hospsync/internal/report"
)

// ErrTooLarge is returned inside a failed Result when a dataset body
// exceeds the configured size cap.
var ErrTooLarge = errors.New("dataset: body exceeds maximum size")

// ErrEmptyBody is returned inside a failed Result when a dataset body
// contains no rows at all.
var ErrEmptyBody = errors.New("dataset: empty body")

// Status classifies the outcome of processing one dataset.
type Status int

const (
	// StatusUpdated means the dataset was downloaded, rewritten and saved.
	StatusUpdated Status = iota
	// StatusSkipped means the cached modified timestamp matched and
	// nothing was fetched.
	StatusSkipped
	// StatusFailed means fetching, parsing or writing failed; prior
	// output and metadata are untouched.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of processing one dataset.
type Result struct {
	// Name is the output filename, or the dataset title when no
	// filename could be derived.
	Name string
	// Modified is the descriptor's modified string. Meaningful only
	// for updated results.
	Modified string
	Status   Status
	// Bytes is the size of the written output file.
	Bytes int64
	// Err is set for failed results.
	Err error
}

// Options configures the processor.
type Options struct {
	// MaxBodySize caps the downloaded size per dataset in bytes.
	// Zero means no cap.
	MaxBodySize int64
}

// Processor turns one catalog descriptor into an output file.
type Processor struct {
	client   *hosphttp.Client
	bucket   *blob.Bucket
	reporter *report.Reporter
	opts     Options
}

// NewProcessor creates a Processor writing to bucket. reporter may be
// nil to disable per-item output.
func NewProcessor(client *hosphttp.Client, bucket *blob.Bucket, reporter *report.Reporter, opts Options) *Processor {
	return &Processor{client: client, bucket: bucket, reporter: reporter, opts: opts}
}

// Process handles a single dataset against the prior snapshot. It
// never returns an error: failures are folded into the Result and
// reported, leaving prior state untouched.
func (p *Processor) Process(ctx context.Context, ds catalog.Dataset, prior metadata.Snapshot) Result {
	name, err := ds.Filename()
	if err != nil {
		return p.failed(ds.Title, err)
	}

	if last, ok := prior[name]; ok && last == ds.Modified {
		if p.reporter != nil {
			p.reporter.Skipped(name)
		}
		return Result{Name: name, Status: StatusSkipped}
	}

	url, _ := ds.DownloadURL() // Filename succeeded, so this cannot fail
	if p.reporter != nil {
		p.reporter.Downloading(ds.Title, url)
	}

	out, err := p.download(ctx, url)
	if err != nil {
		return p.failed(name, err)
	}

	opts := &blob.WriterOptions{ContentType: "text/csv"}
	if err := p.bucket.WriteAll(ctx, name, out, opts); err != nil {
		return p.failed(name, fmt.Errorf("write %s: %w", name, err))
	}

	if p.reporter != nil {
		p.reporter.Saved(name, int64(len(out)))
	}
	return Result{
		Name:     name,
		Modified: ds.Modified,
		Status:   StatusUpdated,
		Bytes:    int64(len(out)),
	}
}

// download fetches the dataset body and rewrites its header row,
// returning the complete transformed file.
func (p *Processor) download(ctx context.Context, url string) ([]byte, error) {
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer body.Close()

	// Read at most one byte past the cap so oversized bodies are
	// detected rather than silently truncated.
	var src io.Reader = body
	var counted *countingReader
	if p.opts.MaxBodySize > 0 {
		counted = &countingReader{r: io.LimitReader(body, p.opts.MaxBodySize+1)}
		src = counted
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // published tables have ragged rows
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyBody
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(normalize.Header(header)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	if counted != nil && counted.n > p.opts.MaxBodySize {
		return nil, fmt.Errorf("%w: limit %s", ErrTooLarge, report.FormatBytes(p.opts.MaxBodySize))
	}

	return buf.Bytes(), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (p *Processor) failed(name string, err error) Result {
	if p.reporter != nil {
		p.reporter.Failed(name, err)
	}
	return Result{Name: name, Status: StatusFailed, Err: err}
}
