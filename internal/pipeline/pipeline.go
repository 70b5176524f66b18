package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"gocloud.dev/blob"

	"github.com/hospsync/hospsync/internal/catalog"
	"github.com/hospsync/hospsync/internal/dataset"
	hosphttp "github.com/hospsync/hospsync/internal/http"
	"github.com/hospsync/hospsync/internal/metadata"
	"github.com/hospsync/hospsync/internal/report"
)

// Options configures a Pipeline.
type Options struct {
	// Workers is the number of parallel dataset processors.
	// Default: runtime.NumCPU()
	Workers int

	// MaxBodySize caps the downloaded size per dataset. Zero means no cap.
	MaxBodySize int64

	// Reporter receives per-item and summary output. May be nil.
	Reporter *report.Reporter
}

// Summary counts the outcomes of one run.
type Summary struct {
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of datasets seen in the run.
func (s Summary) Total() int {
	return s.Updated + s.Skipped + s.Failed
}

// Pipeline wires the catalog fetcher, the dataset processors and the
// metadata store into a single run-to-completion sync.
type Pipeline struct {
	fetcher   *catalog.Fetcher
	processor *dataset.Processor
	store     *metadata.Store
	opts      Options
}

// New builds a Pipeline around the given collaborators. The bucket
// receives both the output files and the metadata sidecar.
func New(client *hosphttp.Client, fetcher *catalog.Fetcher, bucket *blob.Bucket, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		fetcher: fetcher,
		processor: dataset.NewProcessor(client, bucket, opts.Reporter, dataset.Options{
			MaxBodySize: opts.MaxBodySize,
		}),
		store: metadata.NewStore(bucket),
		opts:  opts,
	}
}

// Run performs one full sync. It returns an error only for fatal
// conditions: a malformed metadata sidecar, an unreachable catalog, or
// a failed snapshot save. Per-dataset failures are counted in the
// Summary.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	prior, err := p.store.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load metadata: %w", err)
	}

	datasets, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return Summary{}, err
	}

	if p.opts.Reporter != nil {
		p.opts.Reporter.RunStarted(len(datasets), p.opts.Workers)
	}

	results := p.processAll(ctx, datasets, prior)

	// Single-writer merge: only this goroutine touches the snapshot copy.
	updated := prior.Clone()
	var summary Summary
	for res := range results {
		switch res.Status {
		case dataset.StatusUpdated:
			updated[res.Name] = res.Modified
			summary.Updated++
		case dataset.StatusSkipped:
			summary.Skipped++
		case dataset.StatusFailed:
			summary.Failed++
		}
	}

	if err := p.store.Save(ctx, updated); err != nil {
		return summary, fmt.Errorf("save metadata: %w", err)
	}

	if p.opts.Reporter != nil {
		p.opts.Reporter.RunCompleted()
	}
	return summary, nil
}

// processAll fans datasets out to the worker pool and returns the
// channel of results. The channel is closed once every dataset has
// been handled.
func (p *Pipeline) processAll(ctx context.Context, datasets []catalog.Dataset, prior metadata.Snapshot) <-chan dataset.Result {
	jobs := make(chan catalog.Dataset)
	results := make(chan dataset.Result, len(datasets))

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ds := range jobs {
				results <- p.processor.Process(ctx, ds, prior)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, ds := range datasets {
			select {
			case jobs <- ds:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
