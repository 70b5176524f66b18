package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/hospsync/hospsync/internal/catalog"
	"github.com/hospsync/hospsync/internal/config"
	hosphttp "github.com/hospsync/hospsync/internal/http"
	"github.com/hospsync/hospsync/internal/pipeline"
	"github.com/hospsync/hospsync/internal/report"
)

func runSync(args []string) int {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	output := fs.String("output", "", "Output directory or bucket URL (default: cms_hospitals_data)")
	catalogURL := fs.String("catalog", "", "Catalog endpoint URL")
	theme := fs.String("theme", "", "Theme term datasets are filtered by (default: Hospitals)")
	workers := fs.Int("workers", 0, "Number of parallel dataset downloads (default: CPU count)")
	timeout := fs.Duration("timeout", 0, "Per-request HTTP timeout")
	maxBody := fs.String("max-body-size", "", "Per-dataset download cap (e.g. 512MB)")
	schedule := fs.String("schedule", "", "Cron expression to sync repeatedly (runs once if empty)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: hospsync sync [options]

Fetch the dataset catalog, download every matching dataset whose
modified timestamp changed since the last run, rewrite column headers
to snake_case, and store the files plus a metadata.json sidecar in the
output location. Unchanged datasets are skipped.

The output accepts a local directory or a bucket URL (s3://...).

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	godotenv.Load() // optional .env, missing file is fine

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	override := config.Config{
		CatalogURL: *catalogURL,
		Theme:      *theme,
		Output:     *output,
		Workers:    *workers,
		Timeout:    *timeout,
		Schedule:   *schedule,
	}
	if *maxBody != "" {
		size, err := report.ParseBytes(*maxBody)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: parse -max-body-size: %v\n", err)
			return ExitInvalidArgs
		}
		override.MaxBodySize = size
	}
	cfg = cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[hospsync] Received interrupt, shutting down...")
		cancel()
	}()

	bucket, err := openBucket(ctx, cfg.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open output %s: %v\n", cfg.Output, err)
		return ExitStorageError
	}
	defer bucket.Close()

	client := hosphttp.NewClient(hosphttp.Options{Timeout: cfg.Timeout})
	fetcher := catalog.NewFetcher(client, cfg.CatalogURL, cfg.Theme)
	p := pipeline.New(client, fetcher, bucket, pipeline.Options{
		Workers:     cfg.Workers,
		MaxBodySize: cfg.MaxBodySize,
		Reporter:    report.NewReporter(os.Stdout),
	})

	if cfg.Schedule == "" {
		return syncOnce(ctx, p)
	}
	return syncScheduled(ctx, p, cfg.Schedule)
}

func syncOnce(ctx context.Context, p *pipeline.Pipeline) int {
	if _, err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var re *catalog.RemoteError
		if errors.As(err, &re) {
			return ExitCatalogError
		}
		return ExitStorageError
	}
	return ExitSuccess
}

// syncScheduled runs one sync immediately, then on every cron tick
// until the context is cancelled. Per-run errors are logged and do not
// stop the schedule.
func syncScheduled(ctx context.Context, p *pipeline.Pipeline, schedule string) int {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := p.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "[hospsync] Run failed: %v\n", err)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid schedule %q: %v\n", schedule, err)
		return ExitInvalidArgs
	}

	if _, err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[hospsync] Run failed: %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "[hospsync] Scheduled: %s\n", schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ExitSuccess
}

// openBucket opens the output location. A plain path is treated as a
// local directory (created if missing); anything with a scheme is
// opened through the registered blob drivers.
func openBucket(ctx context.Context, output string) (*blob.Bucket, error) {
	if strings.Contains(output, "://") {
		return blob.OpenBucket(ctx, output)
	}
	if err := os.MkdirAll(output, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return fileblob.OpenBucket(output, nil)
}
