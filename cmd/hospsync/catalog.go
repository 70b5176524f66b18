package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hospsync/hospsync/internal/catalog"
	"github.com/hospsync/hospsync/internal/config"
	hosphttp "github.com/hospsync/hospsync/internal/http"
)

func runCatalog(args []string) int {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	catalogURL := fs.String("catalog", "", "Catalog endpoint URL")
	theme := fs.String("theme", "", "Theme term datasets are filtered by (default: Hospitals)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: hospsync catalog [options]

List the datasets the current filter would sync, without downloading
anything. One line per dataset: modified timestamp, output filename,
title.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	godotenv.Load()

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
	cfg = cfg.Merge(config.Config{CatalogURL: *catalogURL, Theme: *theme})

	client := hosphttp.NewClient(hosphttp.Options{Timeout: cfg.Timeout})
	fetcher := catalog.NewFetcher(client, cfg.CatalogURL, cfg.Theme)

	datasets, err := fetcher.Fetch(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCatalogError
	}

	for _, ds := range datasets {
		name, err := ds.Filename()
		if err != nil {
			name = "(no download URL)"
		}
		fmt.Printf("%-25s  %-50s  %s\n", ds.Modified, name, ds.Title)
	}
	fmt.Fprintf(os.Stderr, "[hospsync] %d datasets match theme %q\n", len(datasets), cfg.Theme)

	return ExitSuccess
}
