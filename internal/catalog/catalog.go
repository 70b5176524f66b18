package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	hosphttp "github.com/hospsync/hospsync/internal/http"
)

// DefaultEndpoint is the CMS provider-data metastore listing.
const DefaultEndpoint = "https://data.cms.gov/provider-data/api/1/metastore/schemas/dataset/items"

// DefaultTheme is the category term datasets are filtered by.
const DefaultTheme = "Hospitals"

// ErrNoDistribution is returned when a descriptor carries no
// downloadable distribution.
var ErrNoDistribution = errors.New("catalog: dataset has no distribution")

// RemoteError indicates the catalog endpoint could not be fetched or
// its response could not be decoded.
type RemoteError struct {
	URL string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("catalog: fetch %s: %v", e.URL, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Themes is a dataset's category labels. The live API publishes an
// array of strings; older captures publish a bare string. Both decode
// into the same slice.
type Themes []string

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (t *Themes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = Themes{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	*t = Themes(many)
	return nil
}

// Contains reports whether any theme entry contains term as a substring.
func (t Themes) Contains(term string) bool {
	for _, theme := range t {
		if strings.Contains(theme, term) {
			return true
		}
	}
	return false
}

// Distribution is one downloadable rendition of a dataset.
type Distribution struct {
	DownloadURL string `json:"downloadURL"`
}

// Dataset is one catalog descriptor. Descriptors are read-only; the
// catalog owns their contents.
type Dataset struct {
	Title        string         `json:"title"`
	Theme        Themes         `json:"theme"`
	Modified     string         `json:"modified"`
	Distribution []Distribution `json:"distribution"`
}

// DownloadURL returns the URL of the dataset's first distribution.
func (d Dataset) DownloadURL() (string, error) {
	if len(d.Distribution) == 0 || d.Distribution[0].DownloadURL == "" {
		return "", ErrNoDistribution
	}
	return d.Distribution[0].DownloadURL, nil
}

// Filename derives the output filename from the download URL's last
// path segment.
func (d Dataset) Filename() (string, error) {
	raw, err := d.DownloadURL()
	if err != nil {
		return "", err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse download URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("download URL %q has no file path", raw)
	}
	return name, nil
}

// Fetcher retrieves the filtered dataset catalog.
type Fetcher struct {
	client   *hosphttp.Client
	endpoint string
	theme    string
}

// NewFetcher creates a Fetcher against the given endpoint, keeping
// datasets whose theme matches term. Empty arguments fall back to the
// CMS defaults.
func NewFetcher(client *hosphttp.Client, endpoint, term string) *Fetcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if term == "" {
		term = DefaultTheme
	}
	return &Fetcher{client: client, endpoint: endpoint, theme: term}
}

// Fetch issues one GET to the catalog endpoint and returns the
// descriptors matching the theme filter. Endpoint or decode failures
// return a *RemoteError.
func (f *Fetcher) Fetch(ctx context.Context) ([]Dataset, error) {
	var all []Dataset
	if err := f.client.GetJSON(ctx, f.endpoint, &all); err != nil {
		return nil, &RemoteError{URL: f.endpoint, Err: err}
	}

	matched := all[:0]
	for _, d := range all {
		if d.Theme.Contains(f.theme) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}
