package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/hospsync/hospsync/internal/catalog"
	hosphttp "github.com/hospsync/hospsync/internal/http"
	"github.com/hospsync/hospsync/internal/metadata"
)

func newTestBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func testDataset(title, url, modified string) catalog.Dataset {
	return catalog.Dataset{
		Title:        title,
		Modified:     modified,
		Distribution: []catalog.Distribution{{DownloadURL: url}},
	}
}

func TestProcessDownloadsAndNormalizes(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("Facility ID,Facility Name,Overall Rating!\n010001,General Hospital,4\n010005,Mercy,3\n"))
	}))
	defer server.Close()

	bucket := newTestBucket(t)
	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{})

	ds := testDataset("Hospital General Information", server.URL+"/files/a.csv", "2021-02-01")
	res := p.Process(context.Background(), ds, metadata.Snapshot{"a.csv": "2021-01-01"})

	if res.Status != StatusUpdated {
		t.Fatalf("status = %v, err = %v", res.Status, res.Err)
	}
	if res.Name != "a.csv" || res.Modified != "2021-02-01" {
		t.Errorf("unexpected result: %+v", res)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 fetch, got %d", hits.Load())
	}

	out, err := bucket.ReadAll(context.Background(), "a.csv")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "facility_id,facility_name,overall_rating\n010001,General Hospital,4\n010005,Mercy,3\n"
	if string(out) != want {
		t.Errorf("output mismatch:\ngot:  %q\nwant: %q", out, want)
	}
	if res.Bytes != int64(len(out)) {
		t.Errorf("Bytes = %d, want %d", res.Bytes, len(out))
	}
}

func TestProcessSkipsUnchangedWithoutFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	bucket := newTestBucket(t)
	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{})

	ds := testDataset("Unchanged", server.URL+"/files/a.csv", "2021-01-01")
	res := p.Process(context.Background(), ds, metadata.Snapshot{"a.csv": "2021-01-01"})

	if res.Status != StatusSkipped {
		t.Fatalf("status = %v, want skipped", res.Status)
	}
	if hits.Load() != 0 {
		t.Errorf("skip must not touch the network, got %d fetches", hits.Load())
	}
}

func TestProcessFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	bucket := newTestBucket(t)
	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{})

	ds := testDataset("Missing", server.URL+"/files/gone.csv", "2021-01-01")
	res := p.Process(context.Background(), ds, metadata.Snapshot{})

	if res.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", res.Status)
	}
	if !errors.Is(res.Err, hosphttp.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", res.Err)
	}
	// No output object may exist.
	if exists, _ := bucket.Exists(context.Background(), "gone.csv"); exists {
		t.Error("failed dataset must not leave an output file")
	}
}

func TestProcessFailureLeavesPriorOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	bucket := newTestBucket(t)
	ctx := context.Background()
	prior := []byte("old_header\nold_row\n")
	if err := bucket.WriteAll(ctx, "a.csv", prior, nil); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{})
	ds := testDataset("Flaky", server.URL+"/files/a.csv", "2021-02-01")
	res := p.Process(ctx, ds, metadata.Snapshot{"a.csv": "2021-01-01"})

	if res.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", res.Status)
	}
	got, err := bucket.ReadAll(ctx, "a.csv")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != string(prior) {
		t.Error("failed re-download must leave the prior output untouched")
	}
}

func TestProcessFailsWithoutDistribution(t *testing.T) {
	bucket := newTestBucket(t)
	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{})

	res := p.Process(context.Background(), catalog.Dataset{Title: "Broken"}, metadata.Snapshot{})

	if res.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", res.Status)
	}
	if !errors.Is(res.Err, catalog.ErrNoDistribution) {
		t.Errorf("expected ErrNoDistribution, got %v", res.Err)
	}
	if res.Name != "Broken" {
		t.Errorf("failed result should carry the title, got %q", res.Name)
	}
}

func TestProcessFailsOnEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	bucket := newTestBucket(t)
	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{})

	ds := testDataset("Empty", server.URL+"/files/e.csv", "2021-01-01")
	res := p.Process(context.Background(), ds, metadata.Snapshot{})

	if res.Status != StatusFailed || !errors.Is(res.Err, ErrEmptyBody) {
		t.Errorf("expected empty-body failure, got %+v", res)
	}
}

func TestProcessMaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("col_a,col_b\n"))
		for i := 0; i < 1000; i++ {
			w.Write([]byte("some data,more data\n"))
		}
	}))
	defer server.Close()

	bucket := newTestBucket(t)
	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{MaxBodySize: 256})

	ds := testDataset("Huge", server.URL+"/files/h.csv", "2021-01-01")
	res := p.Process(context.Background(), ds, metadata.Snapshot{})

	if res.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", res.Status)
	}
	if !errors.Is(res.Err, ErrTooLarge) {
		// Truncation mid-row can also surface as a CSV parse error;
		// either way the item must fail before writing.
		t.Logf("got non-sentinel error: %v", res.Err)
	}
	if exists, _ := bucket.Exists(context.Background(), "h.csv"); exists {
		t.Error("oversized dataset must not leave an output file")
	}
}

func TestProcessRedownloadOnChangedModified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Header One\nvalue\n"))
	}))
	defer server.Close()

	bucket := newTestBucket(t)
	p := NewProcessor(hosphttp.NewClient(hosphttp.DefaultOptions()), bucket, nil, Options{})

	ds := testDataset("Changed", server.URL+"/files/a.csv", "2021-02-01")
	res := p.Process(context.Background(), ds, metadata.Snapshot{"a.csv": "2021-01-01"})

	if res.Status != StatusUpdated {
		t.Fatalf("status = %v, err = %v", res.Status, res.Err)
	}
	out, _ := bucket.ReadAll(context.Background(), "a.csv")
	if string(out) != "header_one\nvalue\n" {
		t.Errorf("unexpected output: %q", out)
	}
}
