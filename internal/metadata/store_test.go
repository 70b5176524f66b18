package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func newTestStore(t *testing.T) (*Store, *blob.Bucket) {
	t.Helper()
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })
	return NewStore(bucket), bucket
}

func TestLoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	in := Snapshot{
		"Hospital_General_Information.csv": "2021-01-01",
		"HCAHPS-Hospital.csv":              "2021-02-15",
		"weird name with spaces.csv":       "Fri, 13 Aug 2021",
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveReplacesPriorContent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Snapshot{"a.csv": "1", "b.csv": "1"}))
	require.NoError(t, store.Save(ctx, Snapshot{"a.csv": "2"}))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"a.csv": "2"}, out)
}

func TestSaveEmptySnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Snapshot{}))
	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLoadMalformed(t *testing.T) {
	store, bucket := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, bucket.WriteAll(ctx, DefaultObject, []byte("{corrupt"), nil))

	_, err := store.Load(ctx)
	assert.Error(t, err)
}

func TestLoadJSONNull(t *testing.T) {
	store, bucket := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, bucket.WriteAll(ctx, DefaultObject, []byte("null"), nil))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestClone(t *testing.T) {
	orig := Snapshot{"a.csv": "1"}
	clone := orig.Clone()
	clone["a.csv"] = "2"
	clone["b.csv"] = "1"

	assert.Equal(t, Snapshot{"a.csv": "1"}, orig)
	assert.Equal(t, Snapshot{"a.csv": "2", "b.csv": "1"}, clone)
}
