package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// DefaultObject is the name of the sidecar object within the output
// bucket.
const DefaultObject = "metadata.json"

// Snapshot maps output filename to the modified timestamp it was last
// downloaded with. Every key was associated with a successfully
// downloaded and transformed dataset in some past run.
type Snapshot map[string]string

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Store loads and saves snapshots in a bucket.
type Store struct {
	bucket *blob.Bucket
	object string
}

// NewStore creates a Store persisting to DefaultObject in bucket.
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket, object: DefaultObject}
}

// Load reads the persisted snapshot. A missing sidecar yields an empty
// snapshot; a malformed one is an error.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	data, err := s.bucket.ReadAll(ctx, s.object)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("metadata: read %s: %w", s.object, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("metadata: parse %s: %w", s.object, err)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// Save writes the snapshot, fully replacing any prior sidecar.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("metadata: marshal: %w", err)
	}
	if err := s.bucket.WriteAll(ctx, s.object, data, nil); err != nil {
		return fmt.Errorf("metadata: write %s: %w", s.object, err)
	}
	return nil
}
