// Package store persists the admin and channel id sets.
//
// Each set is a single blob holding a JSON array of integers. Blobs are read
// fully on startup and rewritten fully on every mutation; there is no
// incremental format and no schema version.
package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

const (
	KeyAdmins   = "admins"
	KeyChannels = "channels"
)

// Store is a key-value blob store for id sets.
type Store interface {
	// Load returns the ids stored under key. found is false when the blob
	// has never been written.
	Load(ctx context.Context, key string) (ids []int64, found bool, err error)
	Save(ctx context.Context, key string, ids []int64) error
}

func encodeIDs(ids []int64) ([]byte, error) {
	sorted := append([]int64{}, ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	b, err := json.Marshal(sorted)
	if err != nil {
		return nil, errors.Wrap(err, "encode ids")
	}
	return b, nil
}

func decodeIDs(key string, b []byte) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, errors.Wrapf(err, "decode %s", key)
	}
	return ids, nil
}
