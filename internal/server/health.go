package server

import (
	"context"
	"errors"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// SnapshotStats exposes the size of the loaded record snapshot.
type SnapshotStats interface {
	Len() int
	Customers() int
}

var errSnapshotMissing = errors.New("record snapshot not loaded")

// SnapshotHealth reports ready once the record snapshot has been built.
// The snapshot is immutable, so there is nothing further to check.
type SnapshotHealth struct {
	Snapshot SnapshotStats
}

// Probe implements the HealthService interface.
func (s SnapshotHealth) Probe(context.Context) error {
	if s.Snapshot == nil {
		return errSnapshotMissing
	}
	return nil
}
