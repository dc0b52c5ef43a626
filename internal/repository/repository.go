package repository

import (
	"context"

	"carbonintensity/internal/domain"
)

// WriteStatus tags the outcome of a write that reached the store
type WriteStatus int

const (
	// WriteOK means the row was written
	WriteOK WriteStatus = iota
	// WriteDuplicate means the (from, to) uniqueness constraint rejected the write
	WriteDuplicate
	// WriteMissing means the target row no longer exists
	WriteMissing
)

func (s WriteStatus) String() string {
	switch s {
	case WriteOK:
		return "ok"
	case WriteDuplicate:
		return "duplicate"
	case WriteMissing:
		return "missing"
	}
	return "unknown"
}

// WriteResult is returned by Insert and Persist. Record is set only when
// Status is WriteOK. Storage failures are reported through the error return,
// never through the status.
type WriteResult struct {
	Status WriteStatus
	Record *domain.IntensityRecord
}

// Repository defines the interface for intensity record data access
type Repository interface {
	// Read operations
	FindByID(ctx context.Context, id int64) (*domain.IntensityRecord, error)
	ListOrderedByFrom(ctx context.Context) ([]domain.IntensityRecord, error)

	// Write operations
	Insert(ctx context.Context, rec *domain.IntensityRecord) (WriteResult, error)
	Persist(ctx context.Context, rec *domain.IntensityRecord) (WriteResult, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error

	// Close releases resources
	Close() error
}

// Importer loads records in bulk, skipping (from, to) pairs that already exist
type Importer interface {
	ImportRecords(ctx context.Context, inputs []domain.IntensityInput) (int, error)
}
