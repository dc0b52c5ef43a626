package service

import (
	"context"
	"fmt"
	"log/slog"

	"carbonintensity/internal/domain"
	"carbonintensity/internal/observability"
	"carbonintensity/internal/repository"
)

// Write outcomes recorded in metrics
const (
	outcomeOK        = "ok"
	outcomeDuplicate = "duplicate"
	outcomeNotFound  = "not_found"
	outcomeError     = "error"
)

// IntensityService mediates every read and write of intensity records. The
// (from, to) uniqueness rule is left to the store's constraint; the service
// only interprets the write outcome it reports.
type IntensityService struct {
	repo     repository.Repository
	eventBus *EventBus
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewIntensityService creates a new intensity service. metrics may be nil.
func NewIntensityService(repo repository.Repository, eventBus *EventBus, metrics *observability.Metrics, logger *slog.Logger) *IntensityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntensityService{
		repo:     repo,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns every record ascending by from
func (s *IntensityService) List(ctx context.Context) ([]domain.IntensityRecord, error) {
	return s.repo.ListOrderedByFrom(ctx)
}

// Create inserts a new record. A record with the same interval already
// stored yields domain.ErrDuplicateInterval.
func (s *IntensityService) Create(ctx context.Context, in domain.IntensityInput) (*domain.IntensityRecord, error) {
	res, err := s.repo.Insert(ctx, in.NewRecord())
	if err != nil {
		s.metrics.RecordWrite("create", outcomeError)
		return nil, err
	}

	switch res.Status {
	case repository.WriteOK:
		s.metrics.RecordWrite("create", outcomeOK)
		s.publish(newEvent(EventIntensityCreated, res.Record.ID, res.Record))
		return res.Record, nil
	case repository.WriteDuplicate:
		s.metrics.RecordWrite("create", outcomeDuplicate)
		return nil, domain.ErrDuplicateInterval
	default:
		s.metrics.RecordWrite("create", outcomeError)
		return nil, fmt.Errorf("unexpected insert outcome %s", res.Status)
	}
}

// Update applies the supplied fields to record id. An unknown id yields
// domain.ErrNotFound before any write is attempted; moving the record onto an
// interval held by another record yields domain.ErrDuplicateInterval.
func (s *IntensityService) Update(ctx context.Context, id int64, patch domain.IntensityPatch) (*domain.IntensityRecord, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.metrics.RecordWrite("update", outcomeError)
		return nil, err
	}
	if rec == nil {
		s.metrics.RecordWrite("update", outcomeNotFound)
		return nil, domain.ErrNotFound
	}

	patch.Apply(rec)

	res, err := s.repo.Persist(ctx, rec)
	if err != nil {
		s.metrics.RecordWrite("update", outcomeError)
		return nil, err
	}

	switch res.Status {
	case repository.WriteOK:
		s.metrics.RecordWrite("update", outcomeOK)
		s.publish(newEvent(EventIntensityUpdated, res.Record.ID, res.Record))
		return res.Record, nil
	case repository.WriteDuplicate:
		s.metrics.RecordWrite("update", outcomeDuplicate)
		return nil, domain.ErrDuplicateInterval
	case repository.WriteMissing:
		// deleted between the lookup and the write
		s.metrics.RecordWrite("update", outcomeNotFound)
		return nil, domain.ErrNotFound
	default:
		s.metrics.RecordWrite("update", outcomeError)
		return nil, fmt.Errorf("unexpected persist outcome %s", res.Status)
	}
}

// Remove permanently deletes record id and returns the id
func (s *IntensityService) Remove(ctx context.Context, id int64) (int64, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.metrics.RecordWrite("remove", outcomeError)
		return 0, err
	}
	if rec == nil {
		s.metrics.RecordWrite("remove", outcomeNotFound)
		return 0, domain.ErrNotFound
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		s.metrics.RecordWrite("remove", outcomeError)
		return 0, err
	}
	if !deleted {
		s.metrics.RecordWrite("remove", outcomeNotFound)
		return 0, domain.ErrNotFound
	}

	s.metrics.RecordWrite("remove", outcomeOK)
	s.publish(newEvent(EventIntensityDeleted, id, map[string]int64{"id": id}))
	return id, nil
}

func (s *IntensityService) publish(event Event) {
	if s.eventBus == nil {
		return
	}
	if dropped := s.eventBus.Publish(event); dropped > 0 {
		s.logger.Warn("event subscribers lagging, event skipped",
			"type", event.Type, "id", event.RecordID, "skipped", dropped)
	}
}
