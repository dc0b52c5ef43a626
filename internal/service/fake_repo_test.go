package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"carbonintensity/internal/domain"
	"carbonintensity/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

// memRepo is an in-memory repository.Repository. The interval index is
// checked under the same lock as the write, like a unique constraint.
type memRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]domain.IntensityRecord
	byKey   map[domain.IntervalKey]int64
	fail    error
	writes  int
	lookups int

	// afterFind runs once after FindByID, outside the lock
	afterFind func()
}

func newMemRepo() *memRepo {
	return &memRepo{
		nextID: 1,
		rows:   make(map[int64]domain.IntensityRecord),
		byKey:  make(map[domain.IntervalKey]int64),
	}
}

func (m *memRepo) FindByID(_ context.Context, id int64) (*domain.IntensityRecord, error) {
	m.mu.Lock()
	m.lookups++
	if m.fail != nil {
		m.mu.Unlock()
		return nil, m.fail
	}
	rec, ok := m.rows[id]
	hook := m.afterFind
	m.afterFind = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memRepo) ListOrderedByFrom(_ context.Context) ([]domain.IntensityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]domain.IntensityRecord, 0, len(m.rows))
	for _, rec := range m.rows {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From.Equal(out[j].From) {
			return out[i].ID < out[j].ID
		}
		return out[i].From.Before(out[j].From)
	})
	return out, nil
}

func (m *memRepo) Insert(_ context.Context, rec *domain.IntensityRecord) (repository.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return repository.WriteResult{}, m.fail
	}
	m.writes++
	if _, taken := m.byKey[rec.Key()]; taken {
		return repository.WriteResult{Status: repository.WriteDuplicate}, nil
	}
	stored := *rec
	stored.ID = m.nextID
	m.nextID++
	m.rows[stored.ID] = stored
	m.byKey[stored.Key()] = stored.ID
	return repository.WriteResult{Status: repository.WriteOK, Record: &stored}, nil
}

func (m *memRepo) Persist(_ context.Context, rec *domain.IntensityRecord) (repository.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return repository.WriteResult{}, m.fail
	}
	m.writes++
	old, ok := m.rows[rec.ID]
	if !ok {
		return repository.WriteResult{Status: repository.WriteMissing}, nil
	}
	if owner, taken := m.byKey[rec.Key()]; taken && owner != rec.ID {
		return repository.WriteResult{Status: repository.WriteDuplicate}, nil
	}
	delete(m.byKey, old.Key())
	stored := *rec
	m.rows[stored.ID] = stored
	m.byKey[stored.Key()] = stored.ID
	return repository.WriteResult{Status: repository.WriteOK, Record: &stored}, nil
}

func (m *memRepo) DeleteByID(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	m.writes++
	rec, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	delete(m.rows, id)
	delete(m.byKey, rec.Key())
	return true, nil
}

func (m *memRepo) Ping(context.Context) error { return m.fail }

func (m *memRepo) Close() error { return nil }

func (m *memRepo) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memRepo) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}
