package store

import (
	"sync"

	"change-order-api/models"
)

// MemoryStore keeps change orders in a process-local map. State is lost on
// restart, which is the intended behavior for the demo deployment.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.StoredChangeOrder
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.StoredChangeOrder)}
}

// cloneRecord copies a record including its slice fields so callers never
// alias the stored state.
func cloneRecord(rec models.StoredChangeOrder) models.StoredChangeOrder {
	out := rec
	if rec.Photos != nil {
		out.Photos = append([]string(nil), rec.Photos...)
	}
	if rec.LineItems != nil {
		out.LineItems = append([]models.LineItem(nil), rec.LineItems...)
	}
	if rec.BlockingReasons != nil {
		out.BlockingReasons = append([]string(nil), rec.BlockingReasons...)
	}
	if rec.NeedsInfoChecklist != nil {
		out.NeedsInfoChecklist = append([]string(nil), rec.NeedsInfoChecklist...)
	}
	if rec.ApprovedAmount != nil {
		amount := *rec.ApprovedAmount
		out.ApprovedAmount = &amount
	}
	if rec.DecisionAt != nil {
		at := *rec.DecisionAt
		out.DecisionAt = &at
	}
	if rec.DecisionEmailSentAt != nil {
		at := *rec.DecisionEmailSentAt
		out.DecisionEmailSentAt = &at
	}
	if rec.SubmittedAt != nil {
		at := *rec.SubmittedAt
		out.SubmittedAt = &at
	}
	return out
}

func (s *MemoryStore) Create(record *models.StoredChangeOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(*record)
	return nil
}

func (s *MemoryStore) FindByID(id string) (*models.StoredChangeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRecord(rec)
	return &out, nil
}

func (s *MemoryStore) Update(record *models.StoredChangeOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return ErrNotFound
	}
	s.records[record.ID] = cloneRecord(*record)
	return nil
}

func (s *MemoryStore) ListAll() ([]*models.StoredChangeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.StoredChangeOrder, 0, len(s.records))
	for _, rec := range s.records {
		clone := cloneRecord(rec)
		out = append(out, &clone)
	}
	return out, nil
}
