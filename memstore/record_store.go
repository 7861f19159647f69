package memstore

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/domeliquid/lendingcore/dispatch"
)

// RecordStore is an in-memory dispatch.RecordStore keyed by request ID.
// Lookups by snapshot ID, the transport-receipt path, scan every record;
// there is no snapshot index.
type RecordStore struct {
	mu          sync.RWMutex
	byRequestId map[string]*dispatch.InstructionRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{byRequestId: make(map[string]*dispatch.InstructionRecord)}
}

func (s *RecordStore) CreateRecord(ctx context.Context, record *dispatch.InstructionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRequestId[record.RequestId]; exists {
		return gorm.ErrDuplicatedKey
	}
	s.byRequestId[record.RequestId] = cloneRecord(record)
	return nil
}

func (s *RecordStore) UpsertRecord(ctx context.Context, record *dispatch.InstructionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRequestId[record.RequestId] = cloneRecord(record)
	return nil
}

func (s *RecordStore) UpdateRecordStatus(ctx context.Context, requestId string, status dispatch.RecordStatus, message string, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byRequestId[requestId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	r.Message = message
	r.UpdatedAt = updatedAt
	return nil
}

func (s *RecordStore) GetRecordByRequestId(ctx context.Context, requestId string) (*dispatch.InstructionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byRequestId[requestId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneRecord(r), nil
}

func (s *RecordStore) GetRecordBySnapshotId(ctx context.Context, snapshotId string) (*dispatch.InstructionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.byRequestId {
		if r.SnapshotId == snapshotId {
			return cloneRecord(r), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *RecordStore) ListRecords(ctx context.Context, pubKey string, typ dispatch.InstructionType, createdBeforeAt, limit int64) ([]dispatch.InstructionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []dispatch.InstructionRecord
	for _, r := range s.byRequestId {
		if r.PubKey != pubKey {
			continue
		}
		if typ.Valid() && r.Type != typ {
			continue
		}
		if createdBeforeAt > 0 && r.CreatedAt >= createdBeforeAt {
			continue
		}
		out = append(out, *cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
