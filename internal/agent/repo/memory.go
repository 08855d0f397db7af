package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
)

// InMemoryRepository is a MemoryRepository backed by process memory. It backs
// tests and the MEMORY_BACKEND=memory mode for running without any store.
type InMemoryRepository struct {
	mu      sync.RWMutex
	turns   []model.ChatTurn
	records []model.SessionMemoryRecord
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) AppendTurn(_ context.Context, turn model.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return nil
}

func (r *InMemoryRepository) History(_ context.Context, sessionID string, limit int) ([]model.ChatTurn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.ChatTurn
	for _, t := range r.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) AppendRecord(_ context.Context, rec model.SessionMemoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *InMemoryRepository) Facts(_ context.Context, sessionID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var facts []string
	for _, rec := range r.records {
		if rec.SessionID == sessionID && rec.Type == model.RecordTypeImportantFact {
			facts = append(facts, rec.Content)
		}
	}
	return facts, nil
}

func (r *InMemoryRepository) LongTerm(_ context.Context, recordType string, limit int) ([]model.SessionMemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.SessionMemoryRecord
	for _, rec := range r.records {
		if rec.Type == recordType && rec.Persistent {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Clear(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	turns := r.turns[:0]
	for _, t := range r.turns {
		if t.SessionID == sessionID {
			removed++
			continue
		}
		turns = append(turns, t)
	}
	r.turns = turns

	records := r.records[:0]
	for _, rec := range r.records {
		if rec.SessionID == sessionID {
			removed++
			continue
		}
		records = append(records, rec)
	}
	r.records = records

	return removed, nil
}

var _ model.MemoryRepository = (*InMemoryRepository)(nil)
