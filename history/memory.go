package history

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"security-assistant/mail"
	"security-assistant/vetting"
)

// MemoryStore keeps history in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	domains []DomainRecord
	emails  []EmailRecord
}

// NewMemoryStore creates a store retaining at most limit entries per
// history; limit <= 0 means DefaultLimit.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryStore{limit: limit}
}

func (m *MemoryStore) AddDomain(_ context.Context, v vetting.DomainVerdict) error {
	rec := DomainRecord{ID: uuid.NewString(), DomainVerdict: v}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domains = prepend(m.domains, rec, m.limit)
	return nil
}

func (m *MemoryStore) Domains(_ context.Context, limit int) ([]DomainRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return head(m.domains, limit), nil
}

func (m *MemoryStore) LatestDomain(_ context.Context, domain string) (DomainRecord, error) {
	key := domainKey(domain)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.domains {
		if domainKey(rec.Domain) == key {
			return rec, nil
		}
	}
	return DomainRecord{}, ErrNotFound
}

func (m *MemoryStore) AddEmail(_ context.Context, r mail.Result) error {
	rec := EmailRecord{ID: uuid.NewString(), Result: r}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails = prepend(m.emails, rec, m.limit)
	return nil
}

func (m *MemoryStore) Emails(_ context.Context, limit int) ([]EmailRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return head(m.emails, limit), nil
}

func (m *MemoryStore) Close() error { return nil }

func prepend[T any](list []T, item T, limit int) []T {
	out := make([]T, 0, min(len(list)+1, limit))
	out = append(out, item)
	for _, v := range list {
		if len(out) == limit {
			break
		}
		out = append(out, v)
	}
	return out
}

// head returns a copy so callers cannot mutate the store.
func head[T any](list []T, limit int) []T {
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]T, limit)
	copy(out, list[:limit])
	return out
}
