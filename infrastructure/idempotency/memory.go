package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/SChris-dev/EcoShop-API/domain/order"
)

type entry struct {
	orderID int64 // 0 while pending
	expires time.Time
}

// MemoryStore is the single-process fallback when Redis is disabled.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Reserve(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		if e.orderID == 0 {
			return 0, false, order.ErrPlacementInProgress
		}
		return e.orderID, false, nil
	}
	s.entries[key] = entry{expires: now.Add(s.ttl)}
	return 0, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{orderID: orderID, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
