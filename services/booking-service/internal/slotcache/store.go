package slotcache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// Key identifies one resolved day at one generation.
type Key struct {
	DesignerID string
	Date       model.Date
	Generation uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.DesignerID, k.Date, k.Generation)
}

// Store holds resolved slot lists. Entries are immutable once written.
type Store interface {
	Get(ctx context.Context, key Key) ([]model.TimeOfDay, bool, error)
	Set(ctx context.Context, key Key, slots []model.TimeOfDay) error
}

// MemoryStore is a bounded LRU with a per-entry TTL.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	entries  map[Key]*list.Element
	now      func() time.Time
}

type memoryEntry struct {
	key     Key
	slots   []model.TimeOfDay
	expires time.Time
}

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryStore{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		entries:  make(map[Key]*list.Element),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]model.TimeOfDay, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*memoryEntry)
	if !s.now().Before(e.expires) {
		s.remove(el)
		return nil, false, nil
	}
	s.order.MoveToFront(el)
	return cloneSlots(e.slots), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, slots []model.TimeOfDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.remove(el)
	}
	el := s.order.PushFront(&memoryEntry{key: key, slots: cloneSlots(slots), expires: s.now().Add(s.ttl)})
	s.entries[key] = el
	for s.order.Len() > s.capacity {
		s.remove(s.order.Back())
	}
	return nil
}

// Sweep drops entries for dates before the given date and expired entries.
func (s *MemoryStore) Sweep(before model.Date) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for el := s.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*memoryEntry)
		if e.key.Date.Before(before) || !now.Before(e.expires) {
			s.remove(el)
			removed++
		}
		el = next
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *MemoryStore) remove(el *list.Element) {
	e := s.order.Remove(el).(*memoryEntry)
	delete(s.entries, e.key)
}

func cloneSlots(in []model.TimeOfDay) []model.TimeOfDay {
	out := make([]model.TimeOfDay, len(in))
	copy(out, in)
	return out
}
