package ratelimit

import (
	"sync"
	"time"
)

// MemoryStore is the in-process Store implementation. One mutex guards the
// whole map; every operation is a single map access, so contention stays
// negligible at request-handler rates.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record

	sweepInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup
}

// DefaultSweepInterval is how often the background sweep evicts expired
// records when no interval is given.
const DefaultSweepInterval = 5 * time.Minute

// NewMemoryStore creates a store and starts its background sweep goroutine.
// Call Close to stop it.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	s := &MemoryStore{
		records:       make(map[string]Record),
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) Increment(key string, window time.Duration, now time.Time) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || !now.Before(rec.ResetAt) {
		rec = Record{Count: 1, ResetAt: now.Add(window)}
	} else {
		rec.Count++
	}
	s.records[key] = rec
	return rec
}

func (s *MemoryStore) Get(key string, now time.Time) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || !now.Before(rec.ResetAt) {
		return Record{}, false
	}
	return rec, true
}

func (s *MemoryStore) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, rec := range s.records {
		if !now.Before(rec.ResetAt) {
			delete(s.records, key)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live records. Intended for tests and readiness
// introspection.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close stops the sweep goroutine. Safe to call once.
func (s *MemoryStore) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *MemoryStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.Evict(now)
		}
	}
}
