package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCategory is the category used by callers that do not name one.
const DefaultCategory = "default"

// Store hands out one bucket per client and category.
// Buckets live in an expirable LRU, so idle clients age out and the number
// of remembered clients stays bounded.
type Store struct {
	limiters *lru.LRU[string, *Limiter]
	rate     Rate

	// mu makes get-or-create atomic
	mu sync.Mutex
}

// NewStore creates a new store for managing rate limiters.
//
// Parameters:
//   - rate: The refill rate and burst of every new bucket
//   - maxClients: How many client buckets are kept before the least recently used is evicted
//   - idleTTL: How long an untouched bucket is kept
//
// Returns:
//   - A configured limiter store
func NewStore(rate Rate, maxClients int, idleTTL time.Duration) *Store {
	if maxClients <= 0 {
		maxClients = 1
	}
	return &Store{
		limiters: lru.NewLRU[string, *Limiter](maxClients, nil, idleTTL),
		rate:     rate,
	}
}

// GetLimiter returns the bucket of a client within a category, creating a
// full one on first use.
func (s *Store) GetLimiter(clientID string, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.Lock()
	defer s.mu.Unlock()

	// Add refreshes the entry's TTL, so active clients keep their bucket
	if limiter, ok := s.limiters.Get(key); ok {
		s.limiters.Add(key, limiter)
		return limiter
	}

	limiter := NewLimiter(s.rate.RequestsPerSecond, s.rate.Burst)
	s.limiters.Add(key, limiter)
	return limiter
}

// Reserve takes one token from the client's bucket in the category and,
// when none is left, reports how long the client should wait.
func (s *Store) Reserve(clientID, category string) (bool, time.Duration) {
	return s.GetLimiter(clientID, category).Reserve()
}

// Len reports how many client buckets are currently held.
func (s *Store) Len() int {
	return s.limiters.Len()
}
