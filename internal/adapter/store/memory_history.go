package store

import (
	"context"
	"time"

	"faqbot/internal/cache"
)

// MemoryHistory keeps the last maxTurns queries for at most maxUsers users.
// The least recently active user is dropped first.
type MemoryHistory struct {
	users    *cache.LRU[[]string]
	maxTurns int
}

func NewMemoryHistory(maxUsers, maxTurns int, ttl time.Duration) *MemoryHistory {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &MemoryHistory{
		users:    cache.NewLRU[[]string](maxUsers, ttl),
		maxTurns: maxTurns,
	}
}

func (h *MemoryHistory) History(_ context.Context, userID string) ([]string, error) {
	turns, ok := h.users.Get(userID)
	if !ok {
		return nil, nil
	}
	out := make([]string, len(turns))
	copy(out, turns)
	return out, nil
}

func (h *MemoryHistory) Append(_ context.Context, userID, query string) error {
	h.users.Update(userID, func(cur []string, _ bool) []string {
		next := make([]string, 0, len(cur)+1)
		next = append(next, cur...)
		next = append(next, query)
		if len(next) > h.maxTurns {
			next = next[len(next)-h.maxTurns:]
		}
		return next
	})
	return nil
}
