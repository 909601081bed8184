package store

import (
	"context"
	"sync"

	"faqbot/internal/domain/entity"
)

const (
	DefaultMaxInteractions = 1000
	DefaultMaxFeedback     = 500
)

// MemoryInteractionLog is a pair of bounded rings, oldest dropped first.
type MemoryInteractionLog struct {
	mu              sync.RWMutex
	interactions    []entity.Interaction
	feedback        []entity.Feedback
	maxInteractions int
	maxFeedback     int
}

func NewMemoryInteractionLog(maxInteractions, maxFeedback int) *MemoryInteractionLog {
	if maxInteractions <= 0 {
		maxInteractions = DefaultMaxInteractions
	}
	if maxFeedback <= 0 {
		maxFeedback = DefaultMaxFeedback
	}
	return &MemoryInteractionLog{maxInteractions: maxInteractions, maxFeedback: maxFeedback}
}

func (l *MemoryInteractionLog) Record(_ context.Context, it entity.Interaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interactions = appendBounded(l.interactions, it, l.maxInteractions)
	return nil
}

func (l *MemoryInteractionLog) Recent(_ context.Context, n int) ([]entity.Interaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return tail(l.interactions, n), nil
}

func (l *MemoryInteractionLog) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.interactions), nil
}

func (l *MemoryInteractionLog) RecordFeedback(_ context.Context, fb entity.Feedback) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.feedback = appendBounded(l.feedback, fb, l.maxFeedback)
	return nil
}

func (l *MemoryInteractionLog) RecentFeedback(_ context.Context, n int) ([]entity.Feedback, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return tail(l.feedback, n), nil
}

func (l *MemoryInteractionLog) FeedbackCount(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.feedback), nil
}

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}

func tail[T any](s []T, n int) []T {
	if n <= 0 || n > len(s) {
		n = len(s)
	}
	out := make([]T, n)
	copy(out, s[len(s)-n:])
	return out
}
