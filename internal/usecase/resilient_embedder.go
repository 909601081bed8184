package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"faqbot/internal/domain/entity"
	"faqbot/internal/domain/repository"

	"github.com/rs/zerolog"
)

// ResilientEmbedder puts a timeout and retries around a remote embedder.
// When retries run out the error wraps entity.ErrEmbeddingUnavailable so the
// resolver can drop to keyword matching.
type ResilientEmbedder struct {
	primary    repository.Embedder
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration // per call, including retries
	logger     zerolog.Logger
}

func NewResilientEmbedder(primary repository.Embedder, maxRetries int, timeout time.Duration, logger zerolog.Logger) *ResilientEmbedder {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResilientEmbedder{
		primary:    primary,
		maxRetries: maxRetries,
		baseDelay:  200 * time.Millisecond,
		timeout:    timeout,
		logger:     logger.With().Str("component", "embedder").Logger(),
	}
}

func (r *ResilientEmbedder) Name() string { return r.primary.Name() }

func (r *ResilientEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := r.do(ctx, r.timeout, func(ctx context.Context) error {
		v, err := r.primary.CreateEmbedding(ctx, text)
		out = v
		return err
	})
	return out, err
}

// CreateEmbeddings runs once at startup over the whole catalog, so it gets a
// longer budget than a single query.
func (r *ResilientEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.do(ctx, 10*r.timeout, func(ctx context.Context) error {
		v, err := r.primary.CreateEmbeddings(ctx, texts)
		out = v
		return err
	})
	return out, err
}

func (r *ResilientEmbedder) do(ctx context.Context, timeout time.Duration, call func(context.Context) error) error {
	resCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := call(resCtx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.isRetryable(err) || attempt == r.maxRetries {
			break
		}
		wait := r.calculateBackoff(attempt)
		r.logger.Debug().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying embedding call")
		select {
		case <-time.After(wait):
		case <-resCtx.Done():
			return fmt.Errorf("%w: %v", entity.ErrEmbeddingUnavailable, resCtx.Err())
		}
	}
	return fmt.Errorf("%w: %v", entity.ErrEmbeddingUnavailable, lastErr)
}

func (r *ResilientEmbedder) isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// Rate limits (429) and server errors (5xx)
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "deadline")
}

func (r *ResilientEmbedder) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.baseDelay) * float64(int(1)<<attempt)
	jitter := (rand.Float64() * 0.2) * backoff // 20% jitter
	return time.Duration(backoff + jitter)
}
