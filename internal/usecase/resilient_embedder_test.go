package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"faqbot/internal/domain/entity"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyEmbedder struct {
	failures int
	err      error
	calls    int
}

func (f *flakyEmbedder) Name() string { return "flaky" }

func (f *flakyEmbedder) CreateEmbedding(context.Context, string) ([]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func (f *flakyEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	v, err := f.CreateEmbedding(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = v
	}
	return out, nil
}

func fastResilient(primary *flakyEmbedder, retries int) *ResilientEmbedder {
	r := NewResilientEmbedder(primary, retries, time.Second, zerolog.Nop())
	r.baseDelay = time.Millisecond
	return r
}

func TestResilientEmbedder_RetriesTransientErrors(t *testing.T) {
	primary := &flakyEmbedder{failures: 2, err: errors.New("googleapi: Error 503: backend overloaded")}
	r := fastResilient(primary, 3)

	v, err := r.CreateEmbedding(context.Background(), "hostel")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, "flaky", r.Name())
}

func TestResilientEmbedder_DoesNotRetryClientErrors(t *testing.T) {
	primary := &flakyEmbedder{failures: 5, err: errors.New("Error 400: invalid argument")}
	r := fastResilient(primary, 3)

	_, err := r.CreateEmbedding(context.Background(), "hostel")
	assert.ErrorIs(t, err, entity.ErrEmbeddingUnavailable)
	assert.Equal(t, 1, primary.calls)
}

func TestResilientEmbedder_Exhausted(t *testing.T) {
	primary := &flakyEmbedder{failures: 10, err: errors.New("429 too many requests")}
	r := fastResilient(primary, 2)

	_, err := r.CreateEmbeddings(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, entity.ErrEmbeddingUnavailable)
	assert.Equal(t, 3, primary.calls)
}

func TestResilientEmbedder_Backoff(t *testing.T) {
	r := NewResilientEmbedder(&flakyEmbedder{}, 3, time.Second, zerolog.Nop())
	for attempt := 0; attempt < 3; attempt++ {
		base := r.baseDelay * time.Duration(1<<attempt)
		d := r.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/5)
	}
}
