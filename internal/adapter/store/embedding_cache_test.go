package store

import (
	"context"
	"path/filepath"
	"testing"

	"faqbot/internal/domain/entity"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEmbeddingCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewFileEmbeddingCache(filepath.Join(t.TempDir(), "cache", "embeddings.json"))

	_, err := c.Load(ctx, "fp1")
	assert.ErrorIs(t, err, entity.ErrCacheMiss)

	vectors := [][]float32{{1, 0}, {0, 1}}
	require.NoError(t, c.Save(ctx, "fp1", vectors))

	got, err := c.Load(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, vectors, got)

	_, err = c.Load(ctx, "fp2")
	assert.ErrorIs(t, err, entity.ErrCacheMiss, "stale fingerprint must miss")
}

func point(index int64, data ...float32) *qdrant.RetrievedPoint {
	return &qdrant.RetrievedPoint{
		Payload: map[string]*qdrant.Value{"index": qdrant.NewValueInt(index)},
		Vectors: &qdrant.VectorsOutput{VectorsOptions: &qdrant.VectorsOutput_Vector{
			Vector: &qdrant.VectorOutput{Vector: &qdrant.VectorOutput_Dense{
				Dense: &qdrant.DenseVector{Data: data},
			}},
		}},
	}
}

func TestPointsToMatrix_OrdersByIndex(t *testing.T) {
	m, err := pointsToMatrix([]*qdrant.RetrievedPoint{point(1, 0, 1), point(0, 1, 0)})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, m)
}

func TestPointsToMatrix_GapIsMiss(t *testing.T) {
	_, err := pointsToMatrix([]*qdrant.RetrievedPoint{point(0, 1), point(2, 1)})
	assert.ErrorIs(t, err, entity.ErrCacheMiss)
}
