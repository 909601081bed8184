package store

import (
	"context"
	"fmt"
	"sort"

	"faqbot/internal/domain/entity"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantEmbeddingCache stores one point per FAQ question, id = catalog index,
// tagged with the fingerprint of the question list.
type QdrantEmbeddingCache struct {
	client         *qdrant.Client
	collectionName string
}

func NewQdrantEmbeddingCache(client *qdrant.Client, collectionName string) *QdrantEmbeddingCache {
	return &QdrantEmbeddingCache{
		client:         client,
		collectionName: collectionName,
	}
}

func (s *QdrantEmbeddingCache) Load(ctx context.Context, fingerprint string) ([][]float32, error) {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return nil, fmt.Errorf("qdrant collection check: %w", err)
	}
	if !exists {
		return nil, entity.ErrCacheMiss
	}

	filter := &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatch("fingerprint", fingerprint)}}
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant count: %w", err)
	}
	if count == 0 {
		return nil, entity.ErrCacheMiss
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collectionName,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(count)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant scroll: %w", err)
	}
	return pointsToMatrix(points)
}

// Save replaces the collection contents with the given vectors.
func (s *QdrantEmbeddingCache) Save(ctx context.Context, fingerprint string, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("qdrant collection check: %w", err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collectionName); err != nil {
			return fmt.Errorf("failed to drop stale collection: %w", err)
		}
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(len(vectors[0])),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(vectors))
	for i, v := range vectors {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(v...),
			Payload: qdrant.NewValueMap(map[string]any{
				"fingerprint": fingerprint,
				"index":       i,
			}),
		}
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	return err
}

// pointsToMatrix orders points by their "index" payload and checks that the
// indices form 0..n-1 with no gaps.
func pointsToMatrix(points []*qdrant.RetrievedPoint) ([][]float32, error) {
	type row struct {
		index  int64
		vector []float32
	}
	rows := make([]row, 0, len(points))
	for _, p := range points {
		vo := p.GetVectors().GetVector()
		data := vo.GetDense().GetData()
		if len(data) == 0 {
			data = vo.GetData()
		}
		rows = append(rows, row{index: p.GetPayload()["index"].GetIntegerValue(), vector: data})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].index < rows[j].index })

	out := make([][]float32, len(rows))
	for i, r := range rows {
		if r.index != int64(i) || len(r.vector) == 0 {
			return nil, entity.ErrCacheMiss
		}
		out[i] = r.vector
	}
	return out, nil
}
