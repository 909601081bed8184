package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"faqbot/internal/domain/entity"
	"faqbot/internal/domain/repository"

	"github.com/rs/zerolog"
)

// Fingerprint identifies a question list as seen by a given embedder. Any
// edit to the FAQ questions, or a different embedder, changes it.
func Fingerprint(embedderName string, texts []string) string {
	h := sha256.New()
	h.Write([]byte(embedderName))
	for _, t := range texts {
		h.Write([]byte{0})
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizedQuestions applies Normalize to every question in catalog order.
func NormalizedQuestions(c *entity.Catalog) []string {
	out := make([]string, c.Len())
	for i, e := range c.Entries {
		out[i] = Normalize(e.Question)
	}
	return out
}

// BuildIndex attaches one vector per entry to the catalog, reading the cache
// when its fingerprint and shape match and embedding the whole question list
// once otherwise. Without a working embedder the catalog is left without
// vectors and ErrEmbeddingUnavailable is returned.
func BuildIndex(ctx context.Context, catalog *entity.Catalog, emb repository.Embedder, cache repository.EmbeddingCache, logger zerolog.Logger) error {
	if emb == nil {
		return entity.ErrEmbeddingUnavailable
	}
	texts := NormalizedQuestions(catalog)
	fp := Fingerprint(emb.Name(), texts)

	if cache != nil {
		vectors, err := cache.Load(ctx, fp)
		switch {
		case err == nil && validMatrix(vectors, len(texts)):
			attach(catalog, vectors)
			logger.Info().Int("rows", len(vectors)).Msg("loaded cached embeddings")
			return nil
		case err == nil:
			logger.Warn().Int("rows", len(vectors)).Int("questions", len(texts)).Msg("cached embeddings do not match catalog, regenerating")
		case !errors.Is(err, entity.ErrCacheMiss):
			logger.Warn().Err(err).Msg("embedding cache read failed, regenerating")
		}
	}

	logger.Info().Int("questions", len(texts)).Str("embedder", emb.Name()).Msg("generating embeddings")
	vectors, err := emb.CreateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrEmbeddingUnavailable, err)
	}
	if !validMatrix(vectors, len(texts)) {
		return fmt.Errorf("%w: embedder returned %d rows for %d questions", entity.ErrEmbeddingUnavailable, len(vectors), len(texts))
	}
	attach(catalog, vectors)

	if cache != nil {
		if err := cache.Save(ctx, fp, vectors); err != nil {
			logger.Warn().Err(err).Msg("failed to persist embeddings")
		}
	}
	return nil
}

func validMatrix(vectors [][]float32, rows int) bool {
	if len(vectors) != rows || rows == 0 {
		return false
	}
	dim := len(vectors[0])
	if dim == 0 {
		return false
	}
	for _, v := range vectors {
		if len(v) != dim {
			return false
		}
	}
	return true
}

func attach(catalog *entity.Catalog, vectors [][]float32) {
	for i := range catalog.Entries {
		catalog.Entries[i].Embedding = vectors[i]
	}
}
