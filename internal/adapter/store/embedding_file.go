package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"faqbot/internal/domain/entity"
)

type embeddingFile struct {
	Fingerprint string      `json:"fingerprint"`
	Rows        int         `json:"rows"`
	Vectors     [][]float32 `json:"vectors"`
}

// FileEmbeddingCache keeps the question vectors in one JSON document next to
// the fingerprint of the question list they were built from.
type FileEmbeddingCache struct {
	path string
}

func NewFileEmbeddingCache(path string) *FileEmbeddingCache {
	return &FileEmbeddingCache{path: path}
}

func (c *FileEmbeddingCache) Load(_ context.Context, fingerprint string) ([][]float32, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read embedding cache: %w", err)
	}
	var doc embeddingFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode embedding cache: %w", err)
	}
	if doc.Fingerprint != fingerprint || doc.Rows != len(doc.Vectors) {
		return nil, entity.ErrCacheMiss
	}
	return doc.Vectors, nil
}

func (c *FileEmbeddingCache) Save(_ context.Context, fingerprint string, vectors [][]float32) error {
	data, err := json.Marshal(embeddingFile{Fingerprint: fingerprint, Rows: len(vectors), Vectors: vectors})
	if err != nil {
		return fmt.Errorf("encode embedding cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write embedding cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}
