package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiEmbedder calls the Gemini embedding endpoint. Batch requests are
// split into chunks of batchSize contents.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string // e.g., "text-embedding-004"
	batchSize int
}

// NewGeminiEmbedder builds a Vertex AI client when project is set and a
// Gemini Developer API client otherwise.
func NewGeminiEmbedder(ctx context.Context, project, location, apiKey, model string, batchSize int) (*GeminiEmbedder, error) {
	cc := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if project != "" {
		cc = &genai.ClientConfig{
			Project:  project,
			Location: location,
			Backend:  genai.BackendVertexAI,
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	return NewGeminiEmbedderFromClient(client, model, batchSize), nil
}

func NewGeminiEmbedderFromClient(c *genai.Client, model string, batchSize int) *GeminiEmbedder {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &GeminiEmbedder{
		client:    c,
		model:     model,
		batchSize: batchSize,
	}
}

func (e *GeminiEmbedder) Name() string {
	return "gemini:" + e.model
}

func (e *GeminiEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("gemini returned no embedding")
	}
	return res.Embeddings[0].Values, nil
}

func (e *GeminiEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range chunk(texts, e.batchSize) {
		contents := make([]*genai.Content, len(batch))
		for i, t := range batch {
			contents[i] = genai.NewContentFromText(t, genai.RoleUser)
		}
		res, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
		if err != nil {
			return nil, err
		}
		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(res.Embeddings), len(batch))
		}
		for _, emb := range res.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}

func chunk(texts []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}
