package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"faqbot/internal/domain/entity"
)

// bowEmbedder is a bag-of-words embedder over a vocabulary fixed at
// construction; unknown words are ignored.
type bowEmbedder struct {
	vocab     map[string]int
	batches   atomic.Int32
	failBatch bool
	failQuery bool
	panicky   bool
}

func newBowEmbedder(texts []string) *bowEmbedder {
	e := &bowEmbedder{vocab: map[string]int{}}
	for _, t := range texts {
		for _, tok := range tokenize(Normalize(t)) {
			if _, ok := e.vocab[tok]; !ok {
				e.vocab[tok] = len(e.vocab)
			}
		}
	}
	return e
}

func (e *bowEmbedder) Name() string { return "bow" }

func (e *bowEmbedder) embed(text string) []float32 {
	v := make([]float32, len(e.vocab))
	for _, tok := range tokenize(text) {
		if i, ok := e.vocab[tok]; ok {
			v[i]++
		}
	}
	return v
}

func (e *bowEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	if e.panicky {
		panic("embedder exploded")
	}
	if e.failQuery {
		return nil, errors.New("503 service unavailable")
	}
	return e.embed(text), nil
}

func (e *bowEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	if e.failBatch {
		return nil, errors.New("quota exhausted")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

type memHistory struct {
	mu    sync.Mutex
	turns map[string][]string
}

func newMemHistory() *memHistory { return &memHistory{turns: map[string][]string{}} }

func (h *memHistory) History(_ context.Context, userID string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.turns[userID]...), nil
}

func (h *memHistory) Append(_ context.Context, userID, query string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns[userID] = append(h.turns[userID], query)
	return nil
}

type stubFallback struct {
	resp string
	conf float64
	err  error
}

func (f stubFallback) Answer(context.Context, string) (string, float64, error) {
	return f.resp, f.conf, f.err
}

type memCache struct {
	entries map[string][][]float32
	saves   int
}

func newMemCache() *memCache { return &memCache{entries: map[string][][]float32{}} }

func (c *memCache) Load(_ context.Context, fp string) ([][]float32, error) {
	v, ok := c.entries[fp]
	if !ok {
		return nil, entity.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Save(_ context.Context, fp string, vectors [][]float32) error {
	c.saves++
	c.entries[fp] = vectors
	return nil
}

func testCatalog() *entity.Catalog {
	return &entity.Catalog{
		Categories: []string{"Admissions", "Hostel", "Placements"},
		Entries: []entity.FAQEntry{
			{Question: "What is the KCET cutoff for CSE?", Answer: "KCET CSE closing rank was 8726.", Category: "Admissions"},
			{Question: "What is the COMEDK cutoff for CSE?", Answer: "COMEDK CSE closing rank was 10182.", Category: "Admissions"},
			{Question: "Is hostel available?", Answer: "Yes, separate hostels for boys and girls.", Category: "Hostel"},
			{Question: "Does NIE provide placement training?", Answer: "NIE provides training in technical skills and soft skills.", Category: "Placements"},
			{Question: "Which companies visit NIE for placements?", Answer: "Infosys, Bosch and Mercedes-Benz recruit from NIE.", Category: "Placements"},
			{Question: "What is the highest package offered?", Answer: "The highest package last year was 44 LPA.", Category: "Placements"},
		},
	}
}
