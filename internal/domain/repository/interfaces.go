package repository

import (
	"context"

	"faqbot/internal/domain/entity"
)

type Embedder interface {
	Name() string
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingCache persists question vectors. Load returns entity.ErrCacheMiss
// when nothing is stored under the fingerprint.
type EmbeddingCache interface {
	Load(ctx context.Context, fingerprint string) ([][]float32, error)
	Save(ctx context.Context, fingerprint string, vectors [][]float32) error
}

// ConversationStore keeps raw queries per user, most recent last.
type ConversationStore interface {
	History(ctx context.Context, userID string) ([]string, error)
	Append(ctx context.Context, userID, query string) error
}

type RequestLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// Fallback answers queries the FAQ could not. Confidence is in [0,1].
type Fallback interface {
	Answer(ctx context.Context, query string) (string, float64, error)
}

type InteractionLog interface {
	Record(ctx context.Context, in entity.Interaction) error
	Recent(ctx context.Context, n int) ([]entity.Interaction, error)
	Count(ctx context.Context) (int, error)
	RecordFeedback(ctx context.Context, fb entity.Feedback) error
	RecentFeedback(ctx context.Context, n int) ([]entity.Feedback, error)
	FeedbackCount(ctx context.Context) (int, error)
}
