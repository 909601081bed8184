package store

import (
	"context"
	"testing"

	"faqbot/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryInteractionLog_Bounded(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryInteractionLog(3, 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Record(ctx, entity.Interaction{Query: string(rune('a' + i))}))
		require.NoError(t, l.RecordFeedback(ctx, entity.Feedback{Score: i + 1}))
	}

	n, _ := l.Count(ctx)
	assert.Equal(t, 3, n)
	recent, _ := l.Recent(ctx, 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].Query)
	assert.Equal(t, "e", recent[1].Query)

	all, _ := l.Recent(ctx, 100)
	assert.Len(t, all, 3)

	fc, _ := l.FeedbackCount(ctx)
	assert.Equal(t, 2, fc)
	fb, _ := l.RecentFeedback(ctx, 0)
	assert.Equal(t, []int{4, 5}, []int{fb[0].Score, fb[1].Score})
}
