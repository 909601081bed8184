package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"faqbot/internal/domain/entity"
	"faqbot/internal/domain/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	resolver *Resolver
	embedder *bowEmbedder
	history  *memHistory
}

func newFixture(t *testing.T, fallback repository.Fallback, mutate func(*ResolverConfig)) resolverFixture {
	t.Helper()
	catalog := testCatalog()
	emb := newBowEmbedder(catalog.Questions())
	require.NoError(t, BuildIndex(context.Background(), catalog, emb, nil, zerolog.Nop()))

	cfg := DefaultResolverConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	h := newMemHistory()
	return resolverFixture{
		resolver: NewResolver(catalog, emb, h, fallback, nil, cfg, zerolog.Nop()),
		embedder: emb,
		history:  h,
	}
}

func TestResolve_ExactQuestion(t *testing.T) {
	f := newFixture(t, nil, nil)

	res := f.resolver.Resolve(context.Background(), "Is hostel available?", "u1")
	assert.Equal(t, "Yes, separate hostels for boys and girls.", res.Response)
	assert.InDelta(t, 1.0, res.Confidence, 1e-6)
	assert.Equal(t, entity.TierHigh, res.Tier)
	assert.Equal(t, 2, res.Index)
	assert.True(t, f.resolver.Stats().Semantic)
}

func TestResolve_GenericCutoffAsksForExam(t *testing.T) {
	f := newFixture(t, nil, nil)

	res := f.resolver.Resolve(context.Background(), "tell me about cutoffs", "u1")
	assert.Equal(t, clarificationPrompt, res.Response)
	assert.Equal(t, 0.8, res.Confidence)
	assert.Equal(t, entity.TierClarification, res.Tier)

	h, _ := f.history.History(context.Background(), "u1")
	assert.Equal(t, []string{"tell me about cutoffs"}, h)
}

func TestResolve_BranchWordSkipsClarification(t *testing.T) {
	f := newFixture(t, nil, nil)

	res := f.resolver.Resolve(context.Background(), "cutoff for cse", "u1")
	assert.NotEqual(t, entity.TierClarification, res.Tier)
}

func TestResolve_FollowUpUsesStaticTable(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	f.resolver.Resolve(ctx, "what are the cutoffs", "u2")
	res := f.resolver.Resolve(ctx, "COMEDK please", "u2")

	assert.Contains(t, res.Response, "COMEDK cutoffs for NIE")
	assert.Equal(t, 0.8, res.Confidence)
	assert.Equal(t, entity.TierCutoff, res.Tier)
	assert.Equal(t, -1, res.Index)

	h, _ := f.history.History(ctx, "u2")
	assert.Len(t, h, 1, "exam follow-up is not recorded")
}

func TestResolve_BareExamAfterCutoffQuestion(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	f.resolver.Resolve(ctx, "what are the cutoffs", "u5")
	res := f.resolver.Resolve(ctx, "kcet", "u5")

	assert.Contains(t, res.Response, "KCET")
	assert.NotContains(t, res.Response, "COMEDK")
	assert.Equal(t, entity.TierCutoff, res.Tier)
}

func TestResolve_FollowUpUsesMatchingFAQ(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	f.resolver.Resolve(ctx, "what are the cutoffs", "u3")
	res := f.resolver.Resolve(ctx, "kcet cutoff for cse", "u3")

	assert.Equal(t, "KCET CSE closing rank was 8726.", res.Response)
	assert.Equal(t, entity.TierCutoff, res.Tier)
	assert.Equal(t, 0, res.Index)
	assert.Greater(t, res.Confidence, 0.5)
}

func TestResolve_DirectExamQuestion(t *testing.T) {
	f := newFixture(t, nil, nil)

	res := f.resolver.Resolve(context.Background(), "kcet cutoff for cse", "u4")
	assert.Equal(t, "KCET CSE closing rank was 8726.", res.Response)
	assert.Equal(t, entity.TierHigh, res.Tier)
}

func TestResolve_PlacementSkipsBoilerplate(t *testing.T) {
	f := newFixture(t, nil, nil)

	res := f.resolver.Resolve(context.Background(), "placement training at nie", "u1")
	assert.Equal(t, 4, res.Index)
	assert.Equal(t, entity.TierMedium, res.Tier)
	assert.NotContains(t, res.Response, "training in technical skills")
}

func TestResolve_SingleThresholdMode(t *testing.T) {
	f := newFixture(t, nil, func(c *ResolverConfig) { c.MediumThreshold = 0 })

	res := f.resolver.Resolve(context.Background(), "placement training at nie", "u1")
	assert.Equal(t, entity.TierFallback, res.Tier)
	assert.Contains(t, res.Response, "https://nie.ac.in/placements/")
	assert.Equal(t, 0.3, res.Confidence)
}

func TestResolve_LowScoreFallsBack(t *testing.T) {
	f := newFixture(t, nil, nil)

	res := f.resolver.Resolve(context.Background(), "parking slots", "u1")
	assert.Equal(t, entity.TierFallback, res.Tier)
	assert.Equal(t, 0.3, res.Confidence)
	assert.Equal(t, -1, res.Index)
	assert.Contains(t, res.Response, "'parking slots'")
}

func TestResolve_ExternalFallback(t *testing.T) {
	f := newFixture(t, stubFallback{resp: "from the website", conf: 0.6}, nil)

	res := f.resolver.Resolve(context.Background(), "parking slots", "u1")
	assert.Equal(t, "from the website", res.Response)
	assert.Equal(t, 0.6, res.Confidence)
	assert.Equal(t, entity.TierFallback, res.Tier)
}

func TestResolve_FallbackErrorUsesStaticMessage(t *testing.T) {
	f := newFixture(t, stubFallback{err: fmt.Errorf("%w: site down", entity.ErrTransientFallback)}, nil)

	res := f.resolver.Resolve(context.Background(), "admission documents", "u1")
	assert.Contains(t, res.Response, "https://nie.ac.in/admissions/")
	assert.Equal(t, 0.3, res.Confidence)
}

func TestResolve_PanicBecomesApology(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.embedder.panicky = true

	res := f.resolver.Resolve(context.Background(), "is hostel available", "u1")
	assert.Equal(t, apologyMessage, res.Response)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, entity.TierError, res.Tier)
}

func TestResolve_CancelledContext(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.resolver.Resolve(ctx, "is hostel available", "u1")
	assert.Equal(t, entity.TierError, res.Tier)
}

func TestResolve_QueryEmbeddingErrorDegradesToKeywords(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.embedder.failQuery = true

	res := f.resolver.Resolve(context.Background(), "Is hostel available?", "u1")
	assert.Equal(t, entity.TierHigh, res.Tier)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
}

func TestResolve_KeywordMode(t *testing.T) {
	r := NewResolver(testCatalog(), nil, nil, nil, nil, DefaultResolverConfig(), zerolog.Nop())
	assert.False(t, r.Stats().Semantic)
	assert.Equal(t, 6, r.Stats().Questions)

	res := r.Resolve(context.Background(), "Which companies visit NIE for placements?", "")
	assert.Equal(t, 4, res.Index)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
}

func TestResolve_EmptyUserIDIsDefault(t *testing.T) {
	f := newFixture(t, nil, nil)

	f.resolver.Resolve(context.Background(), "is hostel available", "")
	h, _ := f.history.History(context.Background(), DefaultUserID)
	assert.Equal(t, []string{"is hostel available"}, h)
}

func TestResolve_Concurrent(t *testing.T) {
	f := newFixture(t, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := f.resolver.Resolve(context.Background(), "Is hostel available?", fmt.Sprintf("user-%d", i))
			assert.Equal(t, 2, res.Index)
		}(i)
	}
	wg.Wait()
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.2))
	assert.Equal(t, 1.0, clamp01(1.0000001))
	assert.Equal(t, 0.4, clamp01(0.4))
}
