package usecase

import (
	"context"
	"fmt"
	"strings"

	"faqbot/internal/domain/entity"
	"faqbot/internal/domain/repository"

	"github.com/rs/zerolog"
)

const DefaultUserID = "default"

const (
	clarificationPrompt = "I'd be happy to help with cutoff information! Could you please specify which exam you're interested in - KCET or COMEDK? This will help me provide you with the most accurate and relevant cutoff data."
	apologyMessage      = "Sorry, I encountered a technical issue while processing your request. Please try again in a moment."
)

var (
	cutoffKeywords = []string{"cutoff", "cut off", "cut-off", "rank"}
	branchKeywords = []string{"cse", "ece", "eee", "me", "civil"}

	placementPhrases = []string{
		"which companies visit", "companies visit", "recruiters", "placement statistics",
		"how are placements", "highest package", "average package", "package",
	}
	boilerplateAnswer = "training in technical skills"
)

type ResolverConfig struct {
	HighThreshold           float64
	MediumThreshold         float64 // <= 0 or >= HighThreshold disables the medium tier
	CutoffMatchThreshold    float64
	ClarificationConfidence float64
	StaticCutoffConfidence  float64
	FallbackConfidence      float64
	SiteURL                 string
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		HighThreshold:           0.5,
		MediumThreshold:         0.2,
		CutoffMatchThreshold:    0.5,
		ClarificationConfidence: 0.8,
		StaticCutoffConfidence:  0.8,
		FallbackConfidence:      0.3,
		SiteURL:                 "https://nie.ac.in",
	}
}

type ResolverStats struct {
	Questions  int  `json:"questions"`
	Categories int  `json:"categories"`
	Semantic   bool `json:"semantic"`
}

// Resolver picks a response for one user turn. The catalog and its vectors
// are read-only after construction and shared by all requests; the only
// mutable state is the conversation store.
type Resolver struct {
	catalog  *entity.Catalog
	texts    []string
	vectors  [][]float32
	embedder repository.Embedder
	history  repository.ConversationStore
	fallback repository.Fallback
	static   *StaticFallback
	varier   *Varier
	cfg      ResolverConfig
	logger   zerolog.Logger
}

// NewResolver builds a resolver over an indexed catalog. A nil embedder, or a
// catalog without vectors, puts it in keyword-overlap mode. A nil fallback
// uses the static keyword messages.
func NewResolver(catalog *entity.Catalog, emb repository.Embedder, history repository.ConversationStore, fallback repository.Fallback, varier *Varier, cfg ResolverConfig, logger zerolog.Logger) *Resolver {
	r := &Resolver{
		catalog:  catalog,
		texts:    NormalizedQuestions(catalog),
		embedder: emb,
		history:  history,
		fallback: fallback,
		static:   NewStaticFallback(cfg.SiteURL, cfg.FallbackConfidence),
		varier:   varier,
		cfg:      cfg,
		logger:   logger.With().Str("component", "resolver").Logger(),
	}
	if catalog.HasEmbeddings() {
		r.vectors = make([][]float32, catalog.Len())
		for i, e := range catalog.Entries {
			r.vectors[i] = e.Embedding
		}
	}
	return r
}

func (r *Resolver) Stats() ResolverStats {
	return ResolverStats{
		Questions:  r.catalog.Len(),
		Categories: len(r.catalog.Categories),
		Semantic:   r.semantic(),
	}
}

func (r *Resolver) semantic() bool {
	return r.embedder != nil && r.vectors != nil
}

// Resolve never fails: any error or panic inside the pipeline becomes the
// apology message with confidence 0.
func (r *Resolver) Resolve(ctx context.Context, message, userID string) (res entity.Resolution) {
	if userID == "" {
		userID = DefaultUserID
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Str("user_id", userID).Interface("panic", p).Msg("resolution panicked")
			res = apology()
		}
	}()

	res, err := r.resolve(ctx, message, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("resolution failed")
		return apology()
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, message, userID string) (entity.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return entity.Resolution{}, fmt.Errorf("%w: %v", entity.ErrResolution, err)
	}
	cleaned := Normalize(message)
	history := r.recall(ctx, userID)

	// 1. Follow-up to a cutoff question naming the exam.
	if n := len(history); n > 0 && containsAny(strings.ToLower(history[n-1]), cutoffKeywords) {
		if exam := examIn(cleaned); exam != "" {
			return r.cutoffFor(ctx, exam, cleaned), nil
		}
	}

	// 2. Generic cutoff question: ask which exam instead of guessing.
	if containsAny(cleaned, cutoffKeywords) && examIn(cleaned) == "" && !hasWord(cleaned, branchKeywords) {
		r.remember(ctx, userID, message)
		return entity.Resolution{
			Response:   clarificationPrompt,
			Confidence: r.cfg.ClarificationConfidence,
			Tier:       entity.TierClarification,
			Index:      -1,
		}, nil
	}

	// 3 & 4. Narrow, then score.
	idx, score := r.score(ctx, cleaned, r.candidates(cleaned))
	defer r.remember(ctx, userID, message)

	switch {
	case idx >= 0 && score >= r.cfg.HighThreshold:
		return r.answer(idx, score, entity.TierHigh), nil
	case idx >= 0 && r.mediumTier() && score >= r.cfg.MediumThreshold:
		r.logger.Debug().Float64("score", score).Int("index", idx).Msg("medium confidence match")
		return r.answer(idx, score, entity.TierMedium), nil
	default:
		return r.fallbackAnswer(ctx, cleaned), nil
	}
}

func (r *Resolver) mediumTier() bool {
	return r.cfg.MediumThreshold > 0 && r.cfg.MediumThreshold < r.cfg.HighThreshold
}

func (r *Resolver) answer(idx int, score float64, tier entity.Tier) entity.Resolution {
	return entity.Resolution{
		Response:   r.varier.Vary(r.catalog.Entries[idx].Answer),
		Confidence: clamp01(score),
		Tier:       tier,
		Index:      idx,
	}
}

// candidates narrows placement questions to the detailed entries, skipping
// the generic "training" answer. It returns every index when narrowing finds
// nothing.
func (r *Resolver) candidates(cleaned string) []int {
	if strings.Contains(cleaned, "placement") {
		var narrowed []int
		for i, q := range r.texts {
			if containsAny(q, placementPhrases) && !r.isBoilerplate(i) {
				narrowed = append(narrowed, i)
			}
		}
		if len(narrowed) == 0 {
			for i, q := range r.texts {
				if strings.Contains(q, "placement") && !r.isBoilerplate(i) {
					narrowed = append(narrowed, i)
				}
			}
		}
		if len(narrowed) > 0 {
			return narrowed
		}
	}
	all := make([]int, len(r.texts))
	for i := range all {
		all[i] = i
	}
	return all
}

func (r *Resolver) isBoilerplate(i int) bool {
	return strings.Contains(strings.ToLower(r.catalog.Entries[i].Answer), boilerplateAnswer)
}

// score ranks subset against the query by cosine similarity, or by keyword
// overlap when embeddings are unavailable.
func (r *Resolver) score(ctx context.Context, cleaned string, subset []int) (int, float64) {
	if r.semantic() {
		vec, err := r.embedder.CreateEmbedding(ctx, cleaned)
		if err == nil {
			return BestMatchIn(vec, r.vectors, subset)
		}
		r.logger.Warn().Err(err).Msg("query embedding failed, using keyword overlap")
	}
	return BestOverlapIn(cleaned, r.texts, subset)
}

func (r *Resolver) fallbackAnswer(ctx context.Context, cleaned string) entity.Resolution {
	if r.fallback != nil {
		resp, conf, err := r.fallback.Answer(ctx, cleaned)
		if err == nil {
			return entity.Resolution{Response: resp, Confidence: clamp01(conf), Tier: entity.TierFallback, Index: -1}
		}
		r.logger.Warn().Err(err).Msg("external fallback failed, using static message")
	}
	return entity.Resolution{
		Response:   r.static.Message(cleaned),
		Confidence: r.static.Confidence(),
		Tier:       entity.TierFallback,
		Index:      -1,
	}
}

func (r *Resolver) recall(ctx context.Context, userID string) []string {
	if r.history == nil {
		return nil
	}
	h, err := r.history.History(ctx, userID)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("history unavailable")
		return nil
	}
	return h
}

func (r *Resolver) remember(ctx context.Context, userID, query string) {
	if r.history == nil {
		return
	}
	if err := r.history.Append(ctx, userID, query); err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to append history")
	}
}

func apology() entity.Resolution {
	return entity.Resolution{Response: apologyMessage, Confidence: 0, Tier: entity.TierError, Index: -1}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
