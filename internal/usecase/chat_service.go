package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"faqbot/internal/domain/entity"
	"faqbot/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	recentInteractionWindow = 100
	recentFeedbackWindow    = 50
	lowConfidence           = 0.5
)

// ChatService is the entry point for one chat turn: rate limiting, resolution,
// then bookkeeping off the request path.
type ChatService struct {
	resolver       *Resolver
	limiter        repository.RequestLimiter
	interactions   repository.InteractionLog
	successAtLeast float64
	logger         zerolog.Logger
	now            func() time.Time
}

func NewChatService(res *Resolver, lim repository.RequestLimiter, interactions repository.InteractionLog, successAtLeast float64, logger zerolog.Logger) *ChatService {
	return &ChatService{
		resolver:       res,
		limiter:        lim,
		interactions:   interactions,
		successAtLeast: successAtLeast,
		logger:         logger.With().Str("component", "chat").Logger(),
		now:            time.Now,
	}
}

func (s *ChatService) Execute(ctx context.Context, req entity.ChatRequest) (*entity.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, entity.ErrEmptyMessage
	}
	userID := req.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	// 1. Check rate limits; a broken limiter must not take the bot down.
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("rate limiter check failed, allowing request")
		} else if !allowed {
			return nil, entity.ErrRateLimitExceeded
		}
	}

	// 2. Resolve
	start := s.now()
	res := s.resolver.Resolve(ctx, message, userID)
	elapsed := s.now().Sub(start)

	s.logger.Info().
		Str("user_id", userID).
		Str("query", message).
		Str("tier", string(res.Tier)).
		Float64("confidence", res.Confidence).
		Dur("response_time", elapsed).
		Msg("chat turn resolved")

	// 3. Background: record the interaction
	if s.interactions != nil {
		in := entity.Interaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Query:        message,
			Response:     res.Response,
			Confidence:   res.Confidence,
			Tier:         res.Tier,
			ResponseTime: elapsed,
			Timestamp:    start,
		}
		go func() {
			// The request context may be gone by the time this runs.
			if err := s.interactions.Record(context.Background(), in); err != nil {
				s.logger.Warn().Err(err).Msg("failed to record interaction")
			}
		}()
	}

	return &entity.ChatResponse{
		Response:     res.Response,
		Confidence:   res.Confidence,
		ResponseTime: elapsed.Seconds(),
		MatchTier:    res.Tier,
		Timestamp:    start,
	}, nil
}

func (s *ChatService) Feedback(ctx context.Context, fb entity.Feedback) error {
	if fb.Score < 1 || fb.Score > 5 {
		return entity.ErrInvalidFeedback
	}
	if fb.UserID == "" {
		fb.UserID = DefaultUserID
	}
	fb.ID = uuid.NewString()
	fb.Timestamp = s.now()
	if s.interactions == nil {
		return nil
	}
	if err := s.interactions.RecordFeedback(ctx, fb); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	return nil
}

// Analytics summarises the most recent interactions and feedback.
func (s *ChatService) Analytics(ctx context.Context) (*entity.AnalyticsReport, error) {
	report := &entity.AnalyticsReport{}
	if s.interactions == nil {
		return report, nil
	}

	total, err := s.interactions.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}
	recent, err := s.interactions.Recent(ctx, recentInteractionWindow)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	report.TotalInteractions = total
	report.RecentInteractions = len(recent)

	if n := float64(len(recent)); n > 0 {
		var conf, rt, ql, rl float64
		var errs, ok int
		for _, in := range recent {
			conf += in.Confidence
			rt += in.ResponseTime.Seconds()
			ql += float64(len(in.Query))
			rl += float64(len(in.Response))
			if in.Confidence < lowConfidence {
				errs++
			}
			if in.Confidence >= s.successAtLeast {
				ok++
			}
		}
		report.AvgConfidence = conf / n
		report.AvgResponseTime = rt / n
		report.AvgQueryLength = ql / n
		report.AvgResponseLength = rl / n
		report.ErrorRate = float64(errs) / n
		report.SuccessRate = float64(ok) / n
	}

	fbCount, err := s.interactions.FeedbackCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	report.FeedbackCount = fbCount
	feedback, err := s.interactions.RecentFeedback(ctx, recentFeedbackWindow)
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	if len(feedback) > 0 {
		var sum float64
		for _, fb := range feedback {
			sum += float64(fb.Score)
		}
		report.AvgFeedbackScore = sum / float64(len(feedback))
	}
	return report, nil
}

func (s *ChatService) Stats() ResolverStats { return s.resolver.Stats() }
