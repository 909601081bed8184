package entity

import "time"

// Tier tells the caller which resolution path produced a response.
type Tier string

const (
	TierHigh          Tier = "high"
	TierMedium        Tier = "medium"
	TierFallback      Tier = "fallback"
	TierClarification Tier = "clarification"
	TierCutoff        Tier = "cutoff"
	TierError         Tier = "error"
)

// Resolution is the outcome of a single turn. Index is -1 when no FAQ entry
// was used.
type Resolution struct {
	Response   string
	Confidence float64
	Tier       Tier
	Index      int
}

type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type ChatResponse struct {
	Response     string    `json:"response"`
	Confidence   float64   `json:"confidence"`
	ResponseTime float64   `json:"response_time"` // seconds
	MatchTier    Tier      `json:"match_tier"`
	Timestamp    time.Time `json:"timestamp"`
}

// Interaction is what the analytics collaborator receives per turn.
type Interaction struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Query        string        `json:"query"`
	Response     string        `json:"response"`
	Confidence   float64       `json:"confidence"`
	Tier         Tier          `json:"tier"`
	ResponseTime time.Duration `json:"response_time"`
	Timestamp    time.Time     `json:"timestamp"`
}

type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Score     int       `json:"score"` // 1..5
	Timestamp time.Time `json:"timestamp"`
}

type AnalyticsReport struct {
	TotalInteractions  int     `json:"total_interactions"`
	RecentInteractions int     `json:"recent_interactions"`
	AvgConfidence      float64 `json:"avg_confidence"`
	AvgResponseTime    float64 `json:"avg_response_time"`
	ErrorRate          float64 `json:"error_rate"`
	SuccessRate        float64 `json:"success_rate"`
	AvgQueryLength     float64 `json:"avg_query_length"`
	AvgResponseLength  float64 `json:"avg_response_length"`
	FeedbackCount      int     `json:"feedback_count"`
	AvgFeedbackScore   float64 `json:"avg_feedback_score,omitempty"`
}
