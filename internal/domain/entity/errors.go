package entity

import "errors"

// Standard domain errors
var (
	ErrDataLoad             = errors.New("faq source missing or malformed")
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	ErrTransientFallback    = errors.New("external fallback lookup failed")
	ErrResolution           = errors.New("query resolution failed")
	ErrCacheMiss            = errors.New("cache miss")
	ErrEmptyMessage         = errors.New("message must not be empty")
	ErrInvalidFeedback      = errors.New("feedback score must be between 1 and 5")
	ErrRateLimitExceeded    = errors.New("rate limit exceeded: too many requests")
)
