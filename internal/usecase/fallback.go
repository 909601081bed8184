package usecase

import (
	"context"
	"fmt"
	"strings"
)

// StaticFallback answers from keyword categories and points the user at the
// relevant page of the college website.
type StaticFallback struct {
	siteURL    string
	confidence float64
}

func NewStaticFallback(siteURL string, confidence float64) *StaticFallback {
	return &StaticFallback{siteURL: strings.TrimRight(siteURL, "/"), confidence: confidence}
}

func (f *StaticFallback) Answer(_ context.Context, query string) (string, float64, error) {
	return f.Message(query), f.confidence, nil
}

// Message never fails; the resolver uses it to recover from other fallbacks.
func (f *StaticFallback) Message(query string) string {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, []string{"admission", "cutoff", "rank"}):
		return fmt.Sprintf("I don't have the latest admission details in my database. For the most current information, I'd recommend checking the official NIE website at %s/admissions/ or contacting the admissions office directly.", f.siteURL)
	case containsAny(q, []string{"placement", "package", "job"}):
		return fmt.Sprintf("I don't have the most recent placement statistics. For detailed information about companies and packages, check the official NIE website at %s/placements/ or contact the placement cell.", f.siteURL)
	case containsAny(q, []string{"hostel", "accommodation"}):
		return fmt.Sprintf("I don't have current hostel details. For the latest information about facilities and availability, visit %s/facilities/ or contact the hostel office.", f.siteURL)
	default:
		return fmt.Sprintf("I'm not sure about '%s' specifically. You might find more detailed information on the official NIE website at %s/ or by contacting the relevant department directly.", query, f.siteURL)
	}
}

func (f *StaticFallback) Confidence() float64 { return f.confidence }
