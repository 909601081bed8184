package usecase

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var responseTemplates = map[string][]string{
	"cutoff": {
		"Based on the latest data, here are the cutoffs:\n%s",
		"Here are the cutoff ranks at NIE:\n%s",
		"For admissions, you'll need these ranks:\n%s",
		"The competitive cutoff ranks are:\n%s",
	},
	"placements": {
		"NIE has excellent placement records! %s",
		"Placements at NIE are quite impressive: %s",
		"Here's the placement data you're looking for: %s",
		"NIE's placement statistics show: %s",
	},
	"hostel": {
		"Regarding hostel facilities at NIE: %s",
		"Here's what you need to know about hostels: %s",
		"NIE hostel information: %s",
		"For accommodation at NIE: %s",
	},
	"general": {
		"Great question! %s",
		"I'd be happy to help with that. %s",
		"Here's what you need to know: %s",
		"Let me provide you with the details: %s",
		"That's a common question! %s",
	},
}

// Varier wraps answers in phrasing templates. It never edits the answer
// itself, only the prose around it.
type Varier struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

// NewVarier builds a Varier applying a template with the given probability.
// A zero seed seeds from the clock.
func NewVarier(probability float64, seed uint64) *Varier {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Varier{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		probability: probability,
	}
}

func (v *Varier) Vary(answer string) string {
	if v == nil || v.probability <= 0 {
		return answer
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.probability < 1 && v.rng.Float64() >= v.probability {
		return answer
	}
	templates := responseTemplates[Category(answer)]
	return fmt.Sprintf(templates[v.rng.IntN(len(templates))], answer)
}

// Category picks a template family from the answer text.
func Category(answer string) string {
	a := strings.ToLower(answer)
	switch {
	case containsAny(a, []string{"cutoff", "rank"}):
		return "cutoff"
	case containsAny(a, []string{"placement", "package"}):
		return "placements"
	case containsAny(a, []string{"hostel", "accommodation"}):
		return "hostel"
	default:
		return "general"
	}
}
