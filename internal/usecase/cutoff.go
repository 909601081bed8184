package usecase

import (
	"context"
	"strings"

	"faqbot/internal/domain/entity"
)

const (
	examKCET   = "kcet"
	examCOMEDK = "comedk"
)

var staticCutoffTables = map[string]string{
	examCOMEDK: `COMEDK cutoffs for NIE (last available year):
- CSE (E085): 10182
- CI (E085): 12789
- ECE (E142): 29308
- EEE (E142): 101747
- ME (E142): 95259
- Civil Engineering (E142): 80212

Note: These are last year's figures and may change for current admissions.`,
	examKCET: `KCET cutoffs for NIE (last available year):
College code (E178):
- CSE: 8726
- CI: 11300

College code (E022):
- ECE (Aided): 95447
- ME (Aided): 42543
- Civil Engineering (Aided): 95447

College code (E056):
- EEE (Unaided): 35887
- ECE (Unaided): 48525
- ME (Unaided): 61681
- Civil Engineering (Unaided): 115835

Note: These are last year's figures and may change for current admissions.`,
}

// examIn returns the exam named in the query. COMEDK is checked first.
func examIn(query string) string {
	switch {
	case strings.Contains(query, examCOMEDK):
		return examCOMEDK
	case strings.Contains(query, examKCET):
		return examKCET
	default:
		return ""
	}
}

// cutoffFor tries the FAQ entries about this exam's cutoffs and falls back to
// the static table when none matches well enough.
func (r *Resolver) cutoffFor(ctx context.Context, exam, query string) entity.Resolution {
	var subset []int
	for i, q := range r.texts {
		if strings.Contains(q, exam) && strings.Contains(q, "cutoff") {
			subset = append(subset, i)
		}
	}
	if len(subset) > 0 {
		idx, score := r.score(ctx, query, subset)
		if idx >= 0 && score > r.cfg.CutoffMatchThreshold {
			return entity.Resolution{
				Response:   r.catalog.Entries[idx].Answer,
				Confidence: score,
				Tier:       entity.TierCutoff,
				Index:      idx,
			}
		}
	}
	return entity.Resolution{
		Response:   staticCutoffTables[exam],
		Confidence: r.cfg.StaticCutoffConfidence,
		Tier:       entity.TierCutoff,
		Index:      -1,
	}
}
