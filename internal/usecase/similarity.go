package usecase

import "math"

const similarityEpsilon = 1e-10

// CosineSimilarity returns (a·b)/(‖a‖‖b‖). Vectors of different length, or
// a zero vector, score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom < similarityEpsilon {
		return 0
	}
	return dot / denom
}

// BestMatch returns the index of the highest scoring candidate. Ties go to
// the lowest index. An empty candidate set yields (-1, 0).
func BestMatch(query []float32, candidates [][]float32) (int, float64) {
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		s := CosineSimilarity(query, c)
		if best == -1 || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}

// BestMatchIn scores only vectors[subset[i]] and returns a global index.
func BestMatchIn(query []float32, vectors [][]float32, subset []int) (int, float64) {
	candidates := make([][]float32, len(subset))
	for i, idx := range subset {
		candidates[i] = vectors[idx]
	}
	local, score := BestMatch(query, candidates)
	if local < 0 {
		return -1, 0
	}
	return subset[local], score
}

// OverlapScore is the Ochiai coefficient |A∩B| / sqrt(|A||B|) over word sets.
// It stands in for cosine similarity when no embedder is available.
func OverlapScore(query, text string) float64 {
	qset := tokenSet(query)
	tset := tokenSet(text)
	if len(qset) == 0 || len(tset) == 0 {
		return 0
	}
	inter := 0
	for t := range qset {
		if _, ok := tset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(tset)))
}

// BestOverlapIn mirrors BestMatchIn for keyword overlap.
func BestOverlapIn(query string, texts []string, subset []int) (int, float64) {
	best, bestScore := -1, 0.0
	for _, idx := range subset {
		s := OverlapScore(query, texts[idx])
		if best == -1 || s > bestScore {
			best, bestScore = idx, s
		}
	}
	return best, bestScore
}

func tokenSet(s string) map[string]struct{} {
	toks := tokenize(s)
	m := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		m[t] = struct{}{}
	}
	return m
}
