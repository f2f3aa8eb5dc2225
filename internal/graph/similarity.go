package graph

import "math"

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BestMatch picks the candidate annotation whose stored embedding is
// closest to the query vector. Candidates without an embedding are skipped.
func BestMatch(query []float32, candidates []Annotation) (Annotation, float64, bool) {
	best := Annotation{}
	bestScore := math.Inf(-1)
	found := false
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		score := Cosine(query, c.Embedding)
		if !found || score > bestScore {
			best = c
			bestScore = score
			found = true
		}
	}
	if !found {
		return Annotation{}, 0, false
	}
	return best, bestScore, true
}
