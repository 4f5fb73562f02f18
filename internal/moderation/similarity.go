package moderation

// Two-tier acceptance rule for duplicate pairs: a small overlap needs a
// higher similarity score, a larger overlap is accepted at a looser bar.
const (
	strictOverlapCount = 2
	strictMinScore     = 0.20
	looseOverlapCount  = 3
	looseMinScore      = 0.12
)

// Similarity is the Jaccard score of two keyword sets plus the literal
// overlap for display and audit.
type Similarity struct {
	Score   float64  `json:"score"`
	Overlap []string `json:"overlap"`
}

// Jaccard computes |A∩B| / |A∪B| over two keyword slices treated as sets.
// Both empty yields 0. The overlap preserves the ranking order of the first
// argument, keeping the result deterministic.
func Jaccard(a, b []string) Similarity {
	if len(a) == 0 && len(b) == 0 {
		return Similarity{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, token := range b {
		setB[token] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a))
	var overlap []string
	for _, token := range a {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if _, ok := setB[token]; ok {
			overlap = append(overlap, token)
		}
	}

	unionSize := len(seen) + len(setB) - len(overlap)
	if unionSize == 0 {
		return Similarity{}
	}

	return Similarity{
		Score:   float64(len(overlap)) / float64(unionSize),
		Overlap: overlap,
	}
}

// PairAccepted applies the acceptance gate to a scored candidate pair.
func PairAccepted(overlapCount int, score float64) bool {
	if overlapCount >= strictOverlapCount && score >= strictMinScore {
		return true
	}
	return overlapCount >= looseOverlapCount && score >= looseMinScore
}
