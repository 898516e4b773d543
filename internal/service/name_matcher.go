package service

// NameMatcher scores attendance names against registry names by word overlap.
type NameMatcher struct {
	stopWords map[string]bool
	// Threshold is the minimum Jaccard score for an accepted match.
	Threshold float64
	// ShortNameWords accepts any overlap for queries with at most this many words.
	ShortNameWords int
}

// NewNameMatcher normalizes the stop words so they compare against name tokens
func NewNameMatcher(stopWords []string, threshold float64, shortNameWords int) *NameMatcher {
	set := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		if w = Normalize(w); w != "" {
			set[w] = true
		}
	}
	return &NameMatcher{stopWords: set, Threshold: threshold, ShortNameWords: shortNameWords}
}

// MatchScore is the outcome of scoring one query
type MatchScore struct {
	// Index of the best candidate, -1 when no candidate shares a word
	Index int
	Score float64
	Exact bool
	// Words is the size of the query's filtered word set
	Words int
}

// Score finds the best candidate for query. An exact normalized match wins
// immediately; otherwise the first candidate with the highest Jaccard score
// over filtered word sets is kept. Candidates sharing no word never score.
func (m *NameMatcher) Score(query string, candidates []string) MatchScore {
	normalizedQuery := Normalize(query)
	queryWords := toSet(NameTokens(query, m.stopWords))
	result := MatchScore{Index: -1, Words: len(queryWords)}

	for i, candidate := range candidates {
		normalized := Normalize(candidate)
		if normalized == "" {
			continue
		}
		if normalized == normalizedQuery {
			return MatchScore{Index: i, Score: 1, Exact: true, Words: len(queryWords)}
		}

		score, intersection := jaccard(queryWords, toSet(NameTokens(candidate, m.stopWords)))
		if intersection > 0 && score > result.Score {
			result.Index = i
			result.Score = score
		}
	}
	return result
}

// Accept applies the acceptance rule to a score
func (m *NameMatcher) Accept(s MatchScore) bool {
	if s.Index < 0 {
		return false
	}
	if s.Exact {
		return true
	}
	return s.Score >= m.Threshold || (s.Score > 0 && s.Words <= m.ShortNameWords)
}

// Match returns the index of the accepted candidate for query
func (m *NameMatcher) Match(query string, candidates []string) (int, bool) {
	s := m.Score(query, candidates)
	if !m.Accept(s) {
		return -1, false
	}
	return s.Index, true
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// jaccard returns |a∩b| / |a∪b| and the intersection size
func jaccard(a, b map[string]bool) (float64, int) {
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0, 0
	}
	return float64(intersection) / float64(union), intersection
}
