package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/antoniamayaobrador/lisbon-agent/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// KeywordAccessor answers catalog queries by typo-tolerant keyword matching
// over dataset descriptions. It serves deployments without a vector store
// and keeps tests hermetic. Scoring is deterministic: more matched query
// terms rank higher, ties broken by catalog order.
type KeywordAccessor struct {
	datasets []models.DatasetDescriptor
}

func NewKeywordAccessor(datasets []models.DatasetDescriptor) *KeywordAccessor {
	return &KeywordAccessor{datasets: datasets}
}

func (a *KeywordAccessor) Query(ctx context.Context, text string, k int) ([]models.DatasetDescriptor, error) {
	terms := strings.Fields(strings.ToLower(text))

	type scored struct {
		desc  models.DatasetDescriptor
		score int
		pos   int
	}

	var candidates []scored
	for i, desc := range a.datasets {
		haystack := strings.ToLower(desc.Filename + " " + desc.Category + " " + desc.Description)
		words := strings.Fields(haystack)

		score := 0
		for _, term := range terms {
			if matchesAnyWord(term, words) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{desc: desc, score: score, pos: i})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos < candidates[j].pos
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]models.DatasetDescriptor, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, c.desc)
	}
	return results, nil
}

// matchesAnyWord accepts exact substrings and close fuzzy matches, so
// queries like "restuarants" still hit restaurant datasets.
func matchesAnyWord(term string, words []string) bool {
	for _, word := range words {
		if strings.Contains(word, term) {
			return true
		}
		if len(term) >= 4 && fuzzy.LevenshteinDistance(term, strings.Trim(word, ".,;:()")) <= 2 {
			return true
		}
	}
	return false
}

var _ Accessor = (*KeywordAccessor)(nil)
