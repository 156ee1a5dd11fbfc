package feed

import (
	"fmt"

	"creatorhub/models"
)

// DefaultSuggestionStride is how many real items separate two profile suggestions.
const DefaultSuggestionStride = 5

// SuggestionInserter interleaves synthetic "suggested profile" entries into a feed.
type SuggestionInserter struct {
	Stride int
}

// Insert drops any suggestion entries already present, then places one suggestion after
// every Stride real items, counting real items from startIndex. Real items keep their
// relative order, so applying Insert to its own output changes nothing.
func (s SuggestionInserter) Insert(items []models.ContentItem, startIndex int) []models.ContentItem {
	stride := s.Stride
	if stride <= 0 {
		stride = DefaultSuggestionStride
	}
	if startIndex < 0 {
		startIndex = 0
	}

	out := make([]models.ContentItem, 0, len(items)+len(items)/stride)
	seen := 0
	for _, item := range items {
		if item.Type == models.ContentTypeProfileSuggestion {
			continue
		}
		out = append(out, item)
		seen++
		if seen > startIndex && (seen-startIndex)%stride == 0 {
			out = append(out, suggestionAt(seen))
		}
	}
	return out
}

// suggestionAt builds the placeholder that follows the n-th real item.
func suggestionAt(n int) models.ContentItem {
	return models.ContentItem{
		ID:          fmt.Sprintf("suggestion-%d", n),
		Type:        models.ContentTypeProfileSuggestion,
		MediaURLs:   []string{},
		AccessLevel: models.AccessPublic,
	}
}
