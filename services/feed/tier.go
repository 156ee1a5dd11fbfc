package feed

import (
	"strings"

	"creatorhub/models"
)

// TierPolicy ranks subscription tiers and hides media the viewer has not paid for.
type TierPolicy struct {
	rank map[string]int
}

// NewTierPolicy takes tiers ordered from lowest to highest.
func NewTierPolicy(order []string) TierPolicy {
	rank := make(map[string]int, len(order))
	for i, t := range order {
		rank[strings.ToLower(strings.TrimSpace(t))] = i + 1
	}
	return TierPolicy{rank: rank}
}

// Rank is 0 for no tier or an unknown one.
func (p TierPolicy) Rank(tier string) int {
	return p.rank[strings.ToLower(strings.TrimSpace(tier))]
}

// Allows reports whether a viewer on viewerTier may see content requiring required.
func (p TierPolicy) Allows(viewerTier, required string) bool {
	if required == "" {
		return true
	}
	need := p.Rank(required)
	if need == 0 {
		// Unknown tiers stay locked for everyone but the author.
		return false
	}
	return p.Rank(viewerTier) >= need
}

// Apply returns a copy of items with locked entries stripped of their media. Authors
// always see their own content.
func (p TierPolicy) Apply(items []models.ContentItem, viewerID, viewerTier string) []models.ContentItem {
	out := make([]models.ContentItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.AccessLevel != models.AccessTier || item.AuthorID == viewerID {
			continue
		}
		if !p.Allows(viewerTier, item.RequiredTier) {
			out[i].Locked = true
			out[i].MediaURLs = []string{}
		}
	}
	return out
}
