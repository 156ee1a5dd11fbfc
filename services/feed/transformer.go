package feed

import (
	"creatorhub/models"
)

// Transform maps one stored row to the normalized feed entry. It performs no I/O.
func Transform(rec models.ContentRecord) (models.ContentItem, error) {
	item := models.ContentItem{
		ID:          rec.ID,
		AuthorID:    rec.CreatorID,
		CreatedAt:   rec.CreatedAt,
		MediaURLs:   []string{},
		AccessLevel: models.AccessPublic,
		Counters: models.Counters{
			Views:    nonNegative(rec.Views),
			Likes:    nonNegative(rec.Likes),
			Comments: nonNegative(rec.Comments),
		},
	}
	if rec.Author != nil {
		item.AuthorName = rec.Author.Name
		item.AuthorAvatar = rec.Author.AvatarURL
	}

	switch models.ContentType(rec.ContentType) {
	case models.ContentTypePost:
		item.Type = models.ContentTypePost
		item.Title = rec.Title
		item.Body = rec.Content
		item.MediaURLs = appendNonEmpty(item.MediaURLs, rec.MediaURLs...)
		if len(item.MediaURLs) == 0 {
			item.MediaURLs = appendNonEmpty(item.MediaURLs, rec.ImageURL)
		}
	case models.ContentTypeVideo:
		item.Type = models.ContentTypeVideo
		item.Title = rec.Title
		item.Body = rec.Description
		item.MediaURLs = appendNonEmpty(item.MediaURLs, rec.VideoURL, rec.ThumbnailURL)
	default:
		return models.ContentItem{}, &MappingError{RecordID: rec.ID, ContentType: rec.ContentType}
	}

	if rec.RequiredTier != "" || rec.AccessLevel == string(models.AccessTier) {
		item.AccessLevel = models.AccessTier
		item.RequiredTier = rec.RequiredTier
	}
	return item, nil
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

func nonNegative(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}
