package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType identifies the variant of a feed entry.
type ContentType string

const (
	ContentTypePost              ContentType = "post"
	ContentTypeVideo             ContentType = "video"
	ContentTypeProfileSuggestion ContentType = "profile-suggestion"
)

// AccessLevel controls who may see a feed entry's media.
type AccessLevel string

const (
	AccessPublic AccessLevel = "public"
	AccessTier   AccessLevel = "tier"
)

// Counters holds engagement totals for a feed entry.
type Counters struct {
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

// ContentItem is the normalized entry rendered by feed clients.
type ContentItem struct {
	ID           string      `json:"id"`
	Type         ContentType `json:"type"`
	AuthorID     string      `json:"authorId"`
	AuthorName   string      `json:"authorName"`
	AuthorAvatar string      `json:"authorAvatar"`
	Title        string      `json:"title,omitempty"`
	Body         string      `json:"body,omitempty"`
	MediaURLs    []string    `json:"mediaUrls"`
	CreatedAt    time.Time   `json:"createdAt"`
	Counters     Counters    `json:"counters"`
	AccessLevel  AccessLevel `json:"accessLevel"`
	RequiredTier string      `json:"requiredTier,omitempty"`
	Locked       bool        `json:"locked,omitempty"`
}

// AuthorSnapshot is the author data joined onto a stored content row.
type AuthorSnapshot struct {
	Name      string `bson:"name" json:"name"`
	AvatarURL string `bson:"avatar_url" json:"avatar_url"`
}

// ContentRecord is a raw row of the content collection, covering both posts and videos.
type ContentRecord struct {
	OID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID           string             `bson:"id" json:"id"`
	CreatorID    string             `bson:"creator_id" json:"creator_id"`
	ContentType  string             `bson:"content_type" json:"content_type"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	CommunityID  string             `bson:"community_id,omitempty" json:"community_id,omitempty"`
	Title        string             `bson:"title,omitempty" json:"title,omitempty"`
	Content      string             `bson:"content,omitempty" json:"content,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	MediaURLs    []string           `bson:"media_urls,omitempty" json:"media_urls,omitempty"`
	ImageURL     string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	VideoURL     string             `bson:"video_url,omitempty" json:"video_url,omitempty"`
	ThumbnailURL string             `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	Views        int64              `bson:"views" json:"views"`
	Likes        int64              `bson:"likes" json:"likes"`
	Comments     int64              `bson:"comments_count" json:"comments_count"`
	AccessLevel  string             `bson:"access_level,omitempty" json:"access_level,omitempty"`
	RequiredTier string             `bson:"required_tier,omitempty" json:"required_tier,omitempty"`
	Author       *AuthorSnapshot    `bson:"author,omitempty" json:"author,omitempty"`
}

// StatusPublished marks content rows visible in feeds.
const StatusPublished = "published"

// CreateContentRequest is the body of a new post or video.
type CreateContentRequest struct {
	ContentType  string   `json:"contentType" binding:"required,oneof=post video"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Description  string   `json:"description"`
	MediaURLs    []string `json:"mediaUrls"`
	VideoURL     string   `json:"videoUrl"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	CommunityID  string   `json:"communityId"`
	RequiredTier string   `json:"requiredTier"`
}

// PrefetchedFeed is a ready-made first page together with the cursor that follows it.
type PrefetchedFeed struct {
	Items      []ContentItem `json:"items"`
	NextCursor string        `json:"nextCursor"`
	HasMore    bool          `json:"hasMore"`
}
