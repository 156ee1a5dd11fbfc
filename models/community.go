package models

import "time"

// Community is a creator-run group with a denormalised member counter.
type Community struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	CreatorID   string    `bson:"creator_id" json:"creatorId"`
	MemberCount int64     `bson:"member_count" json:"memberCount"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// CommunityMember records one membership row.
type CommunityMember struct {
	CommunityID string    `bson:"community_id" json:"communityId"`
	UserID      string    `bson:"user_id" json:"userId"`
	JoinedAt    time.Time `bson:"joined_at" json:"joinedAt"`
}
