// models/user.go
package models

import "time"

// User is the subset of a platform profile the service reads and writes.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Username  string    `bson:"username" json:"username"`
	Name      string    `bson:"name" json:"name"`
	AvatarURL string    `bson:"avatar_url" json:"avatarUrl"`
	Tier      string    `bson:"tier,omitempty" json:"tier,omitempty"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Follow records that FollowerID follows FollowingID.
type Follow struct {
	FollowerID  string    `bson:"follower_id" json:"followerId"`
	FollowingID string    `bson:"following_id" json:"followingId"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
