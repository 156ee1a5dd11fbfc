package followRepo

import "context"

// FollowRepository defines data access for the follow graph.
type FollowRepository interface {
	// FollowingIDs returns every user id followerID follows.
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
	// IsFollowing reports whether followerID follows followingID.
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	// Follow creates the edge if it does not exist.
	Follow(ctx context.Context, followerID, followingID string) error
	// Unfollow removes the edge.
	Unfollow(ctx context.Context, followerID, followingID string) error
}
