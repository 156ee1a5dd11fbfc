package communityRepo

import (
	"context"
	"errors"
)

var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrAlreadyMember     = errors.New("already a member")
	ErrNotMember         = errors.New("not a member")
)

// CommunityRepository performs membership changes atomically with their counters.
type CommunityRepository interface {
	// Join adds userID to the community and returns the new member count.
	Join(ctx context.Context, communityID, userID string) (int64, error)
	// Leave removes userID from the community and returns the new member count.
	Leave(ctx context.Context, communityID, userID string) (int64, error)
}
