package social

import (
	"context"
	"errors"

	communityRepo "creatorhub/database/repository/community"
	followRepo "creatorhub/database/repository/follow"

	"go.uber.org/zap"
)

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("cannot follow yourself")

// SocialService covers follows and community membership.
type SocialService interface {
	Follow(ctx context.Context, followerID, creatorID string) error
	Unfollow(ctx context.Context, followerID, creatorID string) error
	JoinCommunity(ctx context.Context, communityID, userID string) (int64, error)
	LeaveCommunity(ctx context.Context, communityID, userID string) (int64, error)
}

type DefaultSocialService struct {
	follows     followRepo.FollowRepository
	communities communityRepo.CommunityRepository
	logger      *zap.Logger
}

func NewSocialService(follows followRepo.FollowRepository, communities communityRepo.CommunityRepository, logger *zap.Logger) *DefaultSocialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultSocialService{follows: follows, communities: communities, logger: logger}
}

func (s *DefaultSocialService) Follow(ctx context.Context, followerID, creatorID string) error {
	if followerID == creatorID {
		return ErrSelfFollow
	}
	if err := s.follows.Follow(ctx, followerID, creatorID); err != nil {
		return err
	}
	s.logger.Info("follow created", zap.String("follower", followerID), zap.String("creator", creatorID))
	return nil
}

func (s *DefaultSocialService) Unfollow(ctx context.Context, followerID, creatorID string) error {
	return s.follows.Unfollow(ctx, followerID, creatorID)
}

// JoinCommunity adds the membership and bumps the counter in one transaction.
func (s *DefaultSocialService) JoinCommunity(ctx context.Context, communityID, userID string) (int64, error) {
	count, err := s.communities.Join(ctx, communityID, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("community joined", zap.String("community", communityID), zap.String("user", userID), zap.Int64("members", count))
	return count, nil
}

func (s *DefaultSocialService) LeaveCommunity(ctx context.Context, communityID, userID string) (int64, error) {
	count, err := s.communities.Leave(ctx, communityID, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("community left", zap.String("community", communityID), zap.String("user", userID), zap.Int64("members", count))
	return count, nil
}
