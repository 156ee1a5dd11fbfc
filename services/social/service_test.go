package social

import (
	"context"
	"testing"

	communityRepo "creatorhub/database/repository/community"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFollows struct {
	edges map[[2]string]bool
}

func (m *memFollows) FollowingIDs(_ context.Context, followerID string) ([]string, error) {
	var out []string
	for e := range m.edges {
		if e[0] == followerID {
			out = append(out, e[1])
		}
	}
	return out, nil
}

func (m *memFollows) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	return m.edges[[2]string{followerID, followingID}], nil
}

func (m *memFollows) Follow(_ context.Context, followerID, followingID string) error {
	m.edges[[2]string{followerID, followingID}] = true
	return nil
}

func (m *memFollows) Unfollow(_ context.Context, followerID, followingID string) error {
	delete(m.edges, [2]string{followerID, followingID})
	return nil
}

type memCommunities struct {
	members map[string]bool
}

func (m *memCommunities) Join(_ context.Context, communityID, userID string) (int64, error) {
	if communityID != "c1" {
		return 0, communityRepo.ErrCommunityNotFound
	}
	if m.members[userID] {
		return 0, communityRepo.ErrAlreadyMember
	}
	m.members[userID] = true
	return int64(len(m.members)), nil
}

func (m *memCommunities) Leave(_ context.Context, communityID, userID string) (int64, error) {
	if !m.members[userID] {
		return 0, communityRepo.ErrNotMember
	}
	delete(m.members, userID)
	return int64(len(m.members)), nil
}

func newTestSocial() (*DefaultSocialService, *memFollows) {
	follows := &memFollows{edges: map[[2]string]bool{}}
	return NewSocialService(follows, &memCommunities{members: map[string]bool{}}, nil), follows
}

func TestFollowAndUnfollow(t *testing.T) {
	svc, follows := newTestSocial()
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "u1", "creator"))
	ok, _ := follows.IsFollowing(ctx, "u1", "creator")
	assert.True(t, ok)

	require.NoError(t, svc.Unfollow(ctx, "u1", "creator"))
	ok, _ = follows.IsFollowing(ctx, "u1", "creator")
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Follow(ctx, "u1", "u1"), ErrSelfFollow)
}

func TestCommunityMembership(t *testing.T) {
	svc, _ := newTestSocial()
	ctx := context.Background()

	n, err := svc.JoinCommunity(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.JoinCommunity(ctx, "c1", "u1")
	assert.ErrorIs(t, err, communityRepo.ErrAlreadyMember)
	_, err = svc.JoinCommunity(ctx, "missing", "u1")
	assert.ErrorIs(t, err, communityRepo.ErrCommunityNotFound)

	n, err = svc.LeaveCommunity(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = svc.LeaveCommunity(ctx, "c1", "u1")
	assert.ErrorIs(t, err, communityRepo.ErrNotMember)
}
