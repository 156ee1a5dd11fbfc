package content

import (
	"context"
	"errors"
	"testing"
	"time"

	contentRepo "creatorhub/database/repository/content"
	"creatorhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type memContent struct {
	created []*models.ContentRecord
}

func (m *memContent) FetchPage(context.Context, contentRepo.PageQuery) (*contentRepo.Page, error) {
	return &contentRepo.Page{}, nil
}

func (m *memContent) Create(_ context.Context, rec *models.ContentRecord) error {
	m.created = append(m.created, rec)
	return nil
}

func (m *memContent) GetByID(context.Context, string) (*models.ContentRecord, error) {
	return nil, contentRepo.ErrNotFound
}

type stubUsers struct {
	user *models.User
	err  error
}

func (s stubUsers) GetByID(context.Context, string) (*models.User, error) {
	return s.user, s.err
}

func (s stubUsers) GetByIDWithProjection(context.Context, string, bson.M) (*models.User, error) {
	return s.user, s.err
}

func (s stubUsers) UpdateTier(context.Context, string, string) error {
	return nil
}

type recordingBroadcaster struct {
	viewer string
	recs   []models.ContentRecord
}

func (b *recordingBroadcaster) Broadcast(viewerID string, rec models.ContentRecord) int {
	b.viewer = viewerID
	b.recs = append(b.recs, rec)
	return 1
}

func TestBuildRecordPost(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rec, err := buildRecord("u1", models.CreateContentRequest{
		ContentType:  "post",
		Title:        "  Hi ",
		Content:      " hello ",
		RequiredTier: "premium",
	}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "u1", rec.CreatorID)
	assert.Equal(t, "Hi", rec.Title)
	assert.Equal(t, "hello", rec.Content)
	assert.Equal(t, models.StatusPublished, rec.Status)
	assert.Equal(t, string(models.AccessTier), rec.AccessLevel)
	assert.Equal(t, "premium", rec.RequiredTier)
	assert.Equal(t, now, rec.CreatedAt)
}

func TestBuildRecordRejectsEmpty(t *testing.T) {
	_, err := buildRecord("u1", models.CreateContentRequest{ContentType: "post", Content: "   "}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = buildRecord("u1", models.CreateContentRequest{ContentType: "video", Description: "no file"}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = buildRecord("u1", models.CreateContentRequest{ContentType: "poll", Content: "x"}, time.Now())
	assert.Error(t, err)
}

func TestCreatePublishesAndBroadcasts(t *testing.T) {
	repo := &memContent{}
	b := &recordingBroadcaster{}
	svc := NewContentService(repo, stubUsers{user: &models.User{Username: "ana", AvatarURL: "a.png"}}, b, nil)

	rec, err := svc.Create(context.Background(), "u1", models.CreateContentRequest{
		ContentType: "video", VideoURL: "clip.mp4", Description: "clip",
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, &models.AuthorSnapshot{Name: "ana", AvatarURL: "a.png"}, rec.Author)
	assert.Equal(t, "u1", b.viewer)
	require.Len(t, b.recs, 1)
	assert.Equal(t, rec.ID, b.recs[0].ID)
}

func TestCreateWithoutAuthorSnapshot(t *testing.T) {
	repo := &memContent{}
	svc := NewContentService(repo, stubUsers{err: errors.New("not found")}, nil, nil)

	rec, err := svc.Create(context.Background(), "u1", models.CreateContentRequest{ContentType: "post", Content: "hi"})
	require.NoError(t, err)
	assert.Nil(t, rec.Author)
	assert.Len(t, repo.created, 1)
}
