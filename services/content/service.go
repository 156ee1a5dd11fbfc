package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contentRepo "creatorhub/database/repository/content"
	userRepo "creatorhub/database/repository/user"
	"creatorhub/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ErrEmptyContent is returned for a post or video with nothing to show.
var ErrEmptyContent = errors.New("content has no body or media")

// ContentService publishes posts and videos.
type ContentService interface {
	Create(ctx context.Context, authorID string, req models.CreateContentRequest) (*models.ContentRecord, error)
}

// Broadcaster pushes a new record into the author's open feeds.
type Broadcaster interface {
	Broadcast(viewerID string, rec models.ContentRecord) int
}

type DefaultContentService struct {
	repo        contentRepo.ContentRepository
	users       userRepo.UserRepository
	broadcaster Broadcaster
	logger      *zap.Logger
	now         func() time.Time
}

func NewContentService(repo contentRepo.ContentRepository, users userRepo.UserRepository, broadcaster Broadcaster, logger *zap.Logger) *DefaultContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultContentService{
		repo:        repo,
		users:       users,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

// Create stores a published row and prepends it to the author's live feeds. The realtime
// echo of the same insert is dropped by the loaders' id check.
func (s *DefaultContentService) Create(ctx context.Context, authorID string, req models.CreateContentRequest) (*models.ContentRecord, error) {
	rec, err := buildRecord(authorID, req, s.now())
	if err != nil {
		return nil, err
	}

	author, err := s.users.GetByIDWithProjection(ctx, authorID, bson.M{"name": 1, "username": 1, "avatar_url": 1})
	if err != nil {
		s.logger.Warn("author lookup failed, publishing without snapshot", zap.String("author", authorID), zap.Error(err))
	} else {
		name := author.Name
		if name == "" {
			name = author.Username
		}
		rec.Author = &models.AuthorSnapshot{Name: name, AvatarURL: author.AvatarURL}
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("publish content: %w", err)
	}

	if s.broadcaster != nil {
		n := s.broadcaster.Broadcast(authorID, *rec)
		s.logger.Debug("content broadcast", zap.String("content", rec.ID), zap.Int("sessions", n))
	}
	return rec, nil
}

func buildRecord(authorID string, req models.CreateContentRequest, now time.Time) (*models.ContentRecord, error) {
	rec := &models.ContentRecord{
		ID:          uuid.NewString(),
		CreatorID:   authorID,
		ContentType: req.ContentType,
		Status:      models.StatusPublished,
		CreatedAt:   now,
		CommunityID: req.CommunityID,
		Title:       strings.TrimSpace(req.Title),
		AccessLevel: string(models.AccessPublic),
	}
	if req.RequiredTier != "" {
		rec.AccessLevel = string(models.AccessTier)
		rec.RequiredTier = req.RequiredTier
	}

	switch models.ContentType(req.ContentType) {
	case models.ContentTypePost:
		rec.Content = strings.TrimSpace(req.Content)
		rec.MediaURLs = req.MediaURLs
		if rec.Content == "" && len(rec.MediaURLs) == 0 {
			return nil, ErrEmptyContent
		}
	case models.ContentTypeVideo:
		rec.Description = strings.TrimSpace(req.Description)
		rec.VideoURL = req.VideoURL
		rec.ThumbnailURL = req.ThumbnailURL
		if rec.VideoURL == "" {
			return nil, ErrEmptyContent
		}
	default:
		return nil, fmt.Errorf("unsupported content type %q", req.ContentType)
	}
	return rec, nil
}
