package contentRepo

import (
	"context"
	"errors"

	"creatorhub/models"
)

// ErrInvalidCursor is returned when a cursor was not issued by this repository.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// ErrNotFound is returned when no content row matches.
var ErrNotFound = errors.New("content not found")

// PageQuery describes one page request. Cursor is empty for the first page.
type PageQuery struct {
	Cursor   string
	PageSize int
	ViewerID string
}

// Page is one slice of published rows, newest first.
type Page struct {
	Records    []models.ContentRecord
	NextCursor string
	HasMore    bool
}

// ContentRepository defines data access for posts and videos.
type ContentRepository interface {
	// FetchPage returns published rows older than the cursor.
	FetchPage(ctx context.Context, q PageQuery) (*Page, error)
	// Create inserts a new content row.
	Create(ctx context.Context, rec *models.ContentRecord) error
	// GetByID retrieves a content row by its public id.
	GetByID(ctx context.Context, id string) (*models.ContentRecord, error)
}
