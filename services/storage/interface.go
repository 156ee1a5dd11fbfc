package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
)

var (
	// ErrInvalidBucket is returned for bucket names outside [a-z0-9-_].
	ErrInvalidBucket = errors.New("invalid storage bucket")
	// ErrMissingOwner is returned when an upload has no owner.
	ErrMissingOwner = errors.New("upload owner is required")
)

// StorageService uploads user media and returns a URL clients can render.
type StorageService interface {
	Upload(ctx context.Context, file io.Reader, filename, bucket, ownerID string) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ObjectPath lays uploads out as <bucket>/<owner>/<name>. The caller supplies a unique
// name; only its base and extension survive.
func ObjectPath(bucket, ownerID, name string) (string, error) {
	if !bucketPattern.MatchString(bucket) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBucket, bucket)
	}
	if strings.TrimSpace(ownerID) == "" {
		return "", ErrMissingOwner
	}
	return path.Join(bucket, ownerID, path.Base(name)), nil
}
