package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CloudinaryStorageService implements StorageService on Cloudinary.
type CloudinaryStorageService struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

func NewCloudinaryStorageService(cld *cloudinary.Cloudinary, logger *zap.Logger) *CloudinaryStorageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryStorageService{cld: cld, logger: logger}
}

// Upload stores file under <bucket>/<owner> and returns its secure URL. Cloudinary picks the
// resource type (image or video) from the content.
func (s *CloudinaryStorageService) Upload(ctx context.Context, file io.Reader, filename, bucket, ownerID string) (string, error) {
	publicID := uuid.NewString()
	folder, err := ObjectPath(bucket, ownerID, publicID)
	if err != nil {
		return "", err
	}
	folder = path.Dir(folder)

	overwrite := false
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
		Overwrite:    &overwrite,
		Tags:         []string{bucket},
	})
	if err != nil {
		return "", fmt.Errorf("CloudinaryStorageService: failed to upload %s: %w", filename, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("CloudinaryStorageService: upload rejected: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("CloudinaryStorageService: no URL returned")
	}

	s.logger.Debug("uploaded media",
		zap.String("publicId", result.PublicID), zap.String("owner", ownerID), zap.Int("bytes", result.Bytes))
	return result.SecureURL, nil
}

// Delete removes an asset by public ID.
func (s *CloudinaryStorageService) Delete(ctx context.Context, objectPath string) error {
	publicID := strings.TrimSuffix(objectPath, path.Ext(objectPath))
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("CloudinaryStorageService: failed to delete %s: %w", publicID, err)
	}
	return nil
}
