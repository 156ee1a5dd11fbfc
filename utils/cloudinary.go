package utils

import (
	"context"
	"fmt"

	"creatorhub/config"
	"creatorhub/services/storage"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// Cloudinary initializes a Cloudinary-backed StorageService from AppConfig.
func Cloudinary(logger *zap.Logger) (storage.StorageService, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return storage.NewCloudinaryStorageService(cld, logger), nil
}

// NewStorageService picks the upload backend named by STORAGE_BACKEND.
func NewStorageService(ctx context.Context, logger *zap.Logger) (storage.StorageService, error) {
	switch config.AppConfig.StorageBackend {
	case "", "cloudinary":
		return Cloudinary(logger)
	case "firebase":
		if config.AppConfig.FirebaseBucket == "" {
			return nil, fmt.Errorf("FIREBASE_BUCKET is required for the firebase storage backend")
		}
		return storage.NewFirebaseStorageService(ctx, config.AppConfig.FirebaseCredentialsFile, config.AppConfig.FirebaseBucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.AppConfig.StorageBackend)
	}
}
