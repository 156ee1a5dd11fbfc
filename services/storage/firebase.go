package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// FirebaseStorageService implements StorageService on a Firebase (GCS) bucket.
type FirebaseStorageService struct {
	client     *storage.Client
	bucketName string
}

// NewFirebaseStorageService creates a client from a service account file.
func NewFirebaseStorageService(ctx context.Context, serviceAccountJSONPath, bucketName string) (*FirebaseStorageService, error) {
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(serviceAccountJSONPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &FirebaseStorageService{client: client, bucketName: bucketName}, nil
}

// Upload writes file as a publicly readable object and returns its download URL.
func (s *FirebaseStorageService) Upload(ctx context.Context, file io.Reader, filename, bucket, ownerID string) (string, error) {
	objectPath, err := ObjectPath(bucket, ownerID, uuid.NewString()+path.Ext(filename))
	if err != nil {
		return "", err
	}

	w := s.client.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	w.ACL = []storage.ACLRule{{Entity: storage.AllUsers, Role: storage.RoleReader}}
	if ext := path.Ext(filename); ext != "" {
		w.ObjectAttrs.ContentType = mime.TypeByExtension(ext)
	}

	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to copy file to storage: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return DownloadURL(s.bucketName, objectPath), nil
}

func (s *FirebaseStorageService) Delete(ctx context.Context, objectPath string) error {
	if err := s.client.Bucket(s.bucketName).Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *FirebaseStorageService) Close() error {
	return s.client.Close()
}

// DownloadURL is the public Firebase download URL of an object.
func DownloadURL(bucketName, objectPath string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		bucketName, url.QueryEscape(objectPath))
}
