package handlers

import (
	"errors"
	"net/http"
	"strings"

	"creatorhub/middleware"
	"creatorhub/services/storage"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultMaxUploadBytes caps a single upload at 100 MiB.
const defaultMaxUploadBytes = 100 << 20

// allowedBuckets maps upload buckets to the MIME families they accept.
var allowedBuckets = map[string][]string{
	"images":  {"image/"},
	"avatars": {"image/"},
	"videos":  {"video/"},
}

// StorageHandler handles media uploads.
type StorageHandler struct {
	StorageSvc storage.StorageService
	MaxBytes   int64
}

func NewStorageHandler(svc storage.StorageService) *StorageHandler {
	return &StorageHandler{StorageSvc: svc, MaxBytes: defaultMaxUploadBytes}
}

// UploadFileHandler stores the multipart "file" field in :bucket and returns its URL.
func (h *StorageHandler) UploadFileHandler(c *gin.Context) {
	logger := getLogger(c)
	bucket := c.Param("bucket")
	accepted, ok := allowedBuckets[bucket]
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid bucket", "allowed values are images, avatars and videos")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "file not provided", err.Error())
		return
	}
	if fileHeader.Size > h.MaxBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "file too large", "")
		return
	}
	if !hasPrefix(fileHeader.Header.Get("Content-Type"), accepted) {
		utils.JSONError(c, http.StatusUnsupportedMediaType, "unsupported file type", fileHeader.Header.Get("Content-Type"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read file", err.Error())
		return
	}
	defer f.Close()

	viewerID := middleware.ViewerID(c)
	url, err := h.StorageSvc.Upload(c.Request.Context(), f, fileHeader.Filename, bucket, viewerID)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidBucket) || errors.Is(err, storage.ErrMissingOwner) {
			utils.JSONError(c, http.StatusBadRequest, "invalid upload", err.Error())
			return
		}
		logger.Error("upload failed", zap.String("bucket", bucket), zap.String("owner", viewerID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to upload file", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "bucket": bucket})
}

// DeleteFileHandler removes :name from the caller's own folder in :bucket.
func (h *StorageHandler) DeleteFileHandler(c *gin.Context) {
	bucket := c.Param("bucket")
	if _, ok := allowedBuckets[bucket]; !ok {
		utils.JSONError(c, http.StatusBadRequest, "invalid bucket", "allowed values are images, avatars and videos")
		return
	}
	viewerID := middleware.ViewerID(c)
	objectPath, err := storage.ObjectPath(bucket, viewerID, c.Param("name"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid object", err.Error())
		return
	}
	if err := h.StorageSvc.Delete(c.Request.Context(), objectPath); err != nil {
		getLogger(c).Error("delete failed", zap.String("object", objectPath), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete file", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
