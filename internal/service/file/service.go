package file

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
)

type FileService interface {
	// UploadAttendanceProof stores a punch snapshot and returns its storage key
	UploadAttendanceProof(ctx context.Context, employeeID string, date string, punchType string, payload string) (string, error)

	// UploadProfilePicture stores a registration photo and returns its storage key
	UploadProfilePicture(ctx context.Context, employeeID string, payload string) (string, error)

	// Generic operations
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(ctx context.Context, key string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// UploadAttendanceProof uploads the clock-in/out proof snapshot.
// The payload is written as received; only a data URL prefix is unwrapped.
func (s *fileServiceImpl) UploadAttendanceProof(ctx context.Context, employeeID string, date string, punchType string, payload string) (string, error) {
	content, contentType, ext := decodePayload(payload)

	// Path: attendance/{date}/{employeeID}-{punchType}-{timestamp}{ext}
	newFilename := fmt.Sprintf("%s-%s-%d%s", employeeID, punchType, s.now().UnixNano(), ext)
	key := path.Join("attendance", date, newFilename)

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(content), key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload attendance proof: %w", err)
	}

	return uploadedPath, nil
}

// UploadProfilePicture uploads the employee's registration photo
func (s *fileServiceImpl) UploadProfilePicture(ctx context.Context, employeeID string, payload string) (string, error) {
	content, contentType, ext := decodePayload(payload)

	// Generate unique filename
	uniqueID := uuid.New().String()
	key := path.Join("avatars", employeeID, fmt.Sprintf("%s-%s%s", employeeID, uniqueID, ext))

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(content), key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}

	return uploadedPath, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string) (string, error) {
	return s.storage.GetURL(ctx, key)
}

// ==================== HELPER FUNCTIONS ====================

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// decodePayload unwraps "data:<mime>;base64,<data>" payloads. Anything else,
// including data URLs with broken base64, is kept byte for byte.
func decodePayload(payload string) (content []byte, contentType string, ext string) {
	raw := []byte(payload)

	header, data, ok := strings.Cut(payload, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return raw, "application/octet-stream", ".bin"
	}

	mediaType := strings.TrimPrefix(header, "data:")
	isBase64 := strings.HasSuffix(mediaType, ";base64")
	mediaType = strings.TrimSuffix(mediaType, ";base64")

	if !isBase64 {
		return raw, "application/octet-stream", ".bin"
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return raw, "application/octet-stream", ".bin"
	}

	ext, known := imageExtensions[mediaType]
	if !known {
		ext = ".bin"
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return decoded, mediaType, ext
}
