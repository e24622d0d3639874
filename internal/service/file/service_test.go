package file

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)

	content, contentType, ext := decodePayload(dataURL)
	assert.Equal(t, jpeg, content)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, ".jpg", ext)

	content, contentType, ext = decodePayload("opaque-blob")
	assert.Equal(t, []byte("opaque-blob"), content)
	assert.Equal(t, "application/octet-stream", contentType)
	assert.Equal(t, ".bin", ext)

	broken := "data:image/png;base64,%%%"
	content, _, _ = decodePayload(broken)
	assert.Equal(t, []byte(broken), content)
}

func TestUploadAttendanceProof(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	svc := &fileServiceImpl{
		storage: local,
		now:     func() time.Time { return time.Unix(0, 42) },
	}

	key, err := svc.UploadAttendanceProof(context.Background(), "emp-1", "2024-03-04", "clock-in", "raw-snapshot")
	require.NoError(t, err)
	assert.Equal(t, "attendance/2024-03-04/emp-1-clock-in-42.bin", key)

	stored, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "raw-snapshot", string(stored))

	url, err := svc.GetFileURL(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/"+key, url)

	require.NoError(t, svc.DeleteFile(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadProfilePicture(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)
	svc := NewFileService(local)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
	key, err := svc.UploadProfilePicture(context.Background(), "emp-1", payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "avatars/emp-1/emp-1-"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}
