package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("proof"), "attendance/emp-1/in.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "attendance/emp-1/in.jpg", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	url, err := s.GetURL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/attendance/emp-1/in.jpg", url)

	require.NoError(t, s.Delete(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	_, err = s.Upload(ctx, strings.NewReader("x"), "../outside.txt", "text/plain")
	assert.Error(t, err)

	_, err = s.Exists(ctx, "../../etc/passwd")
	assert.Error(t, err)

	assert.Error(t, s.Delete(ctx, ""))
}
