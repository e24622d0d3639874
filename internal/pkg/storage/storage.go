package storage

import (
	"context"
	"io"
)

type FileStorage interface {
	// Upload stores the content under path and returns the cleaned key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Delete removes a file. Missing files are not an error
	Delete(ctx context.Context, path string) error

	// GetURL returns the public URL for a stored key
	GetURL(ctx context.Context, path string) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}
