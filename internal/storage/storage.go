// internal/storage/storage.go
package storage

import (
	"context"
	"io"
)

// ObjectStorage is where the extraction collaborator drops raw batch files.
type ObjectStorage interface {
	// List returns object keys under the configured prefix.
	List(ctx context.Context) ([]string, error)
	// Download opens an object for reading. Caller closes.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// DownloadToFile fetches an object into a local path.
	DownloadToFile(ctx context.Context, key, path string) error
	// Upload stores a processed or archived file.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}
