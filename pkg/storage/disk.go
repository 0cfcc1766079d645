// Package storage is a small filesystem abstraction used to archive CRM
// report snapshots.
//
// Two drivers are available:
//   - "local"  local filesystem (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2)
//
// Usage:
//
//	storage.Connect(ctx)
//	disk, _ := storage.Default()
//	_ = disk.Put(ctx, "reports/2026-03-02.json", data)
package storage

import (
	"context"
	"errors"
)

// ErrUnknownDisk is returned by Use for a disk that was never configured.
var ErrUnknownDisk = errors.New("storage: disk is not configured")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists files directly inside directory, as slash paths.
	Files(ctx context.Context, directory string) ([]string, error)

	// URL returns the public URL for path.
	URL(path string) string
}
