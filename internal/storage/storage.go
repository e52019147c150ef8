// Package storage persists decoded screenshot artifacts produced during a
// replay run, either to the local filesystem or to an S3-compatible object
// store.
package storage

import (
	"fmt"
	"io"
	"time"
)

// Store is the output-artifact storage abstraction used by the replay
// pipeline. Implementations save, fetch, and delete named artifacts
// (currently one PNG screenshot of the final framebuffer per replay,
// named by the replay's session ID).
type Store interface {
	// Save writes r under name and returns the storage path it was written
	// to (a relative path for LocalStore, an object key for S3Store).
	Save(name string, r io.Reader) (storagePath string, err error)
	// Get opens a previously saved artifact for reading.
	Get(storagePath string) (io.ReadCloser, error)
	// Delete removes a previously saved artifact.
	Delete(storagePath string) error
}

// datedArtifactKey builds the `{year}/{month}/{name}.png` portion of an
// artifact's storage path shared by both backends (SPEC_FULL.md §4.11's
// date-bucketed layout), using forward slashes throughout — LocalStore
// converts it to the host path separator, S3Store uses it directly as
// an object key.
func datedArtifactKey(now time.Time, name string) string {
	return fmt.Sprintf("%d/%02d/%s.png", now.Year(), now.Month(), name)
}
