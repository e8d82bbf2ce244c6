// Package blob abstracts the binary object store that holds uploaded
// documents. Metadata rows in the database reference objects by path.
package blob

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Store is the blob store consumed by the document manager.
type Store interface {
	// Upload writes data at path, overwriting any existing object.
	Upload(ctx context.Context, path string, data []byte) error

	// Download reads the object at path.
	Download(ctx context.Context, path string) ([]byte, error)

	// Remove deletes the object at path.
	Remove(ctx context.Context, path string) error

	// RemovePrefix deletes every object under prefix. Best-effort cleanup
	// after a job is deleted.
	RemovePrefix(ctx context.Context, prefix string) error
}

// ObjectPath builds the storage path for an uploaded file:
// {ownerID}/{jobID}/{epochMillis}_{fileName}. Per-owner, per-job and
// collision-resistant without a coordination step.
func ObjectPath(owner, jobID uuid.UUID, now time.Time, fileName string) string {
	return fmt.Sprintf("%s/%s/%s_%s", owner, jobID, strconv.FormatInt(now.UnixMilli(), 10), fileName)
}

// JobPrefix is the path prefix holding every object of one job.
func JobPrefix(owner, jobID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", owner, jobID)
}
