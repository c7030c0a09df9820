package driven

import (
	"context"
	"io"
)

// BlobSource opens remote objects for bulk import.
type BlobSource interface {
	// Open returns a reader for the object at key. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
