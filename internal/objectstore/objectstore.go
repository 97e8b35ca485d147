// Package objectstore persists uploaded binaries (item photos) and hands back
// a public reference URL. Records store only the URL, never the blob; a
// failed put aborts the record creation that requested it.
package objectstore

import (
	"context"
	"fmt"
	"strings"
)

// Store is the interface object-storage backends implement.
type Store interface {
	// Put stores data under key and returns the public URL for it.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object under key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects keys that could escape the storage namespace.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
