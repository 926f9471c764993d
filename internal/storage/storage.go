package storage

import (
	"context"
	"strings"
)

// Object describes a stored blob.
type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// BlobStore persists uploaded files and returns a public link to them.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (*Object, error)
	Delete(ctx context.Context, key, contentType string) error
}

// resourceType maps a MIME type onto the Cloudinary resource class used for
// both upload and destroy so the two always agree.
func resourceType(contentType string) string {
	if strings.HasPrefix(contentType, "image/") || contentType == "application/pdf" {
		return "image"
	}
	return "raw"
}
