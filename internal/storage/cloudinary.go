package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary) *CloudinaryStore {
	return &CloudinaryStore{cld: cld}
}

func (s *CloudinaryStore) Put(ctx context.Context, key string, data []byte, contentType string) (*Object, error) {
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     key,
		ResourceType: resourceType(contentType),
		Overwrite:    api.Bool(true),
		Tags:         []string{"tourbirth"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload %s: %s", key, res.Error.Message)
	}
	return &Object{
		Key:         res.PublicID,
		URL:         res.SecureURL,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, key, contentType string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     key,
		ResourceType: resourceType(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to delete %s: %s", key, res.Error.Message)
	}
	// "not found" means the blob is already gone.
	return nil
}
