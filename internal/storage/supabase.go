package storage

import (
	"bytes"
	"context"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStore keeps blobs in a public Supabase Storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseStore(client *supabase.Client, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client.Storage, bucket: bucket}
}

func (s *SupabaseStore) Put(_ context.Context, key string, data []byte, contentType string) (*Object, error) {
	upsert := true
	if _, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return nil, fmt.Errorf("failed to upload %s to bucket %s: %w", key, s.bucket, err)
	}
	return &Object{
		Key:         key,
		URL:         s.client.GetPublicUrl(s.bucket, key).SignedURL,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *SupabaseStore) Delete(_ context.Context, key, _ string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}
