package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/apperr"
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/metrics"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

const (
	MaxFileSize = 10 << 20
	MaxFiles    = 10

	uploadConcurrency = 4
)

// Upload purposes, used as key prefixes.
const (
	PurposeDocuments      = "documents"
	PurposeItineraries    = "itineraries"
	PurposeProfilePicture = "profile-pictures"
	PurposeReviews        = "reviews"
	PurposeMedia          = "media"
)

var allowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
	"image/gif",
	"text/plain",
}

// Upload is a file read into memory and checked against the size limit and
// the MIME allowlist.
type Upload struct {
	Name        string
	Data        []byte
	ContentType string
}

// ReadUpload reads at most MaxFileSize bytes from r and sniffs the content type.
func ReadUpload(name string, r io.Reader) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, apperr.Internal("Failed to read upload", err)
	}
	if len(data) > MaxFileSize {
		return nil, apperr.Validation(fmt.Sprintf("File %s exceeds the 10MB limit", name))
	}
	if len(data) == 0 {
		return nil, apperr.Validation(fmt.Sprintf("File %s is empty", name))
	}

	mtype := mimetype.Detect(data)
	if !isAllowed(mtype) {
		return nil, apperr.Validation(fmt.Sprintf("File %s has unsupported type %s", name, mtype.String()))
	}
	contentType := mtype.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return &Upload{Name: name, Data: data, ContentType: contentType}, nil
}

func isAllowed(mtype *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

// CheckCount enforces the per-request file limit.
func CheckCount(n int) error {
	if n == 0 {
		return apperr.Validation("No files uploaded")
	}
	if n > MaxFiles {
		return apperr.Validation(fmt.Sprintf("At most %d files can be uploaded at once", MaxFiles))
	}
	return nil
}

// PutAll uploads every file in parallel. If any upload fails the ones that
// succeeded are removed again and the first error is returned.
func PutAll(ctx context.Context, store BlobStore, purpose string, uploads []*Upload) ([]models.Attachment, error) {
	if err := CheckCount(len(uploads)); err != nil {
		return nil, err
	}

	now := time.Now()
	attachments := make([]models.Attachment, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, u := range uploads {
		i, u := i, u
		g.Go(func() error {
			key := helpers.ObjectKey(purpose, fmt.Sprintf("%d-%s", i, u.Name), now)
			obj, err := store.Put(gctx, key, u.Data, u.ContentType)
			if err != nil {
				return err
			}
			metrics.UploadedBytes.WithLabelValues(purpose).Add(float64(obj.Size))
			attachments[i] = models.Attachment{
				Name: u.Name,
				Size: obj.Size,
				Type: u.ContentType,
				Link: obj.URL,
				Key:  obj.Key,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, a := range attachments {
			if a.Key != "" {
				_ = store.Delete(context.WithoutCancel(ctx), a.Key, a.Type)
			}
		}
		return nil, apperr.Internal("Failed to upload files", err)
	}
	return attachments, nil
}

// DeleteAll removes the blobs behind attachments, returning the first failure.
func DeleteAll(ctx context.Context, store BlobStore, attachments []models.Attachment) error {
	var first error
	for _, a := range attachments {
		if a.Key == "" {
			continue
		}
		if err := store.Delete(ctx, a.Key, a.Type); err != nil && first == nil {
			first = err
		}
	}
	return first
}
