package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"contentapi/internal/render"
	"contentapi/internal/storage"
)

var (
	ErrReaderNil           = errors.New("reader is nil")
	ErrTemporaryIDRequired = errors.New("temporary id is required")
)

// presignExpiry is used when no public base URL is configured. Long-lived
// because the URL is persisted on the post image.
const presignExpiry = 7 * 24 * time.Hour

// AssetService stores uploaded image binaries and reports completed
// uploads as descriptors the rendering pipeline can resolve.
type AssetService interface {
	// UploadImage streams the image to object storage and returns its
	// upload descriptor. temporaryID is the client-generated token the
	// author embedded in the content; it is echoed back so resolution
	// can find the placeholder.
	UploadImage(ctx context.Context, r io.Reader, temporaryID, originalFilename, altText, contentType string, size int64) (*render.UploadDescriptor, error)
}

// assetService is a concrete implementation of AssetService.
type assetService struct {
	store         storage.Storage
	publicBaseURL string
}

// NewAssetService constructs a new AssetService. publicBaseURL may be
// empty, in which case presigned URLs are returned.
func NewAssetService(store storage.Storage, publicBaseURL string) AssetService {
	return &assetService{store: store, publicBaseURL: publicBaseURL}
}

func (s *assetService) UploadImage(ctx context.Context, r io.Reader, temporaryID, originalFilename, altText, contentType string, size int64) (*render.UploadDescriptor, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if temporaryID == "" {
		return nil, ErrTemporaryIDRequired
	}

	// The asset id doubles as the object key stem so the key is always
	// recoverable from the id.
	assetID := uuid.New().String()
	key := "images/" + assetID + filepath.Ext(originalFilename)

	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"alt-text":          altText,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	url, err := s.objectURL(ctx, key)
	if err != nil {
		// Rollback: the caller never sees this object, drop it.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("object url failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("object url failed: %w", err)
	}

	return &render.UploadDescriptor{
		TemporaryID: temporaryID,
		AssetID:     assetID,
		URL:         url,
		AltText:     altText,
	}, nil
}

func (s *assetService) objectURL(ctx context.Context, key string) (string, error) {
	if s.publicBaseURL != "" {
		return strings.TrimRight(s.publicBaseURL, "/") + "/" + key, nil
	}
	return s.store.PresignGet(ctx, key, presignExpiry)
}
