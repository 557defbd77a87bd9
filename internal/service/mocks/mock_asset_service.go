package mocks

import (
	"context"
	"io"

	"contentapi/internal/render"
	"github.com/stretchr/testify/mock"
)

type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) UploadImage(ctx context.Context, r io.Reader, temporaryID, originalFilename, altText, contentType string, size int64) (*render.UploadDescriptor, error) {
	args := m.Called(ctx, r, temporaryID, originalFilename, altText, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.UploadDescriptor), args.Error(1)
}
