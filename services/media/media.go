// Package media stores request and completion photos in Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// ErrDisabled is returned when no storage backend is configured.
var ErrDisabled = errors.New("media storage is not configured")

// Uploader is the slice of the Cloudinary upload API used here.
type Uploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// MediaService uploads images and returns their public URLs.
type MediaService interface {
	UploadImage(ctx context.Context, folder, filename string, file io.Reader) (string, error)
}

type CloudinaryMediaService struct {
	uploader   Uploader
	rootFolder string
	logger     *zap.Logger
}

// NewCloudinaryMediaService returns a service backed by cld. A nil client
// yields a service whose uploads fail with ErrDisabled.
func NewCloudinaryMediaService(cld *cloudinary.Cloudinary, rootFolder string, logger *zap.Logger) *CloudinaryMediaService {
	var up Uploader
	if cld != nil {
		up = &cld.Upload
	}
	return NewMediaService(up, rootFolder, logger)
}

func NewMediaService(up Uploader, rootFolder string, logger *zap.Logger) *CloudinaryMediaService {
	return &CloudinaryMediaService{uploader: up, rootFolder: rootFolder, logger: logger}
}

func (s *CloudinaryMediaService) UploadImage(ctx context.Context, folder, filename string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrDisabled
	}

	params := uploader.UploadParams{
		Folder:       path.Join(s.rootFolder, folder),
		ResourceType: "image",
	}
	result, err := s.uploader.Upload(ctx, file, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload of %s returned no URL", filename)
	}

	s.logger.Info("Image uploaded",
		zap.String("folder", params.Folder),
		zap.String("publicId", result.PublicID),
	)
	return result.SecureURL, nil
}
