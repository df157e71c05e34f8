package utils

import (
	"fmt"

	"smartfix/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// NewCloudinary returns a Cloudinary client, or nil when no credentials
// are configured.
func NewCloudinary(cfg config.Config) (*cloudinary.Cloudinary, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, nil
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return cld, nil
}
