package userRepo

import (
	"context"

	"smartfix/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// SetFCMToken stores the device token used for push notifications.
	SetFCMToken(ctx context.Context, id, token string) error
}
