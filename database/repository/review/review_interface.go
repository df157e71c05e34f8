package reviewRepo

import (
	"context"

	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ReviewRepository defines persistence for reviews. Soft-deleted reviews
// are invisible to every read.
type ReviewRepository interface {
	// Create inserts a review. A second review for the same user and
	// request fails with ErrAlreadyExists.
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	// ExistsForRequest reports whether the user already reviewed the request.
	ExistsForRequest(ctx context.Context, userID, requestID string) (bool, error)
	// Update applies a $set document and returns the updated review.
	Update(ctx context.Context, id string, set bson.M) (*models.Review, error)
	// SoftDelete marks the review deleted and returns it.
	SoftDelete(ctx context.Context, id string) (*models.Review, error)
	// ListByProvider returns a provider's visible reviews, newest first.
	ListByProvider(ctx context.Context, providerID string) ([]models.Review, error)
	// AggregateForProvider averages the ratings of counting reviews.
	AggregateForProvider(ctx context.Context, providerID string) (avg float64, count int, err error)
}
