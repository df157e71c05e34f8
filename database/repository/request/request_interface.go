package requestRepo

import (
	"context"

	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ListFilter narrows a request listing. Empty fields are ignored.
type ListFilter struct {
	UserID     string
	ProviderID string
	Status     models.RequestStatus
	Limit      int64
}

// RequestRepository defines persistence for service requests.
type RequestRepository interface {
	// Create inserts a new request.
	Create(ctx context.Context, req *models.ServiceRequest) error
	// GetByID returns the request or a NotFound error.
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	// List returns requests matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]models.ServiceRequest, error)
	// ApplyTransition updates the request only if it is still in status
	// `from` with `expectedProvider` assigned ("" means unassigned). It
	// returns the updated request, or a ConcurrencyConflict error when the
	// guard no longer matches.
	ApplyTransition(ctx context.Context, id string, from models.RequestStatus, expectedProvider string, set bson.M, unset []string) (*models.ServiceRequest, error)
	// AppendRejection records a provider's rejection of a pending request.
	// The boolean is false when the provider had already rejected it.
	AppendRejection(ctx context.Context, id string, rec models.RejectionRecord) (*models.ServiceRequest, bool, error)
	// AddImages appends image URLs to the request.
	AddImages(ctx context.Context, id string, urls []string) error
	// DeleteIfPending removes the request only while it is pending.
	DeleteIfPending(ctx context.Context, id string) error
	// StatusCountsByUser groups a user's requests by status.
	StatusCountsByUser(ctx context.Context, userID string) ([]models.StatusCount, error)
	// StatusCountsByProvider groups a provider's requests by status, counting
	// the ones cancelled while assigned to it.
	StatusCountsByProvider(ctx context.Context, providerID string) ([]models.StatusCount, error)
	// CompletionTimesByProvider summarises started→completed durations.
	CompletionTimesByProvider(ctx context.Context, providerID string) (models.CompletionTimes, error)
}
