// Package request is the façade the HTTP layer calls for service
// requests. Each operation checks permissions, then drives the lifecycle
// machine, then runs the rating and notification side effects.
package request

import (
	"context"
	"io"

	"smartfix/models"
)

// RequestService defines the service request operations.
type RequestService interface {
	CreateRequest(ctx context.Context, actor models.Actor, input models.CreateRequestInput) (*models.ServiceRequest, error)
	GetRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error)
	ListRequests(ctx context.Context, actor models.Actor, status models.RequestStatus) ([]models.ServiceRequest, error)
	DeleteRequest(ctx context.Context, actor models.Actor, id string) error

	AcceptRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error)
	RejectRequest(ctx context.Context, actor models.Actor, id, reason string) (*models.ServiceRequest, error)
	StartRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error)
	CompleteRequest(ctx context.Context, actor models.Actor, id string, completion models.CompletionData) (*models.ServiceRequest, error)
	ApproveCompletion(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error)
	RequestRevision(ctx context.Context, actor models.Actor, id, notes string) (*models.ServiceRequest, error)
	RestartRequest(ctx context.Context, actor models.Actor, id string) (*models.ServiceRequest, error)
	CancelRequest(ctx context.Context, actor models.Actor, id, reason string) (*models.ServiceRequest, error)

	AttachImages(ctx context.Context, actor models.Actor, id string, files []Upload) (*models.ServiceRequest, error)
	FindMatchingProviders(ctx context.Context, actor models.Actor, id string, criteria models.MatchCriteria) ([]models.MatchedProvider, error)

	GetStatisticsByUser(ctx context.Context, actor models.Actor, userID string) (*models.UserStatistics, error)
	GetStatisticsByProvider(ctx context.Context, actor models.Actor, providerID string) (*models.ProviderStatistics, error)
}

// Upload is one image to attach to a request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProviderLookup resolves provider profiles.
type ProviderLookup interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	GetByUserID(ctx context.Context, userID string) (*models.Provider, error)
}

// UserLookup resolves users.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Matcher ranks providers for a request.
type Matcher interface {
	Match(ctx context.Context, req *models.ServiceRequest, criteria models.MatchCriteria) ([]models.MatchedProvider, error)
}

// CompletionRecorder counts approved jobs.
type CompletionRecorder interface {
	IncrementCompletedJobs(ctx context.Context, providerID string) error
}

// ReminderScheduler queues visit reminders.
type ReminderScheduler interface {
	ScheduleVisitReminder(ctx context.Context, req *models.ServiceRequest, providerUserID string) error
}
