package providerRepo

import (
	"context"

	"smartfix/models"
)

// CandidateQuery describes the geo/category search used by matching.
type CandidateQuery struct {
	Category      string
	Near          models.GeoPoint
	MaxDistanceKm float64
}

// ProviderRepository defines methods for provider data access.
type ProviderRepository interface {
	// Create inserts a new provider profile.
	Create(ctx context.Context, provider *models.Provider) error
	// GetByID returns a non-deleted provider or a NotFound error.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// GetByUserID returns the non-deleted provider profile owned by a user.
	GetByUserID(ctx context.Context, userID string) (*models.Provider, error)
	// Candidates returns eligible providers near a point together with
	// their distance and live review statistics.
	Candidates(ctx context.Context, q CandidateQuery) ([]models.ProviderCandidate, error)
	// RatingVersion returns the current version of the provider's rating
	// summary, including for soft-deleted providers.
	RatingVersion(ctx context.Context, id string) (int64, error)
	// SetRatingSummary writes a recomputed summary if the version still
	// matches, bumping it. A stale version yields a ConcurrencyConflict.
	SetRatingSummary(ctx context.Context, id string, version int64, summary models.RatingSummary) error
	// IncrementCompletedJobs atomically adds one completed job.
	IncrementCompletedJobs(ctx context.Context, id string) error
}
