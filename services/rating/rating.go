// Package rating keeps a provider's derived rating and completed-job
// count consistent with its reviews and approved requests.
package rating

import (
	"context"
	"errors"
	"fmt"

	"smartfix/apperrors"
	"smartfix/models"
	"smartfix/utils"

	"go.uber.org/zap"
)

// ReviewStats aggregates the reviews that count toward a rating.
type ReviewStats interface {
	AggregateForProvider(ctx context.Context, providerID string) (avg float64, count int, err error)
}

// ProviderStore is the provider side of the aggregator.
type ProviderStore interface {
	RatingVersion(ctx context.Context, id string) (int64, error)
	SetRatingSummary(ctx context.Context, id string, version int64, summary models.RatingSummary) error
	IncrementCompletedJobs(ctx context.Context, id string) error
}

// Aggregator recomputes ratings from scratch on every change. The write
// is conditional on the version read before aggregating, so a summary
// computed from a stale view of the reviews never overwrites a newer one.
type Aggregator struct {
	reviews    ReviewStats
	providers  ProviderStore
	maxRetries int
	logger     *zap.Logger
}

func NewAggregator(reviews ReviewStats, providers ProviderStore, maxRetries int, logger *zap.Logger) *Aggregator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Aggregator{reviews: reviews, providers: providers, maxRetries: maxRetries, logger: logger}
}

// Recompute sets the provider's rating to the one-decimal average of its
// active, non-deleted reviews and totalReviews to their count. No reviews
// yields 0 and 0.
func (a *Aggregator) Recompute(ctx context.Context, providerID string) (models.RatingSummary, error) {
	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		version, err := a.providers.RatingVersion(ctx, providerID)
		if err != nil {
			return models.RatingSummary{}, err
		}

		avg, count, err := a.reviews.AggregateForProvider(ctx, providerID)
		if err != nil {
			return models.RatingSummary{}, fmt.Errorf("failed to aggregate reviews for provider %s: %w", providerID, err)
		}
		summary := Summarize(avg, count)

		err = a.providers.SetRatingSummary(ctx, providerID, version, summary)
		if err == nil {
			a.logger.Debug("Provider rating recomputed",
				zap.String("providerId", providerID),
				zap.Float64("rating", summary.Rating),
				zap.Int("totalReviews", summary.TotalReviews),
			)
			return summary, nil
		}
		if !errors.Is(err, apperrors.ErrConcurrencyConflict) {
			return models.RatingSummary{}, err
		}
		lastErr = err
		a.logger.Debug("Rating write lost a race, retrying",
			zap.String("providerId", providerID),
			zap.Int("attempt", attempt+1),
		)
	}

	a.logger.Warn("Rating recompute gave up after retries",
		zap.String("providerId", providerID),
		zap.Error(lastErr),
	)
	return models.RatingSummary{}, lastErr
}

// IncrementCompletedJobs records one approved job for the provider.
func (a *Aggregator) IncrementCompletedJobs(ctx context.Context, providerID string) error {
	return a.providers.IncrementCompletedJobs(ctx, providerID)
}

// Summarize rounds the average to one decimal and zeroes it when there
// is nothing to average.
func Summarize(avg float64, count int) models.RatingSummary {
	if count == 0 {
		return models.RatingSummary{}
	}
	return models.RatingSummary{Rating: utils.Round1(avg), TotalReviews: count}
}
