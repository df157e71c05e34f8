// Package review manages customer reviews of completed requests and keeps
// the reviewed provider's rating in step with them.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartfix/apperrors"
	reviewRepo "smartfix/database/repository/review"
	"smartfix/models"
	"smartfix/services/permission"
	"smartfix/validation"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type ReviewService interface {
	CreateReview(ctx context.Context, actor models.Actor, input models.CreateReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, actor models.Actor, id string, input models.UpdateReviewInput) (*models.Review, error)
	DeleteReview(ctx context.Context, actor models.Actor, id string) error
	ListProviderReviews(ctx context.Context, providerID string) ([]models.Review, error)
}

// RequestLookup loads the request a review refers to.
type RequestLookup interface {
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
}

// ProviderLookup confirms a provider exists.
type ProviderLookup interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
}

// RatingRecomputer rebuilds a provider's rating from its reviews.
type RatingRecomputer interface {
	Recompute(ctx context.Context, providerID string) (models.RatingSummary, error)
}

type DefaultReviewService struct {
	Reviews   reviewRepo.ReviewRepository
	Requests  RequestLookup
	Providers ProviderLookup
	Ratings   RatingRecomputer
	Logger    *zap.Logger
	Now       func() time.Time
}

var _ ReviewService = (*DefaultReviewService)(nil)

func (s *DefaultReviewService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateReview lets the owner of a completed request review its provider
// once.
func (s *DefaultReviewService) CreateReview(ctx context.Context, actor models.Actor, input models.CreateReviewInput) (*models.Review, error) {
	if err := validation.ValidateStruct(input); err != nil {
		return nil, err
	}
	req, err := s.Requests.GetByID(ctx, input.ServiceRequestID)
	if err != nil {
		return nil, err
	}
	if err := permission.CanCreateReview(actor, req); err != nil {
		return nil, err
	}
	if req.Status != models.StatusCompleted || req.AssignedProvider == "" {
		return nil, apperrors.InvalidOperation(fmt.Sprintf("request is %s; only completed requests can be reviewed", req.Status))
	}

	exists, err := s.Reviews.ExistsForRequest(ctx, actor.ID, req.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("review for request %s: %w", req.ID, apperrors.ErrAlreadyExists)
	}

	now := s.now()
	review := &models.Review{
		ID:               uuid.NewString(),
		Rating:           input.Rating,
		Comment:          strings.TrimSpace(input.Comment),
		Images:           input.Images,
		Status:           models.ReviewActive,
		State:            models.StateActive,
		UserID:           actor.ID,
		ProviderID:       req.AssignedProvider,
		ServiceRequestID: req.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	// the unique index catches a concurrent duplicate the pre-check missed
	if err := s.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.Logger.Info("Review created",
		zap.String("reviewId", review.ID),
		zap.String("requestId", req.ID),
		zap.String("providerId", review.ProviderID),
		zap.Int("rating", review.Rating),
	)
	if err := s.recompute(ctx, review.ProviderID); err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview edits content for the author and status for admins.
func (s *DefaultReviewService) UpdateReview(ctx context.Context, actor models.Actor, id string, input models.UpdateReviewInput) (*models.Review, error) {
	if err := validation.ValidateStruct(input); err != nil {
		return nil, err
	}
	existing, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	moderating := input.Status != nil
	editing := input.Rating != nil || input.Comment != nil || input.Images != nil
	if !moderating && !editing {
		return nil, apperrors.Validation("no fields to update")
	}
	if moderating {
		if err := permission.CanEditReview(actor, existing, true); err != nil {
			return nil, err
		}
	}
	if editing {
		if err := permission.CanEditReview(actor, existing, false); err != nil {
			return nil, err
		}
	}

	set := bson.M{"updatedAt": s.now()}
	if input.Rating != nil {
		set["rating"] = *input.Rating
	}
	if input.Comment != nil {
		set["comment"] = strings.TrimSpace(*input.Comment)
	}
	if input.Images != nil {
		set["images"] = input.Images
	}
	if input.Status != nil {
		set["status"] = *input.Status
	}

	updated, err := s.Reviews.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}

	if updated.Rating != existing.Rating || updated.Status != existing.Status {
		if err := s.recompute(ctx, updated.ProviderID); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// DeleteReview soft-deletes the review and drops it from the rating.
func (s *DefaultReviewService) DeleteReview(ctx context.Context, actor models.Actor, id string) error {
	existing, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.CanDeleteReview(actor, existing); err != nil {
		return err
	}
	if _, err := s.Reviews.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.Logger.Info("Review deleted", zap.String("reviewId", id), zap.String("by", actor.ID))
	return s.recompute(ctx, existing.ProviderID)
}

func (s *DefaultReviewService) ListProviderReviews(ctx context.Context, providerID string) ([]models.Review, error) {
	if _, err := s.Providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	return s.Reviews.ListByProvider(ctx, providerID)
}

func (s *DefaultReviewService) recompute(ctx context.Context, providerID string) error {
	if _, err := s.Ratings.Recompute(ctx, providerID); err != nil {
		s.Logger.Error("Rating recompute failed", zap.String("providerId", providerID), zap.Error(err))
		return fmt.Errorf("review saved but rating not updated for provider %s: %w", providerID, err)
	}
	return nil
}
