package review

import (
	"context"
	"testing"
	"time"

	"smartfix/apperrors"
	"smartfix/database/repository/memory"
	"smartfix/models"
	"smartfix/services/rating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	owner  = models.Actor{ID: "u1", Role: models.RoleUser, Active: true}
	other  = models.Actor{ID: "u2", Role: models.RoleUser, Active: true}
	admin  = models.Actor{ID: "a1", Role: models.RoleAdmin, Active: true}
	baseTS = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc       *DefaultReviewService
	requests  *memory.RequestStore
	providers *memory.ProviderStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	requests := memory.NewRequestStore()
	reviews := memory.NewReviewStore()
	providers := memory.NewProviderStore(reviews)
	require.NoError(t, providers.Create(ctx, &models.Provider{
		ID: "p1", UserID: "pu1", Active: true, Verified: true, State: models.StateActive,
	}))

	svc := &DefaultReviewService{
		Reviews:   reviews,
		Requests:  requests,
		Providers: providers,
		Ratings:   rating.NewAggregator(reviews, providers, 3, logger),
		Logger:    logger,
		Now:       func() time.Time { return baseTS },
	}
	return &fixture{svc: svc, requests: requests, providers: providers}
}

func (f *fixture) seedRequest(t *testing.T, id, userID string, status models.RequestStatus) {
	t.Helper()
	req := &models.ServiceRequest{
		ID: id, UserID: userID, Title: "Fix the gate", Category: "welding",
		Status: status, CreatedAt: baseTS, UpdatedAt: baseTS,
	}
	if status.HasAssignee() {
		req.AssignedProvider = "p1"
	}
	require.NoError(t, f.requests.Create(context.Background(), req))
}

func (f *fixture) provider(t *testing.T) *models.Provider {
	t.Helper()
	p, err := f.providers.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	return p
}

func intPtr(v int) *int { return &v }

func TestCreateReview_UpdatesRating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", models.StatusCompleted)
	f.seedRequest(t, "r2", "u2", models.StatusCompleted)

	rv, err := f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "r1", Rating: 5, Comment: " great "})
	require.NoError(t, err)
	assert.Equal(t, "p1", rv.ProviderID)
	assert.Equal(t, "great", rv.Comment)
	assert.Equal(t, models.ReviewActive, rv.Status)

	_, err = f.svc.CreateReview(ctx, other, models.CreateReviewInput{ServiceRequestID: "r2", Rating: 4})
	require.NoError(t, err)

	p := f.provider(t)
	assert.Equal(t, 4.5, p.Rating)
	assert.Equal(t, 2, p.TotalReviews)
}

func TestCreateReview_Rules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "done", "u1", models.StatusCompleted)
	f.seedRequest(t, "approved", "u1", models.StatusApproved)
	f.seedRequest(t, "working", "u1", models.StatusInProgress)

	_, err := f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "done", Rating: 6})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.CreateReview(ctx, other, models.CreateReviewInput{ServiceRequestID: "done", Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	for _, id := range []string{"approved", "working"} {
		_, err = f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: id, Rating: 5})
		assert.ErrorIs(t, err, apperrors.ErrInvalidOperation, id)
	}

	_, err = f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "missing", Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "done", Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "done", Rating: 1})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	p := f.provider(t)
	assert.Equal(t, 5.0, p.Rating)
	assert.Equal(t, 1, p.TotalReviews)
}

func TestDeleteReview_ResetsRating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", models.StatusCompleted)

	rv, err := f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "r1", Rating: 5})
	require.NoError(t, err)
	require.Equal(t, 5.0, f.provider(t).Rating)

	assert.ErrorIs(t, f.svc.DeleteReview(ctx, other, rv.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, f.svc.DeleteReview(ctx, owner, rv.ID))

	p := f.provider(t)
	assert.Equal(t, 0.0, p.Rating)
	assert.Equal(t, 0, p.TotalReviews)

	assert.ErrorIs(t, f.svc.DeleteReview(ctx, owner, rv.ID), apperrors.ErrNotFound)

	// soft-deleted reviews still block a second review of the same request
	_, err = f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "r1", Rating: 2})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", models.StatusCompleted)
	f.seedRequest(t, "r2", "u2", models.StatusCompleted)

	mine, err := f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "r1", Rating: 2})
	require.NoError(t, err)
	_, err = f.svc.CreateReview(ctx, other, models.CreateReviewInput{ServiceRequestID: "r2", Rating: 4})
	require.NoError(t, err)
	require.Equal(t, 3.0, f.provider(t).Rating)

	t.Run("author edits rating", func(t *testing.T) {
		updated, err := f.svc.UpdateReview(ctx, owner, mine.ID, models.UpdateReviewInput{Rating: intPtr(5)})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Rating)
		assert.Equal(t, 4.5, f.provider(t).Rating)
	})

	t.Run("others cannot edit", func(t *testing.T) {
		comment := "spam"
		_, err := f.svc.UpdateReview(ctx, other, mine.ID, models.UpdateReviewInput{Comment: &comment})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("author cannot moderate", func(t *testing.T) {
		flagged := models.ReviewFlagged
		_, err := f.svc.UpdateReview(ctx, owner, mine.ID, models.UpdateReviewInput{Status: &flagged})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admin flag drops review from rating", func(t *testing.T) {
		flagged := models.ReviewFlagged
		updated, err := f.svc.UpdateReview(ctx, admin, mine.ID, models.UpdateReviewInput{Status: &flagged})
		require.NoError(t, err)
		assert.Equal(t, models.ReviewFlagged, updated.Status)

		p := f.provider(t)
		assert.Equal(t, 4.0, p.Rating)
		assert.Equal(t, 1, p.TotalReviews)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := f.svc.UpdateReview(ctx, owner, mine.ID, models.UpdateReviewInput{})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("out of range rating", func(t *testing.T) {
		_, err := f.svc.UpdateReview(ctx, owner, mine.ID, models.UpdateReviewInput{Rating: intPtr(0)})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestListProviderReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedRequest(t, "r1", "u1", models.StatusCompleted)

	_, err := f.svc.CreateReview(ctx, owner, models.CreateReviewInput{ServiceRequestID: "r1", Rating: 4})
	require.NoError(t, err)

	list, err := f.svc.ListProviderReviews(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListProviderReviews(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
