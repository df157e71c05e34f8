//go:build integration

package repository_test

import (
	"context"
	"errors"
	"log"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"smartfix/apperrors"
	"smartfix/database"
	"smartfix/database/repository"
	"smartfix/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var client *mongo.Client

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		log.Fatalf("could not start mongo container: %s", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("failed to get connection string: %s", err)
	}
	client, err = database.Connect(ctx, uri, zap.NewNop())
	if err != nil {
		log.Fatalf("failed to connect to test mongo: %s", err)
	}

	code := m.Run()

	_ = client.Disconnect(ctx)
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Printf("could not stop mongo container: %s", err)
	}
	os.Exit(code)
}

// freshDB gives each test its own database.
func freshDB(t *testing.T) *mongo.Database {
	t.Helper()
	db := client.Database("smartfix_" + uuid.NewString()[:8])
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	return db
}

var ts = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func pendingRequest(id, userID string) *models.ServiceRequest {
	return &models.ServiceRequest{
		ID: id, UserID: userID, Title: "Fix tap", Category: "plumbing",
		Urgency: models.UrgencyMedium, Budget: &models.Budget{Min: 10, Max: 40},
		Location:  models.Location{Geo: models.NewGeoPoint(-1.29, 36.82)},
		Status:    models.StatusPending,
		CreatedAt: ts, UpdatedAt: ts,
	}
}

func TestMongoRequestRepo_ConditionalTransitions(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewMongoRequestRepo(freshDB(t))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "u1")))
	assert.ErrorIs(t, repo.Create(ctx, pendingRequest("r1", "u1")), apperrors.ErrAlreadyExists)

	var wins int32
	var g errgroup.Group
	for _, pid := range []string{"p1", "p2", "p3", "p4"} {
		pid := pid
		g.Go(func() error {
			_, err := repo.ApplyTransition(ctx, "r1", models.StatusPending, "",
				bson.M{"status": models.StatusAccepted, "assignedProvider": pid, "acceptedAt": ts}, nil)
			if err == nil {
				atomic.AddInt32(&wins, 1)
				return nil
			}
			if errors.Is(err, apperrors.ErrConcurrencyConflict) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), wins)

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)

	_, err = repo.ApplyTransition(ctx, "r1", models.StatusAccepted, "someone-else",
		bson.M{"status": models.StatusInProgress}, nil)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	cancelled, err := repo.ApplyTransition(ctx, "r1", models.StatusAccepted, got.AssignedProvider,
		bson.M{"status": models.StatusCancelled, "cancelledAt": ts}, []string{"assignedProvider"})
	require.NoError(t, err)
	assert.Empty(t, cancelled.AssignedProvider)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMongoRequestRepo_RejectionsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewMongoRequestRepo(freshDB(t))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, pendingRequest("r1", "u1")))

	rec := models.RejectionRecord{ProviderID: "p1", Reason: "busy", RejectedAt: ts}
	updated, appended, err := repo.AppendRejection(ctx, "r1", rec)
	require.NoError(t, err)
	assert.True(t, appended)
	assert.Len(t, updated.Rejections, 1)

	updated, appended, err = repo.AppendRejection(ctx, "r1", rec)
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Len(t, updated.Rejections, 1)

	require.NoError(t, repo.AddImages(ctx, "r1", []string{"https://img/1.jpg"}))
	require.NoError(t, repo.DeleteIfPending(ctx, "r1"))
	assert.ErrorIs(t, repo.DeleteIfPending(ctx, "r1"), apperrors.ErrNotFound)
}

func TestMongoRequestRepo_Statistics(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewMongoRequestRepo(freshDB(t))
	require.NoError(t, err)

	started := ts
	done := ts.Add(2 * time.Hour)
	for i, status := range []models.RequestStatus{models.StatusApproved, models.StatusApproved, models.StatusInProgress} {
		req := pendingRequest(uuid.NewString(), "u1")
		req.Status = status
		req.AssignedProvider = "p1"
		req.StartedAt = &started
		if status == models.StatusApproved {
			finished := done.Add(time.Duration(i) * 2 * time.Hour)
			req.CompletedAt = &finished
		}
		require.NoError(t, repo.Create(ctx, req))
	}
	noBudget := pendingRequest("r-free", "u1")
	noBudget.Budget = nil
	require.NoError(t, repo.Create(ctx, noBudget))

	counts, err := repo.StatusCountsByUser(ctx, "u1")
	require.NoError(t, err)
	byStatus := map[models.RequestStatus]models.StatusCount{}
	for _, c := range counts {
		byStatus[c.Status] = c
	}
	assert.Equal(t, int64(2), byStatus[models.StatusApproved].Count)
	assert.Equal(t, 80.0, byStatus[models.StatusApproved].Budget)
	assert.Equal(t, int64(1), byStatus[models.StatusPending].Count)
	assert.Equal(t, int64(0), byStatus[models.StatusPending].Budgeted)

	dropped := pendingRequest("r-dropped", "u2")
	dropped.Status = models.StatusAccepted
	dropped.AssignedProvider = "p1"
	require.NoError(t, repo.Create(ctx, dropped))
	_, err = repo.ApplyTransition(ctx, "r-dropped", models.StatusAccepted, "p1",
		bson.M{"status": models.StatusCancelled, "cancelledAt": ts, "cancelledProvider": "p1"}, []string{"assignedProvider"})
	require.NoError(t, err)

	providerCounts, err := repo.StatusCountsByProvider(ctx, "p1")
	require.NoError(t, err)
	byStatus = map[models.RequestStatus]models.StatusCount{}
	for _, c := range providerCounts {
		byStatus[c.Status] = c
	}
	assert.Equal(t, int64(2), byStatus[models.StatusApproved].Count)
	assert.Equal(t, int64(1), byStatus[models.StatusInProgress].Count)
	assert.Equal(t, int64(1), byStatus[models.StatusCancelled].Count)

	times, err := repo.CompletionTimesByProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), times.Count)
	assert.InDelta(t, 3.0, times.Average, 1e-9)
	assert.InDelta(t, 2.0, times.Fastest, 1e-9)
	assert.InDelta(t, 4.0, times.Slowest, 1e-9)
}

func TestMongoProviderRepo_CandidatesAndRating(t *testing.T) {
	ctx := context.Background()
	db := freshDB(t)
	providers, err := repository.NewMongoProviderRepo(db)
	require.NoError(t, err)
	reviews, err := repository.NewMongoReviewRepo(db)
	require.NoError(t, err)

	near := models.NewGeoPoint(-1.2921, 36.8219)
	for _, p := range []*models.Provider{
		{ID: "close", UserID: "a", Verified: true, Active: true, State: models.StateActive, Services: []string{"Plumbing"}, ServiceArea: models.ServiceArea{Geo: near, RadiusKm: 10}},
		{ID: "far", UserID: "b", Verified: true, Active: true, State: models.StateActive, Services: []string{"plumbing"}, ServiceArea: models.ServiceArea{Geo: models.NewGeoPoint(-0.3, 36.07), RadiusKm: 10}},
		{ID: "unverified", UserID: "c", Active: true, State: models.StateActive, Services: []string{"plumbing"}, ServiceArea: models.ServiceArea{Geo: near}},
		{ID: "painter", UserID: "d", Verified: true, Active: true, State: models.StateActive, Services: []string{"painting"}, ServiceArea: models.ServiceArea{Geo: near}},
	} {
		require.NoError(t, providers.Create(ctx, p))
	}
	for i, rating := range []int{5, 4} {
		require.NoError(t, reviews.Create(ctx, &models.Review{
			ID: uuid.NewString(), Rating: rating, Status: models.ReviewActive, State: models.StateActive,
			UserID: "u" + string(rune('1'+i)), ProviderID: "close", ServiceRequestID: "r1", CreatedAt: ts,
		}))
	}

	candidates, err := providers.Candidates(ctx, repository.CandidateQuery{Category: "plumbing", Near: near, MaxDistanceKm: 50})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "close", candidates[0].Provider.ID)
	assert.InDelta(t, 4.5, candidates[0].AverageRating, 1e-9)
	assert.Equal(t, 2, candidates[0].ReviewCount)
	assert.Less(t, candidates[0].DistanceKm, 0.1)

	version, err := providers.RatingVersion(ctx, "close")
	require.NoError(t, err)
	require.NoError(t, providers.SetRatingSummary(ctx, "close", version, models.RatingSummary{Rating: 4.5, TotalReviews: 2}))
	err = providers.SetRatingSummary(ctx, "close", version, models.RatingSummary{Rating: 1, TotalReviews: 1})
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	require.NoError(t, providers.IncrementCompletedJobs(ctx, "close"))
	p, err := providers.GetByID(ctx, "close")
	require.NoError(t, err)
	assert.Equal(t, 4.5, p.Rating)
	assert.Equal(t, 2, p.TotalReviews)
	assert.Equal(t, 1, p.CompletedJobs)
}

func TestMongoReviewRepo_UniqueAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	reviews, err := repository.NewMongoReviewRepo(freshDB(t))
	require.NoError(t, err)

	rv := &models.Review{
		ID: "rv1", Rating: 5, Status: models.ReviewActive, State: models.StateActive,
		UserID: "u1", ProviderID: "p1", ServiceRequestID: "r1", CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, reviews.Create(ctx, rv))

	dup := *rv
	dup.ID = "rv2"
	assert.ErrorIs(t, reviews.Create(ctx, &dup), apperrors.ErrAlreadyExists)

	avg, count, err := reviews.AggregateForProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
	assert.Equal(t, 1, count)

	_, err = reviews.SoftDelete(ctx, "rv1")
	require.NoError(t, err)
	_, err = reviews.GetByID(ctx, "rv1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	avg, count, err = reviews.AggregateForProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0, count)

	exists, err := reviews.ExistsForRequest(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMongoUserRepo(t *testing.T) {
	ctx := context.Background()
	users, err := repository.NewMongoUserRepo(freshDB(t))
	require.NoError(t, err)

	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", Role: models.RoleUser, Active: true, CreatedAt: ts}))
	require.NoError(t, users.SetFCMToken(ctx, "u1", "token-abc"))

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "token-abc", u.FCMToken)

	assert.ErrorIs(t, users.SetFCMToken(ctx, "nobody", "x"), apperrors.ErrNotFound)
}
