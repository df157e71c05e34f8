package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"smartfix/apperrors"
	reviewRepo "smartfix/database/repository/review"
	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ReviewStore implements reviewRepo.ReviewRepository.
type ReviewStore struct {
	mu   sync.Mutex
	data map[string]models.Review
}

var _ reviewRepo.ReviewRepository = (*ReviewStore)(nil)

func NewReviewStore() *ReviewStore {
	return &ReviewStore{data: map[string]models.Review{}}
}

func (s *ReviewStore) Create(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.data {
		if r.ID == review.ID || (r.UserID == review.UserID && r.ServiceRequestID == review.ServiceRequestID) {
			return fmt.Errorf("review for request %s: %w", review.ServiceRequestID, apperrors.ErrAlreadyExists)
		}
	}
	stored, err := clone(*review)
	if err != nil {
		return err
	}
	s.data[review.ID] = stored
	return nil
}

func (s *ReviewStore) GetByID(_ context.Context, id string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[id]
	if !ok || r.State == models.StateDeleted {
		return nil, apperrors.NotFound("review", id)
	}
	out, err := clone(r)
	return &out, err
}

func (s *ReviewStore) ExistsForRequest(_ context.Context, userID, requestID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.data {
		if r.UserID == userID && r.ServiceRequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

func (s *ReviewStore) Update(_ context.Context, id string, set bson.M) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[id]
	if !ok || r.State == models.StateDeleted {
		return nil, apperrors.NotFound("review", id)
	}
	updated, err := patch(r, set, nil)
	if err != nil {
		return nil, err
	}
	s.data[id] = updated
	out, err := clone(updated)
	return &out, err
}

func (s *ReviewStore) SoftDelete(ctx context.Context, id string) (*models.Review, error) {
	return s.Update(ctx, id, bson.M{"state": models.StateDeleted, "updatedAt": time.Now().UTC()})
}

func (s *ReviewStore) ListByProvider(_ context.Context, providerID string) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Review{}
	for _, r := range s.data {
		if r.ProviderID != providerID || r.State == models.StateDeleted || r.Status == models.ReviewRemoved {
			continue
		}
		c, err := clone(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ReviewStore) AggregateForProvider(_ context.Context, providerID string) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum, count int
	for _, r := range s.data {
		if r.ProviderID == providerID && r.Counts() {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}
