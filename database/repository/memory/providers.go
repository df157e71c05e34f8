package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"smartfix/apperrors"
	providerRepo "smartfix/database/repository/provider"
	"smartfix/models"
	"smartfix/utils"
)

// ProviderStore implements providerRepo.ProviderRepository. Candidates
// reads live review statistics from the linked ReviewStore.
type ProviderStore struct {
	mu      sync.Mutex
	data    map[string]models.Provider
	reviews *ReviewStore
}

var _ providerRepo.ProviderRepository = (*ProviderStore)(nil)

func NewProviderStore(reviews *ReviewStore) *ProviderStore {
	return &ProviderStore{data: map[string]models.Provider{}, reviews: reviews}
}

func (s *ProviderStore) Create(_ context.Context, p *models.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data {
		if existing.ID == p.ID || existing.UserID == p.UserID {
			return fmt.Errorf("provider for user %s: %w", p.UserID, apperrors.ErrAlreadyExists)
		}
	}
	stored, err := clone(*p)
	if err != nil {
		return err
	}
	s.data[p.ID] = stored
	return nil
}

func (s *ProviderStore) GetByID(_ context.Context, id string) (*models.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok || p.Deleted() {
		return nil, apperrors.NotFound("provider", id)
	}
	out, err := clone(p)
	return &out, err
}

func (s *ProviderStore) GetByUserID(_ context.Context, userID string) (*models.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data {
		if p.UserID == userID && !p.Deleted() {
			out, err := clone(p)
			return &out, err
		}
	}
	return nil, apperrors.NotFound("provider", userID)
}

func (s *ProviderStore) Candidates(ctx context.Context, q providerRepo.CandidateQuery) ([]models.ProviderCandidate, error) {
	s.mu.Lock()
	var eligible []models.Provider
	for _, p := range s.data {
		if p.Deleted() || !p.Active || !p.Verified || !p.Offers(q.Category) {
			continue
		}
		eligible = append(eligible, p)
	}
	s.mu.Unlock()

	out := []models.ProviderCandidate{}
	for _, p := range eligible {
		if !p.ServiceArea.Geo.Valid() {
			continue
		}
		d := utils.HaversineKm(q.Near.Lat(), q.Near.Lng(), p.ServiceArea.Geo.Lat(), p.ServiceArea.Geo.Lng())
		if d > q.MaxDistanceKm {
			continue
		}
		avg, count, err := s.reviews.AggregateForProvider(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		c, err := clone(p)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ProviderCandidate{Provider: c, DistanceKm: d, AverageRating: avg, ReviewCount: count})
	}
	// $geoNear returns nearest first
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func (s *ProviderStore) RatingVersion(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok {
		return 0, apperrors.NotFound("provider", id)
	}
	return p.RatingVersion, nil
}

func (s *ProviderStore) SetRatingSummary(_ context.Context, id string, version int64, summary models.RatingSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok || p.RatingVersion != version {
		return apperrors.ConcurrencyConflict("provider", id, "rating summary changed concurrently")
	}
	p.Rating = summary.Rating
	p.TotalReviews = summary.TotalReviews
	p.RatingVersion++
	p.UpdatedAt = time.Now().UTC()
	s.data[id] = p
	return nil
}

func (s *ProviderStore) IncrementCompletedJobs(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok {
		return apperrors.NotFound("provider", id)
	}
	p.CompletedJobs++
	p.UpdatedAt = time.Now().UTC()
	s.data[id] = p
	return nil
}

// SoftDelete marks a provider deleted. Used to set up fixtures.
func (s *ProviderStore) SoftDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.data[id]; ok {
		p.State = models.StateDeleted
		s.data[id] = p
	}
}

