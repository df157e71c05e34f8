package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"smartfix/apperrors"
	requestRepo "smartfix/database/repository/request"
	"smartfix/models"

	"go.mongodb.org/mongo-driver/bson"
)

// RequestStore implements requestRepo.RequestRepository.
type RequestStore struct {
	mu   sync.Mutex
	data map[string]models.ServiceRequest
}

var _ requestRepo.RequestRepository = (*RequestStore)(nil)

func NewRequestStore() *RequestStore {
	return &RequestStore{data: map[string]models.ServiceRequest{}}
}

func (s *RequestStore) Create(_ context.Context, req *models.ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[req.ID]; ok {
		return fmt.Errorf("request %s: %w", req.ID, apperrors.ErrAlreadyExists)
	}
	stored, err := clone(*req)
	if err != nil {
		return err
	}
	s.data[req.ID] = stored
	return nil
}

func (s *RequestStore) GetByID(_ context.Context, id string) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *RequestStore) get(id string) (*models.ServiceRequest, error) {
	req, ok := s.data[id]
	if !ok {
		return nil, apperrors.NotFound("request", id)
	}
	out, err := clone(req)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestStore) List(_ context.Context, filter requestRepo.ListFilter) ([]models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ServiceRequest{}
	for _, req := range s.data {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.ProviderID != "" && req.AssignedProvider != filter.ProviderID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		c, err := clone(req)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *RequestStore) ApplyTransition(_ context.Context, id string, from models.RequestStatus, expectedProvider string, set bson.M, unset []string) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.data[id]
	if !ok || req.Status != from || req.AssignedProvider != expectedProvider {
		return nil, apperrors.ConcurrencyConflict("request", id, fmt.Sprintf("request is no longer %s", from))
	}
	updated, err := patch(req, set, unset)
	if err != nil {
		return nil, err
	}
	s.data[id] = updated
	return s.get(id)
}

func (s *RequestStore) AppendRejection(_ context.Context, id string, rec models.RejectionRecord) (*models.ServiceRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.data[id]
	if !ok {
		return nil, false, apperrors.NotFound("request", id)
	}
	if req.Status != models.StatusPending {
		return nil, false, apperrors.ConcurrencyConflict("request", id, "request is no longer pending")
	}
	if req.RejectedBy(rec.ProviderID) {
		out, err := s.get(id)
		return out, false, err
	}
	req.Rejections = append(append([]models.RejectionRecord{}, req.Rejections...), rec)
	req.UpdatedAt = rec.RejectedAt
	s.data[id] = req
	out, err := s.get(id)
	return out, true, err
}

func (s *RequestStore) AddImages(_ context.Context, id string, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.data[id]
	if !ok {
		return apperrors.NotFound("request", id)
	}
	req.Images = append(append([]string{}, req.Images...), urls...)
	req.UpdatedAt = time.Now().UTC()
	s.data[id] = req
	return nil
}

func (s *RequestStore) DeleteIfPending(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.data[id]
	if !ok {
		return apperrors.NotFound("request", id)
	}
	if req.Status != models.StatusPending {
		return apperrors.InvalidOperation("only pending requests can be deleted")
	}
	delete(s.data, id)
	return nil
}

func (s *RequestStore) statusCounts(match func(models.ServiceRequest) bool) []models.StatusCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	byStatus := map[models.RequestStatus]*models.StatusCount{}
	for _, req := range s.data {
		if !match(req) {
			continue
		}
		row, ok := byStatus[req.Status]
		if !ok {
			row = &models.StatusCount{Status: req.Status}
			byStatus[req.Status] = row
		}
		row.Count++
		if req.Budget != nil {
			row.Budget += req.Budget.Max
			row.Budgeted++
		}
	}
	out := []models.StatusCount{}
	for _, st := range models.AllStatuses {
		if row, ok := byStatus[st]; ok {
			out = append(out, *row)
		}
	}
	return out
}

func (s *RequestStore) StatusCountsByUser(_ context.Context, userID string) ([]models.StatusCount, error) {
	return s.statusCounts(func(r models.ServiceRequest) bool { return r.UserID == userID }), nil
}

func (s *RequestStore) StatusCountsByProvider(_ context.Context, providerID string) ([]models.StatusCount, error) {
	return s.statusCounts(func(r models.ServiceRequest) bool {
		return r.AssignedProvider == providerID || r.CancelledProvider == providerID
	}), nil
}

func (s *RequestStore) CompletionTimesByProvider(_ context.Context, providerID string) (models.CompletionTimes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out models.CompletionTimes
	var total float64
	for _, req := range s.data {
		if req.AssignedProvider != providerID || req.StartedAt == nil || req.CompletedAt == nil {
			continue
		}
		hours := req.CompletedAt.Sub(*req.StartedAt).Hours()
		if out.Count == 0 || hours < out.Fastest {
			out.Fastest = hours
		}
		if out.Count == 0 || hours > out.Slowest {
			out.Slowest = hours
		}
		total += hours
		out.Count++
	}
	if out.Count > 0 {
		out.Average = total / float64(out.Count)
	}
	return out, nil
}
