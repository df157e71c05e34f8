// Package matching ranks eligible providers for a service request. It
// only reads; nothing here mutates requests or providers.
package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"smartfix/apperrors"
	providerRepo "smartfix/database/repository/provider"
	"smartfix/models"
	"smartfix/utils"

	"go.uber.org/zap"
)

// CandidateSource returns providers near a point with their live review
// statistics. The repository pre-filters; Rank re-checks every rule.
type CandidateSource interface {
	Candidates(ctx context.Context, q providerRepo.CandidateQuery) ([]models.ProviderCandidate, error)
}

// Defaults apply to criteria the caller leaves unset.
type Defaults struct {
	MaxDistanceKm float64
	MinRating     float64
	MaxProviders  int
	CacheTTL      time.Duration
}

// Criteria is the resolved set of bounds a ranking runs with.
type Criteria struct {
	MaxDistanceKm float64
	MinRating     float64
	MaxProviders  int
}

// Engine matches providers to requests, caching ranked results briefly.
type Engine struct {
	source   CandidateSource
	cache    Cache
	defaults Defaults
	logger   *zap.Logger
}

// NewEngine builds an engine. cache may be nil.
func NewEngine(source CandidateSource, cache Cache, defaults Defaults, logger *zap.Logger) *Engine {
	return &Engine{source: source, cache: cache, defaults: defaults, logger: logger}
}

// Resolve validates caller criteria and fills in defaults for the fields
// the caller did not set.
func (e *Engine) Resolve(c models.MatchCriteria) (Criteria, error) {
	resolved := Criteria{
		MaxDistanceKm: e.defaults.MaxDistanceKm,
		MinRating:     e.defaults.MinRating,
		MaxProviders:  e.defaults.MaxProviders,
	}

	var msgs []string
	if c.MaxDistanceKm != nil {
		if *c.MaxDistanceKm <= 0 {
			msgs = append(msgs, "maxDistanceKm must be positive")
		}
		resolved.MaxDistanceKm = *c.MaxDistanceKm
	}
	if c.MinRating != nil {
		if *c.MinRating < 0 || *c.MinRating > 5 {
			msgs = append(msgs, "minRating must be between 0 and 5")
		}
		resolved.MinRating = *c.MinRating
	}
	if c.MaxProviders != nil {
		if *c.MaxProviders < 1 {
			msgs = append(msgs, "maxProviders must be at least 1")
		}
		resolved.MaxProviders = *c.MaxProviders
	}
	if len(msgs) > 0 {
		return Criteria{}, apperrors.Validation(msgs...)
	}
	return resolved, nil
}

// Match returns the ranked providers for req.
func (e *Engine) Match(ctx context.Context, req *models.ServiceRequest, c models.MatchCriteria) ([]models.MatchedProvider, error) {
	if !req.Location.Geo.Valid() {
		return nil, apperrors.Validation("request has no valid location")
	}
	criteria, err := e.Resolve(c)
	if err != nil {
		return nil, err
	}

	key := cacheKey(req.ID, criteria)
	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("Match cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	candidates, err := e.source.Candidates(ctx, providerRepo.CandidateQuery{
		Category:      req.Category,
		Near:          req.Location.Geo,
		MaxDistanceKm: criteria.MaxDistanceKm,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates for request %s: %w", req.ID, err)
	}

	ranked := Rank(candidates, req.Category, criteria)
	e.logger.Debug("Providers matched",
		zap.String("requestId", req.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("matched", len(ranked)),
	)

	if e.cache != nil && e.defaults.CacheTTL > 0 {
		if err := e.cache.Set(ctx, key, ranked, e.defaults.CacheTTL); err != nil {
			e.logger.Warn("Match cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return ranked, nil
}

func cacheKey(requestID string, c Criteria) string {
	return fmt.Sprintf("match:%s:%g:%g:%d", requestID, c.MaxDistanceKm, c.MinRating, c.MaxProviders)
}

// Rank filters candidates and orders them by rating desc, review count
// desc, distance asc and provider id asc. A provider's own radius, when
// set, caps the distance bound.
func Rank(candidates []models.ProviderCandidate, category string, c Criteria) []models.MatchedProvider {
	type scored struct {
		cand   models.ProviderCandidate
		rating float64
	}

	var eligible []scored
	for _, cand := range candidates {
		p := cand.Provider
		if p.Deleted() || !p.Active || !p.Verified || !p.Offers(category) {
			continue
		}
		limit := c.MaxDistanceKm
		if p.ServiceArea.RadiusKm > 0 {
			limit = math.Min(limit, p.ServiceArea.RadiusKm)
		}
		if cand.DistanceKm > limit {
			continue
		}
		rating := utils.Round1(cand.AverageRating)
		if rating < c.MinRating {
			continue
		}
		eligible = append(eligible, scored{cand: cand, rating: rating})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.rating != b.rating {
			return a.rating > b.rating
		}
		if a.cand.ReviewCount != b.cand.ReviewCount {
			return a.cand.ReviewCount > b.cand.ReviewCount
		}
		if a.cand.DistanceKm != b.cand.DistanceKm {
			return a.cand.DistanceKm < b.cand.DistanceKm
		}
		return a.cand.Provider.ID < b.cand.Provider.ID
	})

	if c.MaxProviders > 0 && len(eligible) > c.MaxProviders {
		eligible = eligible[:c.MaxProviders]
	}

	out := make([]models.MatchedProvider, 0, len(eligible))
	for i, s := range eligible {
		p := s.cand.Provider
		out = append(out, models.MatchedProvider{
			ProviderID:    p.ID,
			UserID:        p.UserID,
			BusinessName:  p.BusinessName,
			Services:      p.Services,
			Rating:        s.rating,
			ReviewCount:   s.cand.ReviewCount,
			CompletedJobs: p.CompletedJobs,
			DistanceKm:    math.Round(s.cand.DistanceKm*100) / 100,
			Rank:          i + 1,
		})
	}
	return out
}
