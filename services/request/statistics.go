package request

import (
	"context"
	"math"

	"smartfix/models"
	"smartfix/services/permission"

	"golang.org/x/sync/errgroup"
)

func (s *DefaultRequestService) GetStatisticsByUser(ctx context.Context, actor models.Actor, userID string) (*models.UserStatistics, error) {
	if err := permission.CanViewUserStatistics(actor, userID); err != nil {
		return nil, err
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	counts, err := s.Requests.StatusCountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.UserStatistics{UserID: userID, ByStatus: emptyByStatus()}
	var budgeted int64
	for _, c := range counts {
		stats.ByStatus[c.Status] += c.Count
		stats.Total += c.Count
		stats.TotalBudget += c.Budget
		budgeted += c.Budgeted
	}
	stats.CompletionRate = completionRate(stats.ByStatus, stats.Total)
	if budgeted > 0 {
		stats.AverageBudget = round2(stats.TotalBudget / float64(budgeted))
	}
	stats.TotalBudget = round2(stats.TotalBudget)
	return stats, nil
}

// GetStatisticsByProvider runs the status and completion-time aggregations
// in parallel.
func (s *DefaultRequestService) GetStatisticsByProvider(ctx context.Context, actor models.Actor, providerID string) (*models.ProviderStatistics, error) {
	provider, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if err := permission.CanViewProviderStatistics(actor, provider); err != nil {
		return nil, err
	}

	var (
		counts []models.StatusCount
		times  models.CompletionTimes
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.Requests.StatusCountsByProvider(gctx, providerID)
		return err
	})
	g.Go(func() error {
		var err error
		times, err = s.Requests.CompletionTimesByProvider(gctx, providerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &models.ProviderStatistics{
		ProviderID:    providerID,
		ByStatus:      emptyByStatus(),
		Rating:        provider.Rating,
		TotalReviews:  provider.TotalReviews,
		CompletedJobs: provider.CompletedJobs,
	}
	for _, c := range counts {
		stats.ByStatus[c.Status] += c.Count
		stats.Total += c.Count
		if c.Status == models.StatusApproved {
			stats.Revenue += c.Budget
		}
	}
	stats.Revenue = round2(stats.Revenue)
	stats.CompletionRate = completionRate(stats.ByStatus, stats.Total)
	if times.Count > 0 {
		stats.AverageCompletionHours = round2(times.Average)
		stats.FastestCompletionHours = round2(times.Fastest)
		stats.SlowestCompletionHours = round2(times.Slowest)
	}
	return stats, nil
}

func emptyByStatus() map[models.RequestStatus]int64 {
	m := make(map[models.RequestStatus]int64, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		m[st] = 0
	}
	return m
}

// completionRate is the fraction of requests that reached completed or
// approved.
func completionRate(by map[models.RequestStatus]int64, total int64) float64 {
	if total == 0 {
		return 0
	}
	done := by[models.StatusCompleted] + by[models.StatusApproved]
	return math.Round(float64(done)/float64(total)*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
