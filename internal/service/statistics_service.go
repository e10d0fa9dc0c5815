package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/vo-tracker-api/internal/models"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

const (
	// StatisticsCacheKey prefixes the Redis keys holding the statistics view.
	StatisticsCacheKey = "vo:stats"
	// StatisticsVersionKey counts invalidations. The view is stored under
	// StatisticsCacheKey suffixed with the version read before aggregating.
	StatisticsVersionKey = StatisticsCacheKey + ":version"
)

func statisticsKey(version int64) string {
	return fmt.Sprintf("%s:%d", StatisticsCacheKey, version)
}

type statisticsRepository interface {
	AggregateByStatus(ctx context.Context) ([]models.StatusAggregate, error)
}

// StatisticsService serves the reporting view over non-excluded VOs.
type StatisticsService struct {
	repo   statisticsRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewStatisticsService constructs a StatisticsService. cache may be nil.
func NewStatisticsService(repo statisticsRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{repo: repo, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Get returns the statistics view and whether it came from cache.
func (s *StatisticsService) Get(ctx context.Context) (*models.VOStatistics, bool, error) {
	// The version is read before aggregating so a result raced by an
	// invalidation lands under a key no later reader asks for.
	version, cacheable := s.cache.Version(ctx, StatisticsVersionKey)
	key := statisticsKey(version)
	var cached models.VOStatistics
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	rows, err := s.repo.AggregateByStatus(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate variation orders")
	}
	stats, err := Aggregate(rows)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate variation orders")
	}
	stats.GeneratedAt = s.now().UTC()

	if cacheable {
		s.cache.Set(ctx, key, stats, s.ttl)
	}
	return stats, false, nil
}

// Invalidate advances the view version so the next read recomputes it.
func (s *StatisticsService) Invalidate(ctx context.Context) {
	s.cache.Bump(ctx, StatisticsVersionKey)
}

// Aggregate folds per-status rows into counts, totals and the breakdown.
// Every status appears in the breakdown even with no rows. A row carrying a
// status outside the workflow fails the whole view so totals never disagree
// with the counts.
func Aggregate(rows []models.StatusAggregate) (*models.VOStatistics, error) {
	stats := &models.VOStatistics{
		TotalSubmittedValue: decimal.Zero,
		TotalApprovedValue:  decimal.Zero,
	}
	counts := make(map[models.VOStatus]int, 5)
	amounts := make(map[models.VOStatus]decimal.Decimal, 5)

	for _, row := range rows {
		switch row.Status {
		case models.VOStatusPendingWithFFC:
			stats.Counts.PendingWithFFC += row.Count
		case models.VOStatusPendingWithRSG:
			stats.Counts.PendingWithRSG += row.Count
		case models.VOStatusPendingWithRSGFFC:
			stats.Counts.PendingWithRSGFFC += row.Count
		case models.VOStatusApprovedAwaitingDVO:
			stats.Counts.ApprovedAwaitingDVO += row.Count
		case models.VOStatusDVORRIssued:
			stats.Counts.DVORRIssued += row.Count
		default:
			return nil, fmt.Errorf("unknown variation order status %q", row.Status)
		}
		stats.Counts.Total += row.Count
		counts[row.Status] += row.Count
		amounts[row.Status] = amounts[row.Status].Add(row.ProposalSum)
		stats.TotalSubmittedValue = stats.TotalSubmittedValue.Add(row.ProposalSum)
		stats.TotalApprovedValue = stats.TotalApprovedValue.Add(row.ApprovedSum)
	}

	stats.Breakdown = make([]models.StatusBreakdown, 0, 5)
	for _, status := range models.VOStatuses() {
		amount, ok := amounts[status]
		if !ok {
			amount = decimal.Zero
		}
		stats.Breakdown = append(stats.Breakdown, models.StatusBreakdown{
			Status: status,
			Label:  status.Label(),
			Count:  counts[status],
			Amount: amount,
		})
	}
	return stats, nil
}
