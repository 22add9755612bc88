package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// ReportService assembles the supervisors' reports from order snapshots.
// Statistics and groupings are derived in memory so both stores produce
// identical numbers.
type ReportService struct {
	orderRepo ports.OrderRepository
	cache     ports.ReportCache
	cacheTTL  time.Duration
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service. cache may be nil.
func NewReportService(orderRepo ports.OrderRepository, cache ports.ReportCache, cacheTTL time.Duration) *ReportService {
	return &ReportService{
		orderRepo: orderRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// GeneralReport builds the filtered report: the matching orders plus the
// statistics and groupings computed over exactly that snapshot.
func (s *ReportService) GeneralReport(ctx context.Context, filter ports.OrderFilter) (*domain.Report, error) {
	key := reportCacheKey(filter)

	if s.cache != nil {
		if payload, err := s.cache.Get(ctx, key); err == nil && payload != nil {
			var cached domain.Report
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	orders, err := s.orderRepo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Orders:     orders,
		Statistics: domain.ComputeStatistics(orders),
		Groupings:  domain.ComputeGroupings(orders),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(report); err == nil {
			// Cache failures are not worth failing the report over.
			_ = s.cache.Set(ctx, key, payload, s.cacheTTL)
		}
	}

	return report, nil
}

// TeamReport aggregates workload and completion per destination team.
func (s *ReportService) TeamReport(ctx context.Context) ([]domain.TeamPerformance, error) {
	return s.orderRepo.TeamSummary(ctx)
}

// ListTeams returns the destination teams that actually appear in the data,
// falling back to the full closed set when nothing has been recorded yet.
func (s *ReportService) ListTeams(ctx context.Context) ([]string, error) {
	teams, err := s.orderRepo.ListTeams(ctx)
	if err != nil || len(teams) == 0 {
		fallback := make([]string, 0, len(domain.ValidTeams))
		for _, team := range domain.ValidTeams {
			fallback = append(fallback, string(team))
		}
		return fallback, nil
	}
	return teams, nil
}

func reportCacheKey(filter ports.OrderFilter) string {
	return fmt.Sprintf("report:general:%s:%s:%s", filter.Team, filter.Status, filter.Priority)
}
