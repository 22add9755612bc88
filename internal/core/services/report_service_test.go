package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	"github.com/kronos-hms/os-tracker-backend/internal/core/mocks"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
	"github.com/kronos-hms/os-tracker-backend/internal/core/services"
)

func TestReportService_GeneralReport(t *testing.T) {
	ctx := context.Background()

	snapshot := []*domain.ServiceOrder{
		{ID: 2, Status: domain.StatusCompleted, OriginTeam: "UTI", DestinationTeam: domain.TeamIT, OpenedAt: time.Now()},
		{ID: 1, Status: domain.StatusOpen, OriginTeam: "UTI", DestinationTeam: domain.TeamIT, OpenedAt: time.Now()},
	}

	t.Run("without cache", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewReportService(repo, nil, 0)

		filter := ports.OrderFilter{Team: "TI"}
		repo.On("ListByFilter", ctx, filter).Return(snapshot, nil)

		report, err := svc.GeneralReport(ctx, filter)

		require.NoError(t, err)
		assert.Len(t, report.Orders, 2)
		assert.Equal(t, 2, report.Statistics.TotalOrders)
		assert.Equal(t, 1, report.Statistics.Completed)
		assert.Equal(t, "UTI", report.Statistics.TopOriginTeam)
		assert.Equal(t, 2, report.Groupings.ByExecutingTeam["TI"])
	})

	t.Run("cache miss populates the cache", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		cache := mocks.NewMockReportCache()
		svc := services.NewReportService(repo, cache, 30*time.Second)

		filter := ports.OrderFilter{}
		cache.On("Get", ctx, "report:general:::").Return(nil, errors.New("cache miss"))
		repo.On("ListByFilter", ctx, filter).Return(snapshot, nil)
		cache.On("Set", ctx, "report:general:::", mock.Anything, 30*time.Second).Return(nil)

		report, err := svc.GeneralReport(ctx, filter)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Statistics.TotalOrders)
		cache.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		cache := mocks.NewMockReportCache()
		svc := services.NewReportService(repo, cache, 30*time.Second)

		cached := &domain.Report{
			Statistics: domain.Statistics{TotalOrders: 7, TopOriginTeam: "Farmácia"},
		}
		payload, err := json.Marshal(cached)
		require.NoError(t, err)

		cache.On("Get", ctx, "report:general:::").Return(payload, nil)

		report, err := svc.GeneralReport(ctx, ports.OrderFilter{})

		require.NoError(t, err)
		assert.Equal(t, 7, report.Statistics.TotalOrders)
		assert.Equal(t, "Farmácia", report.Statistics.TopOriginTeam)
		repo.AssertNotCalled(t, "ListByFilter")
	})

	t.Run("cache write failure does not fail the report", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		cache := mocks.NewMockReportCache()
		svc := services.NewReportService(repo, cache, time.Second)

		cache.On("Get", ctx, mock.Anything).Return(nil, errors.New("down"))
		repo.On("ListByFilter", ctx, mock.Anything).Return(snapshot, nil)
		cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("down"))

		report, err := svc.GeneralReport(ctx, ports.OrderFilter{})

		require.NoError(t, err)
		assert.Equal(t, 2, report.Statistics.TotalOrders)
	})
}

func TestReportService_TeamReport(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockOrderRepository()
	svc := services.NewReportService(repo, nil, 0)

	summary := []domain.TeamPerformance{
		{Team: "TI", TotalOrders: 12, Completed: 9, SuccessRate: 75.0, AvgResolutionHrs: 5.4},
		{Team: "Manutenção", TotalOrders: 4, Completed: 1, SuccessRate: 25.0, AvgResolutionHrs: 30.2},
	}
	repo.On("TeamSummary", ctx).Return(summary, nil)

	rows, err := svc.TeamReport(ctx)

	require.NoError(t, err)
	assert.Equal(t, summary, rows)
}

func TestReportService_ListTeams(t *testing.T) {
	ctx := context.Background()

	t.Run("teams from data", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewReportService(repo, nil, 0)

		repo.On("ListTeams", ctx).Return([]string{"Manutenção", "TI"}, nil)

		teams, err := svc.ListTeams(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"Manutenção", "TI"}, teams)
	})

	t.Run("empty data falls back to the closed set", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewReportService(repo, nil, 0)

		repo.On("ListTeams", ctx).Return([]string{}, nil)

		teams, err := svc.ListTeams(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"TI", "Manutenção"}, teams)
	})
}
