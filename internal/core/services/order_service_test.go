package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/mocks"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
	"github.com/kronos-hms/os-tracker-backend/internal/core/services"
)

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates order with authenticated requester", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		repo.On("Create", ctx, mock.MatchedBy(func(order *domain.ServiceOrder) bool {
			return order.RequesterID == 42 &&
				order.Status == domain.StatusOpen &&
				order.DestinationTeam == domain.TeamIT
		})).Return(int64(10), nil)

		id, err := svc.CreateOrder(ctx, ports.CreateOrderParams{
			RequesterID:     42,
			DestinationTeam: "TI",
			Description:     "Impressora sem rede",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(10), id)
		repo.AssertExpectations(t)
	})

	t.Run("falls back to configured requester", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 1)

		repo.On("Create", ctx, mock.MatchedBy(func(order *domain.ServiceOrder) bool {
			return order.RequesterID == 1
		})).Return(int64(11), nil)

		id, err := svc.CreateOrder(ctx, ports.CreateOrderParams{
			DestinationTeam: "Manutenção",
			Defeito:         "ar condicionado pingando",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(11), id)
		repo.AssertExpectations(t)
	})

	t.Run("rejects anonymous order when fallback disabled", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		_, err := svc.CreateOrder(ctx, ports.CreateOrderParams{
			DestinationTeam: "TI",
			Description:     "sem solicitante",
		})

		assert.ErrorIs(t, err, apperrors.ErrRequesterRequired)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects invalid team", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		_, err := svc.CreateOrder(ctx, ports.CreateOrderParams{
			RequesterID:     42,
			DestinationTeam: "Enfermagem",
			Description:     "x",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidTeam)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestOrderService_ListByDestinationTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("valid team", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		expected := []*domain.ServiceOrder{{ID: 1}, {ID: 2}}
		repo.On("ListByDestinationTeam", ctx, domain.TeamMaintenance).Return(expected, nil)

		orders, err := svc.ListByDestinationTeam(ctx, "Manutenção")

		require.NoError(t, err)
		assert.Equal(t, expected, orders)
	})

	t.Run("invalid team", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		_, err := svc.ListByDestinationTeam(ctx, "Radiologia")

		assert.ErrorIs(t, err, apperrors.ErrInvalidTeam)
	})
}

func TestOrderService_ListByRequester(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockOrderRepository()
	svc := services.NewOrderService(repo, 1)

	// The creation fallback never leaks into listing; an anonymous caller
	// gets an error even with a fallback id configured.
	_, err := svc.ListByRequester(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrRequesterRequired)

	repo.On("ListByRequester", ctx, int64(5)).Return([]*domain.ServiceOrder{}, nil)
	orders, err := svc.ListByRequester(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	report := "substituída fonte"
	materials := "fonte ATX 500W"
	critical := "Crítica"

	t.Run("passes full overwrite to the store", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		repo.On("UpdateStatus", ctx, int64(3), mock.MatchedBy(func(u ports.StatusUpdate) bool {
			return u.Status == domain.StatusCompleted &&
				u.TechnicalReport != nil && *u.TechnicalReport == report &&
				u.MaterialsUsed != nil && *u.MaterialsUsed == materials &&
				u.Priority != nil && *u.Priority == domain.PriorityCritical &&
				!u.ClosedAt.IsZero()
		})).Return(int64(1), nil)

		affected, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			OrderID:         3,
			Status:          "Finalizado",
			TechnicalReport: &report,
			MaterialsUsed:   &materials,
			Priority:        &critical,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		repo.AssertExpectations(t)
	})

	t.Run("nil report and materials are forwarded as nil", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		repo.On("UpdateStatus", ctx, int64(3), mock.MatchedBy(func(u ports.StatusUpdate) bool {
			return u.TechnicalReport == nil && u.MaterialsUsed == nil && u.Priority == nil
		})).Return(int64(1), nil)

		_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			OrderID: 3,
			Status:  "Em Andamento",
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{OrderID: 3, Status: "Concluído"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
		repo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("invalid piggybacked priority", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		bad := "Urgente"
		_, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			OrderID:  3,
			Status:   "Aberto",
			Priority: &bad,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidPriority)
		repo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("zero affected rows propagates", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		repo.On("UpdateStatus", ctx, int64(999), mock.Anything).Return(int64(0), nil)

		affected, err := svc.UpdateStatus(ctx, ports.UpdateStatusParams{OrderID: 999, Status: "Cancelado"})

		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})
}

func TestOrderService_UpdatePriority(t *testing.T) {
	ctx := context.Background()

	t.Run("valid priority", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		repo.On("UpdatePriority", ctx, int64(8), domain.PriorityHigh).Return(int64(1), nil)

		affected, err := svc.UpdatePriority(ctx, 8, "Alta")

		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
	})

	t.Run("invalid priority", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository()
		svc := services.NewOrderService(repo, 0)

		_, err := svc.UpdatePriority(ctx, 8, "Altíssima")

		assert.ErrorIs(t, err, apperrors.ErrInvalidPriority)
		repo.AssertNotCalled(t, "UpdatePriority")
	})
}
