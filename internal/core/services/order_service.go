package services

import (
	"context"
	"time"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// OrderService implements the service-order lifecycle: creation, status
// transitions with their closing-time bookkeeping, and reclassification.
type OrderService struct {
	orderRepo ports.OrderRepository

	// fallbackRequesterID preserves the legacy behavior of stamping a default
	// requester on orders created without an authenticated id. Zero disables
	// the fallback and such requests are rejected instead.
	fallbackRequesterID int64
}

var _ ports.OrderService = (*OrderService)(nil)

// NewOrderService creates a new order service.
func NewOrderService(orderRepo ports.OrderRepository, fallbackRequesterID int64) *OrderService {
	return &OrderService{
		orderRepo:           orderRepo,
		fallbackRequesterID: fallbackRequesterID,
	}
}

// CreateOrder validates the input and persists a new order in the Aberto
// state, returning the assigned id.
func (s *OrderService) CreateOrder(ctx context.Context, params ports.CreateOrderParams) (int64, error) {
	requesterID := params.RequesterID
	if requesterID <= 0 {
		if s.fallbackRequesterID <= 0 {
			return 0, apperrors.ErrRequesterRequired
		}
		requesterID = s.fallbackRequesterID
	}

	order, err := domain.NewServiceOrder(domain.ServiceOrderParams{
		RequesterID:     requesterID,
		OriginTeam:      params.OriginTeam,
		DestinationTeam: params.DestinationTeam,
		Category:        params.Category,
		ClientLabel:     params.ClientLabel,
		Description:     params.Description,
		Priority:        params.Priority,
		Solicitante:     params.Solicitante,
		Defeito:         params.Defeito,
		Equipamento:     params.Equipamento,
	}, time.Now())
	if err != nil {
		return 0, err
	}

	return s.orderRepo.Create(ctx, order)
}

// GetOrder retrieves a single order with the requester display fields joined.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.ServiceOrder, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// ListOrders returns the filtered snapshot, newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]*domain.ServiceOrder, error) {
	return s.orderRepo.ListByFilter(ctx, filter)
}

// ListByDestinationTeam returns the queue of a technician pool. The team must
// belong to the closed set.
func (s *OrderService) ListByDestinationTeam(ctx context.Context, team string) ([]*domain.ServiceOrder, error) {
	destination := domain.Team(team)
	if !destination.IsValid() {
		return nil, apperrors.ErrInvalidTeam
	}
	return s.orderRepo.ListByDestinationTeam(ctx, destination)
}

// ListByRequester returns the orders opened by an authenticated requester.
// Unlike creation there is no fallback identity here.
func (s *OrderService) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ServiceOrder, error) {
	if requesterID <= 0 {
		return nil, apperrors.ErrRequesterRequired
	}
	return s.orderRepo.ListByRequester(ctx, requesterID)
}

// UpdateStatus applies a status change. Moving into Finalizado stamps the
// closing pair (closedAt, resolutionHours); moving anywhere else clears it.
// TechnicalReport and MaterialsUsed are overwritten with the supplied values
// on every call, so a transition that does not resend them wipes what was
// recorded before. A non-nil Priority is applied in the same write
// (reclassification). Returns the affected row count; zero means the order
// does not exist.
func (s *OrderService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (int64, error) {
	status := domain.OrderStatus(params.Status)
	if !status.IsValid() {
		return 0, apperrors.ErrInvalidStatus
	}

	var priority *domain.OrderPriority
	if params.Priority != nil {
		p := domain.OrderPriority(*params.Priority)
		if !p.IsValid() {
			return 0, apperrors.ErrInvalidPriority
		}
		priority = &p
	}

	return s.orderRepo.UpdateStatus(ctx, params.OrderID, ports.StatusUpdate{
		Status:          status,
		TechnicalReport: params.TechnicalReport,
		MaterialsUsed:   params.MaterialsUsed,
		Priority:        priority,
		ClosedAt:        time.Now(),
	})
}

// UpdatePriority reclassifies an order without touching its status or any
// other field. Returns the affected row count; zero means not found.
func (s *OrderService) UpdatePriority(ctx context.Context, id int64, priority string) (int64, error) {
	p := domain.OrderPriority(priority)
	if !p.IsValid() {
		return 0, apperrors.ErrInvalidPriority
	}
	return s.orderRepo.UpdatePriority(ctx, id, p)
}
