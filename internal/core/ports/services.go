package ports

import (
	"context"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
)

// CreateOrderParams defines the input for opening a service order. The
// legacy aliases (Solicitante, Defeito, Equipamento) are still accepted for
// older frontends.
type CreateOrderParams struct {
	RequesterID     int64
	OriginTeam      string
	DestinationTeam string
	Category        string
	ClientLabel     string
	Description     string
	Priority        string

	Solicitante string
	Defeito     string
	Equipamento string
}

// UpdateStatusParams defines the input for a status change. Priority rides
// along as an optional side channel (reclassification).
type UpdateStatusParams struct {
	OrderID         int64
	Status          string
	TechnicalReport *string
	MaterialsUsed   *string
	Priority        *string
}

// OrderService defines the lifecycle operations over service orders.
type OrderService interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (int64, error)
	GetOrder(ctx context.Context, id int64) (*domain.ServiceOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.ServiceOrder, error)
	ListByDestinationTeam(ctx context.Context, team string) ([]*domain.ServiceOrder, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ServiceOrder, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (int64, error)
	UpdatePriority(ctx context.Context, id int64, priority string) (int64, error)
}

// ReportService assembles the supervisors' reports.
type ReportService interface {
	GeneralReport(ctx context.Context, filter OrderFilter) (*domain.Report, error)
	TeamReport(ctx context.Context) ([]domain.TeamPerformance, error)
	ListTeams(ctx context.Context) ([]string, error)
}

// AuthService defines the port for the identity collaborator.
type AuthService interface {
	Register(ctx context.Context, params domain.UserRegistrationParams) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}
