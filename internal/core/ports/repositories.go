package ports

import (
	"context"
	"time"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
)

// FilterAll is the sentinel value meaning "no constraint" for a filter field.
const FilterAll = "todos"

// OrderFilter narrows a service-order listing. Empty or FilterAll fields
// impose no constraint; everything else is matched exactly.
type OrderFilter struct {
	Team     string
	Status   string
	Priority string
}

// Constrains reports whether a filter field actually narrows the result.
func Constrains(value string) bool {
	return value != "" && value != FilterAll
}

// StatusUpdate carries the full set of fields written by a status change.
// TechnicalReport and MaterialsUsed are always overwritten with these values,
// nil included; Priority is written only when non-nil (reclassification).
// ClosedAt is the completion instant used when Status is Finalizado.
type StatusUpdate struct {
	Status          domain.OrderStatus
	TechnicalReport *string
	MaterialsUsed   *string
	Priority        *domain.OrderPriority
	ClosedAt        time.Time
}

// OrderRepository is the persistence contract for service orders. List
// results are always ordered by id descending (newest first). Update methods
// return the number of rows affected; zero signals not-found and is not an
// error.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.ServiceOrder) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ServiceOrder, error)
	ListByFilter(ctx context.Context, filter OrderFilter) ([]*domain.ServiceOrder, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ServiceOrder, error)
	ListByDestinationTeam(ctx context.Context, team domain.Team) ([]*domain.ServiceOrder, error)

	// UpdateStatus applies the (status, closedAt, resolutionHours) triple and
	// the report/materials overwrite atomically with respect to other writers
	// of the same order id.
	UpdateStatus(ctx context.Context, id int64, update StatusUpdate) (int64, error)
	UpdatePriority(ctx context.Context, id int64, priority domain.OrderPriority) (int64, error)

	TeamSummary(ctx context.Context) ([]domain.TeamPerformance, error)
	ListTeams(ctx context.Context) ([]string, error)
}

// UserRepository is the persistence contract for the identity collaborator.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ReportCache is an optional short-lived cache for assembled report payloads.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
