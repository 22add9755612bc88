package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// OrderRepository is the embedded-database counterpart of the postgres one.
type OrderRepository struct {
	db *sql.DB
}

// Ensure OrderRepository implements the ports.OrderRepository interface.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const selectOrder = `
SELECT o.id, o.requester_id, o.origin_team, o.destination_team, o.category,
       o.client_label, o.description, o.priority, o.status,
       o.technical_report, o.materials_used, o.opened_at, o.closed_at,
       o.resolution_hours,
       COALESCE(u.name, ''), COALESCE(u.email, '')
FROM service_orders o
LEFT JOIN users u ON o.requester_id = u.id
`

type orderRow interface {
	Scan(dest ...any) error
}

func scanOrder(row orderRow) (*domain.ServiceOrder, error) {
	var (
		order           domain.ServiceOrder
		technicalReport sql.NullString
		materialsUsed   sql.NullString
		closedAt        sql.NullTime
		resolutionHours sql.NullFloat64
	)

	err := row.Scan(
		&order.ID,
		&order.RequesterID,
		&order.OriginTeam,
		&order.DestinationTeam,
		&order.Category,
		&order.ClientLabel,
		&order.Description,
		&order.Priority,
		&order.Status,
		&technicalReport,
		&materialsUsed,
		&order.OpenedAt,
		&closedAt,
		&resolutionHours,
		&order.RequesterName,
		&order.RequesterEmail,
	)
	if err != nil {
		return nil, err
	}

	if technicalReport.Valid {
		order.TechnicalReport = &technicalReport.String
	}
	if materialsUsed.Valid {
		order.MaterialsUsed = &materialsUsed.String
	}
	if closedAt.Valid {
		order.ClosedAt = &closedAt.Time
	}
	if resolutionHours.Valid {
		order.ResolutionHours = &resolutionHours.Float64
	}

	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.ServiceOrder, error) {
	defer rows.Close()

	orders := make([]*domain.ServiceOrder, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// Create persists a new order and returns its assigned id.
func (r *OrderRepository) Create(ctx context.Context, order *domain.ServiceOrder) (int64, error) {
	const query = `
INSERT INTO service_orders
  (requester_id, origin_team, destination_team, category, client_label,
   description, priority, status, opened_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	result, err := r.db.ExecContext(ctx, query,
		order.RequesterID,
		order.OriginTeam,
		string(order.DestinationTeam),
		order.Category,
		order.ClientLabel,
		order.Description,
		string(order.Priority),
		string(order.Status),
		order.OpenedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a single order by its id.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceOrder, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+"WHERE o.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListByFilter retrieves the orders matching the filter, newest first.
func (r *OrderRepository) ListByFilter(ctx context.Context, filter ports.OrderFilter) ([]*domain.ServiceOrder, error) {
	query := selectOrder + "WHERE 1=1"
	args := make([]any, 0, 3)

	if ports.Constrains(filter.Team) {
		query += " AND o.destination_team = ?"
		args = append(args, filter.Team)
	}
	if ports.Constrains(filter.Status) {
		query += " AND o.status = ?"
		args = append(args, filter.Status)
	}
	if ports.Constrains(filter.Priority) {
		query += " AND o.priority = ?"
		args = append(args, filter.Priority)
	}
	query += " ORDER BY o.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListByRequester retrieves the orders opened by one requester, newest first.
func (r *OrderRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ServiceOrder, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+"WHERE o.requester_id = ? ORDER BY o.id DESC", requesterID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListByDestinationTeam retrieves a technician pool's queue, newest first.
func (r *OrderRepository) ListByDestinationTeam(ctx context.Context, team domain.Team) ([]*domain.ServiceOrder, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+"WHERE o.destination_team = ? ORDER BY o.id DESC", string(team))
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// UpdateStatus applies a status change inside a transaction so the closing
// triple is written atomically.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, update ports.StatusUpdate) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var openedAt time.Time
	err = tx.QueryRowContext(ctx, "SELECT opened_at FROM service_orders WHERE id = ?", id).Scan(&openedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	// The closing pair is derived by the domain entity so the arithmetic
	// lives in one place.
	order := domain.ServiceOrder{OpenedAt: openedAt}
	if update.Status == domain.StatusCompleted {
		order.Complete(update.ClosedAt)
	} else {
		order.Reopen(update.Status)
	}

	var closedAt sql.NullTime
	var resolutionHours sql.NullFloat64
	if order.IsCompleted() {
		closedAt = sql.NullTime{Time: *order.ClosedAt, Valid: true}
		resolutionHours = sql.NullFloat64{Float64: *order.ResolutionHours, Valid: true}
	}

	query := `
UPDATE service_orders
SET status = ?, technical_report = ?, materials_used = ?,
    closed_at = ?, resolution_hours = ?
`
	args := []any{
		string(update.Status),
		nullString(update.TechnicalReport),
		nullString(update.MaterialsUsed),
		closedAt,
		resolutionHours,
	}
	if update.Priority != nil {
		query += ", priority = ?"
		args = append(args, string(*update.Priority))
	}
	query += " WHERE id = ?"
	args = append(args, id)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit status update: %w", err)
	}
	return affected, nil
}

// UpdatePriority reclassifies an order, leaving every other field untouched.
func (r *OrderRepository) UpdatePriority(ctx context.Context, id int64, priority domain.OrderPriority) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE service_orders SET priority = ? WHERE id = ?",
		string(priority), id,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// TeamSummary aggregates per-team workload for the supervisors' report.
func (r *OrderRepository) TeamSummary(ctx context.Context) ([]domain.TeamPerformance, error) {
	const query = `
SELECT destination_team,
       COUNT(*),
       SUM(CASE WHEN status = 'Finalizado' THEN 1 ELSE 0 END),
       COALESCE(AVG(resolution_hours), 0)
FROM service_orders
GROUP BY destination_team
ORDER BY COUNT(*) DESC
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.TeamPerformance, 0)
	for rows.Next() {
		var item domain.TeamPerformance
		var avgHours float64
		if err := rows.Scan(&item.Team, &item.TotalOrders, &item.Completed, &avgHours); err != nil {
			return nil, err
		}
		if item.TotalOrders > 0 {
			item.SuccessRate = domain.RoundResolutionHours(float64(item.Completed) / float64(item.TotalOrders) * 100)
		}
		item.AvgResolutionHrs = domain.RoundResolutionHours(avgHours)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListTeams returns the distinct destination teams present in the data.
func (r *OrderRepository) ListTeams(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT destination_team FROM service_orders WHERE destination_team <> '' ORDER BY destination_team")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]string, 0)
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
