package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kronos-hms/os-tracker-backend/internal/core/domain"
	apperrors "github.com/kronos-hms/os-tracker-backend/internal/core/errors"
	"github.com/kronos-hms/os-tracker-backend/internal/core/ports"
)

// OrderRepository is the secondary adapter for service-order persistence.
type OrderRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

// Ensure OrderRepository implements the ports.OrderRepository interface.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

// selectOrder is the base projection, with the requester display fields
// joined in. Joining here keeps the lifecycle code free of user lookups.
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
		technicalReport pgtype.Text
		materialsUsed   pgtype.Text
		closedAt        pgtype.Timestamptz
		resolutionHours pgtype.Float8
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

func collectOrders(rows pgx.Rows) ([]*domain.ServiceOrder, error) {
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
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		order.RequesterID,
		order.OriginTeam,
		string(order.DestinationTeam),
		order.Category,
		order.ClientLabel,
		order.Description,
		string(order.Priority),
		string(order.Status),
		order.OpenedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves a single order by its id.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+"WHERE o.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListByFilter retrieves the orders matching the filter, newest first. Fields
// set to the "todos" sentinel impose no constraint.
func (r *OrderRepository) ListByFilter(ctx context.Context, filter ports.OrderFilter) ([]*domain.ServiceOrder, error) {
	query := selectOrder + "WHERE 1=1"
	args := make([]any, 0, 3)

	if ports.Constrains(filter.Team) {
		args = append(args, filter.Team)
		query += fmt.Sprintf(" AND o.destination_team = $%d", len(args))
	}
	if ports.Constrains(filter.Status) {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	if ports.Constrains(filter.Priority) {
		args = append(args, filter.Priority)
		query += fmt.Sprintf(" AND o.priority = $%d", len(args))
	}
	query += " ORDER BY o.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListByRequester retrieves the orders opened by one requester, newest first.
func (r *OrderRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ServiceOrder, error) {
	rows, err := r.pool.Query(ctx, selectOrder+"WHERE o.requester_id = $1 ORDER BY o.id DESC", requesterID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListByDestinationTeam retrieves a technician pool's queue, newest first.
func (r *OrderRepository) ListByDestinationTeam(ctx context.Context, team domain.Team) ([]*domain.ServiceOrder, error) {
	rows, err := r.pool.Query(ctx, selectOrder+"WHERE o.destination_team = $1 ORDER BY o.id DESC", string(team))
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// UpdateStatus applies a status change inside a transaction so the
// (status, closed_at, resolution_hours) triple can never be observed half
// written. The row is locked while opened_at is read, keeping concurrent
// writers of the same order serialized.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, update ports.StatusUpdate) (int64, error) {
	var affected int64

	err := r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var openedAt time.Time
		err := tx.QueryRow(ctx,
			"SELECT opened_at FROM service_orders WHERE id = $1 FOR UPDATE", id,
		).Scan(&openedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Zero affected rows signals not-found to the caller.
				return nil
			}
			return err
		}

		// The closing pair is derived by the domain entity so the
		// arithmetic lives in one place.
		order := domain.ServiceOrder{OpenedAt: openedAt}
		if update.Status == domain.StatusCompleted {
			order.Complete(update.ClosedAt)
		} else {
			order.Reopen(update.Status)
		}

		var closedAt pgtype.Timestamptz
		var resolutionHours pgtype.Float8
		if order.IsCompleted() {
			closedAt = pgtype.Timestamptz{Time: *order.ClosedAt, Valid: true}
			resolutionHours = pgtype.Float8{Float64: *order.ResolutionHours, Valid: true}
		}

		query := `
UPDATE service_orders
SET status = $1, technical_report = $2, materials_used = $3,
    closed_at = $4, resolution_hours = $5
`
		args := []any{
			string(update.Status),
			textOrNull(update.TechnicalReport),
			textOrNull(update.MaterialsUsed),
			closedAt,
			resolutionHours,
		}
		if update.Priority != nil {
			args = append(args, string(*update.Priority))
			query += fmt.Sprintf(", priority = $%d", len(args))
		}
		args = append(args, id)
		query += fmt.Sprintf(" WHERE id = $%d", len(args))

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// UpdatePriority reclassifies an order, leaving every other field untouched.
func (r *OrderRepository) UpdatePriority(ctx context.Context, id int64, priority domain.OrderPriority) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE service_orders SET priority = $1 WHERE id = $2",
		string(priority), id,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// TeamSummary aggregates per-team workload for the supervisors' report.
func (r *OrderRepository) TeamSummary(ctx context.Context) ([]domain.TeamPerformance, error) {
	const query = `
SELECT destination_team,
       COUNT(*),
       COUNT(*) FILTER (WHERE status = 'Finalizado'),
       COALESCE(AVG(resolution_hours), 0)
FROM service_orders
GROUP BY destination_team
ORDER BY COUNT(*) DESC
`
	rows, err := r.pool.Query(ctx, query)
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
	rows, err := r.pool.Query(ctx,
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

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}
