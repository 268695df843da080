package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketColumns = `id, vendor_id, customer_id, event_name, created_at, purchased_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.VendorID,
		&ticket.CustomerID,
		&ticket.EventName,
		&ticket.CreatedAt,
		&ticket.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// SaveBatch persists multiple tickets using a single batched insert
func (r *PostgresTicketRepository) SaveBatch(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.save_batch")
	defer span.End()

	span.SetAttributes(attribute.Int("count", len(tickets)))

	query := `
		INSERT INTO tickets (id, vendor_id, customer_id, event_name, created_at, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, ticket := range tickets {
		batch.Queue(query,
			ticket.ID,
			ticket.VendorID,
			ticket.CustomerID,
			ticket.EventName,
			ticket.CreatedAt,
			ticket.PurchasedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range tickets {
		if _, err := results.Exec(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to save tickets: %w", err)
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a ticket by its ID
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1`, ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// List retrieves tickets filtered by customer and/or vendor
func (r *PostgresTicketRepository) List(ctx context.Context, filter *TicketFilter, limit, offset int) ([]*domain.Ticket, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list")
	defer span.End()

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter != nil {
		if filter.CustomerID != "" {
			conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argIndex))
			args = append(args, filter.CustomerID)
			argIndex++
		}
		if filter.VendorID != "" {
			conditions = append(conditions, fmt.Sprintf("vendor_id = $%d", argIndex))
			args = append(args, filter.VendorID)
			argIndex++
		}
		if filter.EventName != "" {
			conditions = append(conditions, fmt.Sprintf("event_name = $%d", argIndex))
			args = append(args, filter.EventName)
			argIndex++
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tickets %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tickets
		%s
		ORDER BY purchased_at DESC
		LIMIT $%d OFFSET $%d
	`, ticketColumns, whereClause, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, ticket)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	return tickets, total, rows.Err()
}

// CountSoldByVendor returns the number of purchased tickets per vendor
func (r *PostgresTicketRepository) CountSoldByVendor(ctx context.Context) (map[string]int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.count_sold_by_vendor")
	defer span.End()

	query := `SELECT vendor_id, COUNT(*) FROM tickets GROUP BY vendor_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to count sold tickets: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var vendorID string
		var count int
		if err := rows.Scan(&vendorID, &count); err != nil {
			return nil, err
		}
		counts[vendorID] = count
	}

	return counts, rows.Err()
}

// Delete removes a ticket by ID
func (r *PostgresTicketRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.delete")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
