package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresConfigRepository implements EventConfigRepository using PostgreSQL.
// A single row holds the active configuration; Save upserts it.
type PostgresConfigRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresConfigRepository creates a new PostgresConfigRepository
func NewPostgresConfigRepository(pool *pgxpool.Pool) *PostgresConfigRepository {
	return &PostgresConfigRepository{pool: pool}
}

// Save inserts or replaces the active configuration
func (r *PostgresConfigRepository) Save(ctx context.Context, cfg *domain.EventConfiguration) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.config.save")
	defer span.End()

	span.SetAttributes(
		attribute.String("config_id", cfg.ID),
		attribute.String("event_name", cfg.EventName),
	)

	cfg.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO event_configurations (
			id, event_name, event_date, total_tickets, max_capacity,
			ticket_release_rate, customer_retrieval_rate, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			event_name = EXCLUDED.event_name,
			event_date = EXCLUDED.event_date,
			total_tickets = EXCLUDED.total_tickets,
			max_capacity = EXCLUDED.max_capacity,
			ticket_release_rate = EXCLUDED.ticket_release_rate,
			customer_retrieval_rate = EXCLUDED.customer_retrieval_rate,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		cfg.ID,
		cfg.EventName,
		cfg.EventDate,
		cfg.TotalTickets,
		cfg.MaxCapacity,
		cfg.TicketReleaseRate,
		cfg.CustomerRetrievalRate,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetActive retrieves the most recently updated configuration, nil if none
func (r *PostgresConfigRepository) GetActive(ctx context.Context) (*domain.EventConfiguration, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.config.get_active")
	defer span.End()

	query := `
		SELECT id, event_name, event_date, total_tickets, max_capacity,
			ticket_release_rate, customer_retrieval_rate, created_at, updated_at
		FROM event_configurations
		ORDER BY updated_at DESC
		LIMIT 1
	`

	cfg := &domain.EventConfiguration{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.ID,
		&cfg.EventName,
		&cfg.EventDate,
		&cfg.TotalTickets,
		&cfg.MaxCapacity,
		&cfg.TicketReleaseRate,
		&cfg.CustomerRetrievalRate,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	return cfg, nil
}
