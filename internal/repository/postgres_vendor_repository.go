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

// PostgresVendorRepository implements VendorRepository using PostgreSQL with pgxpool
type PostgresVendorRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVendorRepository creates a new PostgresVendorRepository
func NewPostgresVendorRepository(pool *pgxpool.Pool) *PostgresVendorRepository {
	return &PostgresVendorRepository{pool: pool}
}

const vendorColumns = `id, name, email, password_hash, active,
	tickets_per_release, ticket_release_interval_ms, tickets_to_sell,
	tickets_released, total_tickets_sold, created_at, updated_at`

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	vendor := &domain.Vendor{}
	var intervalMs int64

	err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.Email,
		&vendor.PasswordHash,
		&vendor.Active,
		&vendor.TicketsPerRelease,
		&intervalMs,
		&vendor.TicketsToSell,
		&vendor.TicketsReleased,
		&vendor.TotalTicketsSold,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	vendor.TicketReleaseInterval = time.Duration(intervalMs) * time.Millisecond
	return vendor, nil
}

// Create creates a new vendor record in the database
func (r *PostgresVendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("vendor_id", vendor.ID),
		attribute.String("email", vendor.Email),
	)

	query := `
		INSERT INTO vendors (
			id, name, email, password_hash, active,
			tickets_per_release, ticket_release_interval_ms, tickets_to_sell,
			tickets_released, total_tickets_sold, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := r.pool.Exec(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.Email,
		vendor.PasswordHash,
		vendor.Active,
		vendor.TicketsPerRelease,
		vendor.TicketReleaseInterval.Milliseconds(),
		vendor.TicketsToSell,
		vendor.TicketsReleased,
		vendor.TotalTicketsSold,
		vendor.CreatedAt,
		vendor.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a vendor by its ID
func (r *PostgresVendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", id))

	query := fmt.Sprintf(`SELECT %s FROM vendors WHERE id = $1`, vendorColumns)
	vendor, err := scanVendor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVendorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return vendor, nil
}

// GetByEmail retrieves a vendor by email
func (r *PostgresVendorRepository) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.get_by_email")
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM vendors WHERE email = $1`, vendorColumns)
	vendor, err := scanVendor(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVendorNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get vendor by email: %w", err)
	}
	return vendor, nil
}

// GetActive retrieves all active vendors
func (r *PostgresVendorRepository) GetActive(ctx context.Context) ([]*domain.Vendor, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.get_active")
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM vendors WHERE active = true ORDER BY created_at`, vendorColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list active vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*domain.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}

	span.SetAttributes(attribute.Int("count", len(vendors)))
	return vendors, rows.Err()
}

// Update updates a vendor's counters and active flag
func (r *PostgresVendorRepository) Update(ctx context.Context, vendor *domain.Vendor) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.update")
	defer span.End()

	span.SetAttributes(attribute.String("vendor_id", vendor.ID))

	vendor.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE vendors SET
			name = $2, active = $3, tickets_per_release = $4,
			ticket_release_interval_ms = $5, tickets_to_sell = $6,
			tickets_released = $7, total_tickets_sold = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.Active,
		vendor.TicketsPerRelease,
		vendor.TicketReleaseInterval.Milliseconds(),
		vendor.TicketsToSell,
		vendor.TicketsReleased,
		vendor.TotalTicketsSold,
		vendor.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVendorNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateBatch updates multiple vendors inside one transaction
func (r *PostgresVendorRepository) UpdateBatch(ctx context.Context, vendors []*domain.Vendor) error {
	if len(vendors) == 0 {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.vendor.update_batch")
	defer span.End()

	span.SetAttributes(attribute.Int("count", len(vendors)))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE vendors SET
			active = $2, tickets_released = $3, total_tickets_sold = $4, updated_at = $5
		WHERE id = $1
	`

	now := time.Now().UTC()
	for _, vendor := range vendors {
		vendor.UpdatedAt = now
		if _, err := tx.Exec(ctx, query,
			vendor.ID,
			vendor.Active,
			vendor.TicketsReleased,
			vendor.TotalTicketsSold,
			now,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to update vendor %s: %w", vendor.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit vendor batch: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
