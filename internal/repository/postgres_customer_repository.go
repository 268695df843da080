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

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL with pgxpool
type PostgresCustomerRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCustomerRepository creates a new PostgresCustomerRepository
func NewPostgresCustomerRepository(pool *pgxpool.Pool) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{pool: pool}
}

const customerColumns = `id, name, email, password_hash, active,
	tickets_to_purchase, ticket_retrieval_interval_ms, total_tickets_purchased,
	created_at, updated_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	customer := &domain.Customer{}
	var intervalMs int64

	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Active,
		&customer.TicketsToPurchase,
		&intervalMs,
		&customer.TotalTicketsPurchased,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	customer.TicketRetrievalInterval = time.Duration(intervalMs) * time.Millisecond
	return customer, nil
}

// Create creates a new customer record in the database
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.customer.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("customer_id", customer.ID),
		attribute.String("email", customer.Email),
	)

	query := `
		INSERT INTO customers (
			id, name, email, password_hash, active,
			tickets_to_purchase, ticket_retrieval_interval_ms, total_tickets_purchased,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.PasswordHash,
		customer.Active,
		customer.TicketsToPurchase,
		customer.TicketRetrievalInterval.Milliseconds(),
		customer.TotalTicketsPurchased,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create customer: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a customer by its ID
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.customer.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("customer_id", id))

	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// GetByEmail retrieves a customer by email
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.customer.get_by_email")
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM customers WHERE email = $1`, customerColumns)
	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}
	return customer, nil
}

// GetActive retrieves all active customers
func (r *PostgresCustomerRepository) GetActive(ctx context.Context) ([]*domain.Customer, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.customer.get_active")
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM customers WHERE active = true ORDER BY created_at`, customerColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list active customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}

	span.SetAttributes(attribute.Int("count", len(customers)))
	return customers, rows.Err()
}

// Update updates a customer's counters and active flag
func (r *PostgresCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.customer.update")
	defer span.End()

	span.SetAttributes(attribute.String("customer_id", customer.ID))

	customer.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE customers SET
			name = $2, active = $3, tickets_to_purchase = $4,
			ticket_retrieval_interval_ms = $5, total_tickets_purchased = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.Active,
		customer.TicketsToPurchase,
		customer.TicketRetrievalInterval.Milliseconds(),
		customer.TotalTicketsPurchased,
		customer.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
