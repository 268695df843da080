package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ticketline/ticketline/pkg/redis"
	"github.com/ticketline/ticketline/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	statusKey = "pool:status"
	statusTTL = 60 * time.Second
)

// RedisStatusRepository caches pool status snapshots in Redis so read-path
// consumers do not contend for the controller lock.
type RedisStatusRepository struct {
	client *redis.Client
}

// NewRedisStatusRepository creates a new RedisStatusRepository
func NewRedisStatusRepository(client *redis.Client) *RedisStatusRepository {
	return &RedisStatusRepository{client: client}
}

// SaveSnapshot stores a status snapshot as a Redis hash with a TTL
func (r *RedisStatusRepository) SaveSnapshot(ctx context.Context, snapshot map[string]interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.status.save_snapshot")
	defer span.End()

	span.SetAttributes(attribute.Int("fields", len(snapshot)))

	values := make([]interface{}, 0, len(snapshot)*2)
	for k, v := range snapshot {
		values = append(values, k, fmt.Sprintf("%v", v))
	}

	if err := r.client.HSet(ctx, statusKey, values...).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to save status snapshot: %w", err)
	}

	if err := r.client.Expire(ctx, statusKey, statusTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set snapshot ttl: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetSnapshot retrieves the last stored snapshot, nil if none or expired
func (r *RedisStatusRepository) GetSnapshot(ctx context.Context) (map[string]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.status.get_snapshot")
	defer span.End()

	snapshot, err := r.client.HGetAll(ctx, statusKey).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get status snapshot: %w", err)
	}
	if len(snapshot) == 0 {
		return nil, nil
	}
	return snapshot, nil
}
