package followup

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appsales "github.com/orderpost/backend/internal/application/sales"
)

// RecalcQueueKey is the Redis list the financial worker drains
const RecalcQueueKey = "followup:recalc:contragents"

// RedisRecalcQueue hands contragent IDs to the financial recalculation worker
// through a Redis list. The worker itself lives outside this service.
type RedisRecalcQueue struct {
	client *redis.Client
	logger *zap.Logger
}

var _ appsales.FinancialRecalcRequester = (*RedisRecalcQueue)(nil)

// NewRedisRecalcQueue creates a new Redis-backed recalculation queue
func NewRedisRecalcQueue(client *redis.Client, logger *zap.Logger) *RedisRecalcQueue {
	return &RedisRecalcQueue{client: client, logger: logger}
}

// RequestRecalc enqueues the contragent for balance recalculation
func (q *RedisRecalcQueue) RequestRecalc(ctx context.Context, contragentID uuid.UUID) error {
	if err := q.client.LPush(ctx, RecalcQueueKey, contragentID.String()).Err(); err != nil {
		return fmt.Errorf("failed to enqueue recalc for contragent %s: %w", contragentID, err)
	}
	q.logger.Debug("recalc requested", zap.String("contragent_id", contragentID.String()))
	return nil
}
