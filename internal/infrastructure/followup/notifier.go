package followup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appsales "github.com/orderpost/backend/internal/application/sales"
)

// NotificationChannel is the Redis pub/sub channel the notification gateway
// subscribes to
const NotificationChannel = "notifications:orders"

// OrderNotification is the message published for each accepted order
type OrderNotification struct {
	OrderID uuid.UUID `json:"order_id"`
	Number  string    `json:"number"`
	Kind    string    `json:"kind"`
	SentAt  time.Time `json:"sent_at"`
}

// RedisCustomerNotifier publishes order notifications to Redis pub/sub; the
// actual SMS/push delivery happens in the notification gateway service.
type RedisCustomerNotifier struct {
	client *redis.Client
}

var _ appsales.CustomerNotifier = (*RedisCustomerNotifier)(nil)

// NewRedisCustomerNotifier creates a new Redis-backed customer notifier
func NewRedisCustomerNotifier(client *redis.Client) *RedisCustomerNotifier {
	return &RedisCustomerNotifier{client: client}
}

// NotifyOrderPosted publishes the order-accepted notification
func (n *RedisCustomerNotifier) NotifyOrderPosted(ctx context.Context, orderID uuid.UUID, number string) error {
	payload, err := json.Marshal(OrderNotification{
		OrderID: orderID,
		Number:  number,
		Kind:    "order_posted",
		SentAt:  time.Now(),
	})
	if err != nil {
		return err
	}

	if err := n.client.Publish(ctx, NotificationChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish order notification: %w", err)
	}
	return nil
}
