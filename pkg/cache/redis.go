package cache

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds the dispatch-side volatile state: vendor presence heartbeats
// and the fast-path dedup guard for payment webhook replays. Postgres stays
// the source of truth; losing this data only degrades, never corrupts.
type Cache struct {
	client      *redis.Client
	presenceTTL time.Duration
}

func NewCache(config utils.RedisConfig, presenceTTL time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client, presenceTTL: presenceTTL}, nil
}

func presenceKey(vendorID uuid.UUID) string {
	return "vendor:online:" + vendorID.String()
}

// Heartbeat marks a vendor online until the presence TTL lapses.
func (c *Cache) Heartbeat(ctx context.Context, vendorID uuid.UUID) error {
	if err := c.client.Set(ctx, presenceKey(vendorID), "1", c.presenceTTL).Err(); err != nil {
		return fmt.Errorf("set vendor presence: %w", err)
	}
	return nil
}

// IsOnline reports whether the vendor has heartbeated within the TTL.
func (c *Cache) IsOnline(ctx context.Context, vendorID uuid.UUID) (bool, error) {
	n, err := c.client.Exists(ctx, presenceKey(vendorID)).Result()
	if err != nil {
		return false, fmt.Errorf("check vendor presence: %w", err)
	}
	return n > 0, nil
}

// EventSeen is the fast-path read in front of the durable webhook-event
// table. A miss here proves nothing; the table insert decides.
func (c *Cache) EventSeen(ctx context.Context, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, "webhook:event:"+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("check webhook event: %w", err)
	}
	return n > 0, nil
}

// MarkEventSeen records a processed event id for the fast path. Called
// after the settlement transaction commits, so it only ever shadows
// events the table already holds.
func (c *Cache) MarkEventSeen(ctx context.Context, eventID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, "webhook:event:"+eventID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("mark webhook event: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
