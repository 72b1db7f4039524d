package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache envuelve Redis para los informes de analytics: son caros de
// calcular y el panel los repide en cada cambio de pestaña.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCache(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("fallo al conectar con Redis: %w", err)
	}

	return &Cache{Client: client, TTL: ttl}, nil
}

// GetJSON deja en out el valor cacheado. Devuelve false si no está.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, raw, c.TTL).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func AnalyticsKey(clientID, channel string, days int) string {
	return fmt.Sprintf("analytics:%s:%s:%d", clientID, channel, days)
}

func QualitativeKey(clientID, channel string) string {
	return fmt.Sprintf("qualitative:%s:%s", clientID, channel)
}
