package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedSlot закэшированный слот доступности
type CachedSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// SlotsCache кэш рассчитанных слотов доступности.
// Кэш консультативный: решение о конфликте всегда принимает транзакция
// создания записи, поэтому устаревшие данные здесь не опасны, только
// неудобны. При client == nil все операции становятся no-op.
type SlotsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis
func NewRedisClient(addr, password string, db, poolSize int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})
}

// NewSlotsCache создает кэш слотов; client == nil отключает кэширование
func NewSlotsCache(client *redis.Client, ttl time.Duration) *SlotsCache {
	return &SlotsCache{
		client: client,
		ttl:    ttl,
	}
}

// Get возвращает закэшированные слоты; (nil, false) при промахе или отключенном кэше
func (c *SlotsCache) Get(ctx context.Context, staffID, serviceID, locationID int64, date time.Time) ([]CachedSlot, bool) {
	if c.client == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, slotsKey(staffID, serviceID, locationID, date)).Result()
	if err != nil {
		return nil, false
	}

	var slots []CachedSlot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false
	}

	return slots, true
}

// Set сохраняет рассчитанные слоты с TTL
func (c *SlotsCache) Set(ctx context.Context, staffID, serviceID, locationID int64, date time.Time, slots []CachedSlot) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}

	if err := c.client.Set(ctx, slotsKey(staffID, serviceID, locationID, date), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set slots in redis: %w", err)
	}

	return nil
}

// InvalidateStaffDay сбрасывает кэш слотов мастера на дату (все услуги).
// Вызывается после создания, отмены или смены статуса записи.
func (c *SlotsCache) InvalidateStaffDay(ctx context.Context, staffID int64, date time.Time) error {
	if c.client == nil {
		return nil
	}

	pattern := fmt.Sprintf("slots:%d:*:%s", staffID, date.Format("2006-01-02"))

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan slot keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete slot keys: %w", err)
	}

	return nil
}

// Ping проверяет соединение с Redis; no-op при отключенном кэше
func (c *SlotsCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if _, err := c.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Ключ включает локацию: окна расписания и часовой пояс привязаны
// к локации, одна пара (мастер, услуга) дает разные слоты в разных локациях.
func slotsKey(staffID, serviceID, locationID int64, date time.Time) string {
	return fmt.Sprintf("slots:%d:%d:%d:%s", staffID, serviceID, locationID, date.Format("2006-01-02"))
}
