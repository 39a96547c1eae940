package cache

import (
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 10 * time.Minute

// Memory кэш в памяти процесса. Используется, когда адрес Redis не задан.
// Значения хранятся в JSON, чтобы Get вел себя так же, как у Redis.
type Memory struct {
	c *gocache.Cache
}

// NewMemory создает кэш в памяти.
func NewMemory() *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get читает значение по ключу в result.
func (m *Memory) Get(key string, result any) (bool, error) {
	const op = "cache.Memory.Get"
	raw, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("%s: unexpected value type %T", op, raw)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение. Нулевой expiration означает бессрочное хранение.
func (m *Memory) Set(key string, value any, expiration time.Duration) error {
	const op = "cache.Memory.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	m.c.Set(key, data, expiration)
	return nil
}

// Invalidate удаляет ключ.
func (m *Memory) Invalidate(key string) error {
	m.c.Delete(key)
	return nil
}
