// Package cache guarda en memoria las respuestas de lectura del catálogo
// y los reportes, con expiración por entrada.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Prefijos de clave; una mutación invalida el prefijo completo
const (
	CatalogPrefix = "catalog:"
	ReportsPrefix = "reports:"
)

type item struct {
	value     any
	expiresAt time.Time
}

// Cache es un mapa con TTL y limpieza periódica en segundo plano
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time

	stop chan struct{}
	once sync.Once
}

// New crea el caché y arranca la limpieza cada cleanupInterval.
// Con cleanupInterval <= 0 no hay limpieza en segundo plano.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]item),
		ttl:   defaultTTL,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupExpired(cleanupInterval)
	}
	return c
}

// Close detiene la limpieza; se puede llamar más de una vez
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// Set guarda un valor; sin ttl usa el TTL por defecto
func (c *Cache) Set(key string, value any, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.ttl
	if len(ttl) > 0 {
		duration = ttl[0]
	}
	c.items[key] = item{value: value, expiresAt: c.now().Add(duration)}
}

// Get devuelve el valor si existe y no expiró
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || c.now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

// Delete elimina una clave
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeleteByPrefix elimina todas las claves que empiecen con prefix
func (c *Cache) DeleteByPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Clear vacía el caché
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

// Size cuenta las entradas, incluidas las expiradas aún no limpiadas
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purge()
		}
	}
}

func (c *Cache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}

// Marshal serializa value a JSON y lo guarda
func (c *Cache) Marshal(key string, value any, ttl ...time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	c.Set(key, data, ttl...)
	return nil
}

// Unmarshal lee la clave y la decodifica en target
func (c *Cache) Unmarshal(key string, target any) (bool, error) {
	data, found := c.Get(key)
	if !found {
		return false, nil
	}
	raw, ok := data.([]byte)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("cache unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Key arma una clave con prefijo a partir de sus partes
func Key(prefix string, parts ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprint(&b, p)
	}
	return b.String()
}
