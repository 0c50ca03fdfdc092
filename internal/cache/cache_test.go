package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	c := New(time.Minute, 0)
	t.Cleanup(c.Close)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	c, now := newTestCache(t)

	c.Set("short", "x", time.Second)
	c.Set("default", "y")

	*now = now.Add(2 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("default")
	assert.True(t, ok)

	c.purge()
	assert.Equal(t, 1, c.Size())
}

func TestCache_DeleteByPrefix(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set(Key(CatalogPrefix, "list", "approved"), 1)
	c.Set(Key(CatalogPrefix, "product", 7), 2)
	c.Set(Key(ReportsPrefix, "carbon"), 3)

	assert.Equal(t, 2, c.DeleteByPrefix(CatalogPrefix))
	assert.Equal(t, 1, c.Size())

	c.Delete(Key(ReportsPrefix, "carbon"))
	assert.Zero(t, c.Size())
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	assert.Zero(t, c.Size())
}

func TestCache_MarshalUnmarshal(t *testing.T) {
	c, _ := newTestCache(t)

	type payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	require.NoError(t, c.Marshal("p", payload{Name: "Hoodie", Price: 49.99}))

	var got payload
	found, err := c.Unmarshal("p", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Hoodie", got.Name)

	found, err = c.Unmarshal("missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	c.Set("not-bytes", 5)
	found, err = c.Unmarshal("not-bytes", &got)
	require.NoError(t, err)
	assert.False(t, found)

	assert.Error(t, c.Marshal("bad", make(chan int)))
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New(time.Minute, 10*time.Millisecond)
	c.Close()
	c.Close()
}

func TestKey(t *testing.T) {
	assert.Equal(t, "catalog:list:approved:price", Key(CatalogPrefix, "list", "approved", "price"))
	assert.Equal(t, "reports:", Key(ReportsPrefix))
}
