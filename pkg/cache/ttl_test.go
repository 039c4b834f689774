package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := New()
	c.Set("k", 42, time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestTTLCache_MissingKey(t *testing.T) {
	c := New()
	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := New()
	c.Set("k", "v", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	// 만료 접근 시 lazy 삭제
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_PerEntryTTL(t *testing.T) {
	c := New()
	c.Set("short", 1, 10*time.Millisecond)
	c.Set("long", 2, time.Minute)

	time.Sleep(20 * time.Millisecond)

	_, shortOK := c.Get("short")
	_, longOK := c.Get("long")
	assert.False(t, shortOK)
	assert.True(t, longOK)
}

func TestTTLCache_Overwrite(t *testing.T) {
	c := New()
	c.Set("k", 1, time.Minute)
	c.Set("k", 2, time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCache_Delete(t *testing.T) {
	c := New()
	c.Set("k", 1, time.Minute)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestTTLCache_Sweep(t *testing.T) {
	c := New()
	c.Set("stale1", 1, 5*time.Millisecond)
	c.Set("stale2", 2, 5*time.Millisecond)
	c.Set("fresh", 3, time.Minute)

	time.Sleep(20 * time.Millisecond)

	removed := c.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, n, time.Minute)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
