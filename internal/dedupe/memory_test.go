package dedupe

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("MarkSeen then HasSeen", func(t *testing.T) {
		c := NewMemoryCache()

		seen, err := c.HasSeen(ctx, "m1")
		assert.NoError(t, err)
		assert.False(t, seen)

		assert.NoError(t, c.MarkSeen(ctx, "m1"))

		seen, err = c.HasSeen(ctx, "m1")
		assert.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("Clear forgets everything", func(t *testing.T) {
		c := NewMemoryCache()
		assert.NoError(t, c.MarkSeen(ctx, "m1"))
		assert.NoError(t, c.Clear(ctx))

		seen, _ := c.HasSeen(ctx, "m1")
		assert.False(t, seen)
	})

	t.Run("Safe under concurrent use", func(t *testing.T) {
		c := NewMemoryCache()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id byte) {
				defer wg.Done()
				_ = c.MarkSeen(ctx, string('a'+rune(id)))
				_, _ = c.HasSeen(ctx, string('a'+rune(id)))
			}(byte(i))
		}
		wg.Wait()
	})
}
