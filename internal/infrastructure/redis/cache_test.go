package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SinClienteEsSiempreMiss(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil)

	require.NoError(t, c.Set(ctx, "mes:snapshot:1", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	found, err := c.Get(ctx, "mes:snapshot:1", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)

	assert.NoError(t, c.Delete(ctx, "mes:snapshot:1"))
}

func TestLocker_SinClienteConcedeSiempre(t *testing.T) {
	ctx := context.Background()
	l := NewLocker(nil)

	lock, err := l.Obtain(ctx, "mes:lock:bsvdl01:DryLine", time.Second)
	require.NoError(t, err)
	require.NotNil(t, lock)
	assert.NoError(t, lock.Release(ctx))

	again, err := l.Obtain(ctx, "mes:lock:bsvdl01:DryLine", time.Second)
	require.NoError(t, err)
	assert.NoError(t, again.Release(ctx))
}
