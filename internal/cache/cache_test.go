package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/christophergentle/tpsgraph/internal/graph"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data map[string]string
	ttl  time.Duration
	err  error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	if f.err != nil {
		return goredis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	if f.err != nil {
		return goredis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttl = expiration
	return goredis.NewStatusResult("OK", nil)
}

func TestKeyDependsOnInputs(t *testing.T) {
	points := []graph.DataPoint{{T: 2460000.5, C: 3}, {T: 2460000.6, C: 4}}

	k := Key("payments", "png", 800, 500, points)
	assert.Equal(t, k, Key("payments", "png", 800, 500, points))
	assert.Contains(t, k, keyPrefix)

	assert.NotEqual(t, k, Key("search", "png", 800, 500, points))
	assert.NotEqual(t, k, Key("payments", "svg", 800, 500, points))
	assert.NotEqual(t, k, Key("payments", "png", 800, 501, points))
	assert.NotEqual(t, k, Key("payments", "png", 800, 500, points[:1]))
	assert.NotEqual(t, k, Key("payments", "png", 800, 500, []graph.DataPoint{{T: 2460000.5, C: 3}, {T: 2460000.6, C: 5}}))
}

func TestGetSet(t *testing.T) {
	f := &fakeRedis{data: map[string]string{}}
	c := NewWithClient(f, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("png-bytes")))
	assert.Equal(t, time.Minute, f.ttl)

	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestGetError(t *testing.T) {
	c := NewWithClient(&fakeRedis{err: errors.New("connection refused")}, time.Minute)

	_, ok, err := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection refused")

	assert.Error(t, c.Set(context.Background(), "k", nil))
}
