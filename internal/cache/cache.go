// Package cache keeps rendered graphs in Redis.
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/christophergentle/tpsgraph/internal/graph"
	goredis "github.com/go-redis/redis/v8"
)

const keyPrefix = "tpsgraph:render:"

// Client is the part of the Redis client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// RenderCache stores encoded images keyed by a hash of their inputs.
type RenderCache struct {
	client Client
	ttl    time.Duration
}

// New connects to Redis at addr and pings it.
func New(addr string, ttl time.Duration) (*RenderCache, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", addr)
	return NewWithClient(client, ttl), nil
}

// NewWithClient creates a cache on an existing client.
func NewWithClient(client Client, ttl time.Duration) *RenderCache {
	return &RenderCache{client: client, ttl: ttl}
}

// Key hashes everything that affects a render.
func Key(app, format string, width, height int, points []graph.DataPoint) string {
	d := xxhash.New()
	d.WriteString(app)
	d.WriteString("\x00")
	d.WriteString(format)
	d.WriteString("\x00")
	d.WriteString(strconv.Itoa(width) + "x" + strconv.Itoa(height))

	var buf [16]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.T))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.C))
		d.Write(buf[:])
	}
	return keyPrefix + strconv.FormatUint(d.Sum64(), 16)
}

// Get returns the cached image for key. ok is false on a miss.
func (c *RenderCache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	data, err = c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}
	return data, true, nil
}

// Set stores data under key for the cache TTL.
func (c *RenderCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
