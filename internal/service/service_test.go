package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/christophergentle/tpsgraph/internal/config"
	"github.com/christophergentle/tpsgraph/internal/graph"
	"github.com/christophergentle/tpsgraph/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)

type fakeSource struct {
	points   []graph.DataPoint
	err      error
	app      string
	from, to time.Time
}

func (f *fakeSource) Series(ctx context.Context, app string, from, to time.Time) ([]graph.DataPoint, error) {
	f.app, f.from, f.to = app, from, to
	return f.points, f.err
}

type mapCache map[string][]byte

func (c mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c[key]
	return v, ok, nil
}

func (c mapCache) Set(ctx context.Context, key string, data []byte) error {
	c[key] = data
	return nil
}

func hourly(n int) []graph.DataPoint {
	points := make([]graph.DataPoint, n)
	for i := range points {
		points[i] = graph.DataPoint{T: graph.ToJulian(end.Add(time.Duration(i-n) * time.Hour)), C: float64(i)}
	}
	return points
}

func newService(src SeriesSource) *GraphService {
	s := NewGraphService(src, nil, nil, Request{App: "payments"})
	s.now = func() time.Time { return end }
	return s
}

func TestNormalizeFillsDefaults(t *testing.T) {
	req, err := newService(nil).Normalize(Request{Format: ".SVG"})
	require.NoError(t, err)

	assert.Equal(t, "payments", req.App)
	assert.Equal(t, "svg", req.Format)
	assert.Equal(t, 800, req.Width)
	assert.Equal(t, 500, req.Height)
	assert.Equal(t, 24*time.Hour, req.Window)
	assert.True(t, end.Equal(req.End))
}

func TestNormalizeRejects(t *testing.T) {
	s := newService(nil)
	bad := []Request{
		{Format: "gif"},
		{Width: -1},
		{Height: MaxDimension + 1},
		{Window: -time.Hour},
		{Window: MaxWindow + time.Hour},
	}
	for _, req := range bad {
		_, err := s.Normalize(req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "request %+v", req)
	}

	_, err := NewGraphService(nil, nil, nil, Request{}).Normalize(Request{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRenderPNG(t *testing.T) {
	src := &fakeSource{points: hourly(24)}
	s := newService(src)

	res, err := s.Render(context.Background(), Request{Window: 6 * time.Hour, Width: 400, Height: 300})
	require.NoError(t, err)

	assert.Equal(t, "payments", src.app)
	assert.True(t, end.Add(-6*time.Hour).Equal(src.from))
	assert.True(t, end.Equal(src.to))

	assert.Equal(t, "image/png", res.ContentType)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("\x89PNG")))
	require.NotNil(t, res.Scene)
	assert.Len(t, res.Scene.Bars, 24)
	assert.Equal(t, 24, res.Points)
	assert.False(t, res.Cached)
}

func TestRenderSVG(t *testing.T) {
	s := newService(&fakeSource{points: hourly(24)})

	res, err := s.Render(context.Background(), Request{Format: "svg"})
	require.NoError(t, err)

	assert.Equal(t, "image/svg+xml", res.ContentType)
	assert.Contains(t, string(res.Data), "<svg")
}

func TestRenderEmptySeries(t *testing.T) {
	s := newService(&fakeSource{})

	res, err := s.Render(context.Background(), Request{})
	require.NoError(t, err)
	assert.Empty(t, res.Scene.Bars)
	assert.NotEmpty(t, res.Data)
}

func TestRenderSourceError(t *testing.T) {
	m := metrics.NewMetrics(nil)
	s := newService(&fakeSource{err: errors.New("table missing")}).WithMetrics(m)

	_, err := s.Render(context.Background(), Request{})
	assert.ErrorContains(t, err, "table missing")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenderErrors.WithLabelValues("fetch")))
}

func TestRenderUsesCache(t *testing.T) {
	m := metrics.NewMetrics(nil)
	c := mapCache{}
	s := newService(&fakeSource{points: hourly(12)}).WithCache(c).WithMetrics(m)
	ctx := context.Background()

	first, err := s.Render(ctx, Request{})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Len(t, c, 1)

	second, err := s.Render(ctx, Request{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Nil(t, second.Scene)
	assert.Equal(t, first.Data, second.Data)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RendersTotal.WithLabelValues("png")))
}

func TestRenderPointsUnknownFormat(t *testing.T) {
	_, err := newService(nil).RenderPoints("tiff", 100, 100, nil)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store.App = "search,payments"
	cfg.Graph.Width = 320
	cfg.Graph.WindowHours = 6

	s, err := FromConfig(cfg, &fakeSource{})
	require.NoError(t, err)

	req, err := s.Normalize(Request{})
	require.NoError(t, err)
	assert.Equal(t, "search", req.App)
	assert.Equal(t, 320, req.Width)
	assert.Equal(t, 6*time.Hour, req.Window)

	cfg.Graph.Timezone = "Not/AZone"
	_, err = FromConfig(cfg, &fakeSource{})
	assert.Error(t, err)
}
