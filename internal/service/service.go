// Package service renders TPS graphs for an application's recent history.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/christophergentle/tpsgraph/internal/cache"
	"github.com/christophergentle/tpsgraph/internal/config"
	"github.com/christophergentle/tpsgraph/internal/graph"
	"github.com/christophergentle/tpsgraph/internal/metrics"
	"github.com/christophergentle/tpsgraph/internal/surface"
)

// Upper bounds on request parameters
const (
	MaxDimension = 4000
	MaxWindow    = 31 * 24 * time.Hour
)

// ErrInvalidRequest marks requests rejected before any work is done.
var ErrInvalidRequest = errors.New("invalid request")

// SeriesSource supplies the per-minute history of an application.
type SeriesSource interface {
	Series(ctx context.Context, app string, from, to time.Time) ([]graph.DataPoint, error)
}

// Cache stores encoded renders.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Request describes one graph. Zero fields take the service defaults; a
// zero End means now.
type Request struct {
	App    string
	Window time.Duration
	End    time.Time
	Format string
	Width  int
	Height int
}

// Result is an encoded graph. Scene is nil when the image came from the
// cache.
type Result struct {
	Data        []byte
	ContentType string
	Scene       *graph.Scene
	Points      int
	Cached      bool
}

// GraphService ties a series source to the renderer and surfaces.
type GraphService struct {
	source   SeriesSource
	renderer *graph.Renderer
	style    *surface.Style
	defaults Request
	cache    Cache
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewGraphService creates a service. defaults supplies the values used for
// zero request fields.
func NewGraphService(source SeriesSource, renderer *graph.Renderer, style *surface.Style, defaults Request) *GraphService {
	if renderer == nil {
		renderer = graph.NewRenderer(nil)
	}
	if defaults.Format == "" {
		defaults.Format = surface.FormatPNG
	}
	if defaults.Width == 0 {
		defaults.Width = 800
	}
	if defaults.Height == 0 {
		defaults.Height = 500
	}
	if defaults.Window == 0 {
		defaults.Window = 24 * time.Hour
	}
	return &GraphService{
		source:   source,
		renderer: renderer,
		style:    style,
		defaults: defaults,
		now:      time.Now,
	}
}

// FromConfig builds the service a configuration describes.
func FromConfig(cfg *config.Config, source SeriesSource) (*GraphService, error) {
	opts, err := cfg.Graph.RendererOptions()
	if err != nil {
		return nil, err
	}
	defaults := Request{
		Window: cfg.Graph.Window(),
		Width:  cfg.Graph.Width,
		Height: cfg.Graph.Height,
	}
	if apps := cfg.Store.Apps(); len(apps) > 0 {
		defaults.App = apps[0]
	}
	return NewGraphService(source, graph.NewRenderer(opts), cfg.Style.SurfaceStyle(), defaults), nil
}

// WithCache enables render caching.
func (s *GraphService) WithCache(c Cache) *GraphService {
	s.cache = c
	return s
}

// WithMetrics enables render metrics.
func (s *GraphService) WithMetrics(m *metrics.Metrics) *GraphService {
	s.metrics = m
	return s
}

// Normalize fills defaults into req and validates it.
func (s *GraphService) Normalize(req Request) (Request, error) {
	if req.App == "" {
		req.App = s.defaults.App
	}
	if req.Window == 0 {
		req.Window = s.defaults.Window
	}
	if req.End.IsZero() {
		req.End = s.now()
	}
	if req.Format == "" {
		req.Format = s.defaults.Format
	}
	req.Format = surface.NormalizeFormat(req.Format)
	if req.Width == 0 {
		req.Width = s.defaults.Width
	}
	if req.Height == 0 {
		req.Height = s.defaults.Height
	}

	switch {
	case req.App == "":
		return req, fmt.Errorf("%w: app is required", ErrInvalidRequest)
	case req.Format != surface.FormatPNG && req.Format != surface.FormatSVG:
		return req, fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, req.Format)
	case req.Width <= 0 || req.Height <= 0 || req.Width > MaxDimension || req.Height > MaxDimension:
		return req, fmt.Errorf("%w: size %dx%d out of range", ErrInvalidRequest, req.Width, req.Height)
	case req.Window <= 0 || req.Window > MaxWindow:
		return req, fmt.Errorf("%w: window %s out of range", ErrInvalidRequest, req.Window)
	}
	return req, nil
}

// Series returns the history a request covers.
func (s *GraphService) Series(ctx context.Context, req Request) ([]graph.DataPoint, error) {
	req, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}
	points, err := s.source.Series(ctx, req.App, req.End.Add(-req.Window), req.End)
	if err != nil {
		s.countError("fetch")
		return nil, fmt.Errorf("failed to fetch series for %s: %w", req.App, err)
	}
	return points, nil
}

// Render fetches the history for req and draws it.
func (s *GraphService) Render(ctx context.Context, req Request) (*Result, error) {
	req, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}
	start := s.now()

	points, err := s.Series(ctx, req)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil {
		key = cache.Key(req.App, req.Format, req.Width, req.Height, points)
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("Failed to read render cache: %v", err)
		}
		if ok {
			s.countCache(true)
			return &Result{
				Data:        data,
				ContentType: surface.ContentType(req.Format),
				Points:      len(points),
				Cached:      true,
			}, nil
		}
		s.countCache(false)
	}

	result, err := s.RenderPoints(req.Format, req.Width, req.Height, points)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result.Data); err != nil {
			log.Printf("Failed to write render cache: %v", err)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveRender(req.Format, len(points), s.now().Sub(start))
	}
	return result, nil
}

// Layout fetches the history for req and lays it out without drawing,
// for clients that draw the chart themselves or need the bar titles.
func (s *GraphService) Layout(ctx context.Context, req Request) (*graph.Scene, error) {
	req, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}
	points, err := s.Series(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.renderer.Layout(surface.DrawableBox(req.Width, req.Height, s.style), points), nil
}

// RenderPoints draws points directly, without a source or cache.
func (s *GraphService) RenderPoints(format string, width, height int, points []graph.DataPoint) (*Result, error) {
	canvas, err := surface.New(format, width, height, s.style)
	if err != nil {
		s.countError("surface")
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}

	scene := s.renderer.Render(canvas, points)

	var buf bytes.Buffer
	if err := canvas.Encode(&buf); err != nil {
		s.countError("encode")
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return &Result{
		Data:        buf.Bytes(),
		ContentType: surface.ContentType(format),
		Scene:       scene,
		Points:      len(points),
	}, nil
}

func (s *GraphService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
}

func (s *GraphService) countError(stage string) {
	if s.metrics != nil {
		s.metrics.RenderErrors.WithLabelValues(stage).Inc()
	}
}
