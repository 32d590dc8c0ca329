package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/christophergentle/tpsgraph/internal/graph"
	"github.com/christophergentle/tpsgraph/internal/service"
	"github.com/christophergentle/tpsgraph/internal/surface"
	"github.com/gin-gonic/gin"
)

// Recorder accepts new samples.
type Recorder interface {
	Record(ctx context.Context, app string, at time.Time, transactions float64) error
}

// AppLister lists applications with history.
type AppLister interface {
	Apps(ctx context.Context) ([]string, error)
}

// GraphHandler serves graphs and their underlying series.
type GraphHandler struct {
	service  *service.GraphService
	recorder Recorder
	apps     AppLister
}

// NewGraphHandler creates a handler. recorder and apps may be nil, which
// disables their endpoints.
func NewGraphHandler(svc *service.GraphService, recorder Recorder, apps AppLister) *GraphHandler {
	return &GraphHandler{service: svc, recorder: recorder, apps: apps}
}

// graphRequest builds a service request from query parameters:
// app, hours, end (RFC 3339), width, height.
func graphRequest(c *gin.Context, format string) (service.Request, error) {
	req := service.Request{App: c.Query("app"), Format: format}

	if v := c.Query("hours"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, errors.New("invalid hours parameter")
		}
		req.Window = time.Duration(hours * float64(time.Hour))
		if req.Window <= 0 {
			return req, errors.New("hours must be positive")
		}
	}
	if v := c.Query("end"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, errors.New("invalid end parameter")
		}
		req.End = end
	}
	for name, dst := range map[string]*int{"width": &req.Width, "height": &req.Height} {
		if v := c.Query(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return req, errors.New("invalid " + name + " parameter")
			}
			*dst = n
		}
	}
	return req, nil
}

// Graph handles GET /graph.png and GET /graph.svg
func (h *GraphHandler) Graph(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := graphRequest(c, format)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}

		res, err := h.service.Render(c.Request.Context(), req)
		if err != nil {
			h.renderError(c, err)
			return
		}

		c.Header("Cache-Control", "max-age=60")
		c.Header("X-Data-Points", strconv.Itoa(res.Points))
		c.Data(http.StatusOK, res.ContentType, res.Data)
	}
}

// SeriesPoint is one minute of the JSON series.
type SeriesPoint struct {
	Time   time.Time `json:"time"`
	Julian float64   `json:"t"`
	Count  float64   `json:"c"`
}

// Series handles GET /api/v1/tps
func (h *GraphHandler) Series(c *gin.Context) {
	req, err := graphRequest(c, surface.FormatPNG)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.service.Series(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	out := make([]SeriesPoint, len(points))
	for i, p := range points {
		out[i] = SeriesPoint{Time: graph.FromJulian(p.T, time.UTC), Julian: p.T, Count: p.C}
	}
	success(c, out)
}

// SceneBar is one bar of the JSON scene, with its hover title.
type SceneBar struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Title  string  `json:"title"`
}

// SceneLabel is one piece of axis text of the JSON scene.
type SceneLabel struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
	Kind string  `json:"kind"`
}

// SceneResponse is the laid-out chart returned by GET /api/v1/scene.
type SceneResponse struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Bars   []SceneBar   `json:"bars"`
	Labels []SceneLabel `json:"labels"`
}

// Scene handles GET /api/v1/scene
func (h *GraphHandler) Scene(c *gin.Context) {
	req, err := graphRequest(c, surface.FormatSVG)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	req, err = h.service.Normalize(req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	scene, err := h.service.Layout(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	out := SceneResponse{
		Width:  req.Width,
		Height: req.Height,
		Bars:   make([]SceneBar, len(scene.Bars)),
		Labels: make([]SceneLabel, 0, len(scene.Labels)),
	}
	for i, b := range scene.Bars {
		out.Bars[i] = SceneBar{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Title: b.Title}
	}
	for _, l := range scene.Labels {
		if l.Text == "" {
			continue
		}
		out.Labels = append(out.Labels, SceneLabel{X: l.X, Y: l.Y, Text: l.Text, Kind: l.Kind.String()})
	}
	success(c, out)
}

// SampleRequest is the body of POST /api/v1/tps.
type SampleRequest struct {
	App          string     `json:"app" binding:"required"`
	Transactions *float64   `json:"transactions" binding:"required"`
	At           *time.Time `json:"at"`
}

// Record handles POST /api/v1/tps
func (h *GraphHandler) Record(c *gin.Context) {
	var body SampleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid sample: "+err.Error())
		return
	}
	if *body.Transactions < 0 {
		fail(c, http.StatusBadRequest, "transactions must not be negative")
		return
	}

	at := time.Now()
	if body.At != nil {
		at = *body.At
	}
	if err := h.recorder.Record(c.Request.Context(), body.App, at, *body.Transactions); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "failed to record sample")
		return
	}
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "recorded"})
}

// Apps handles GET /api/v1/apps
func (h *GraphHandler) Apps(c *gin.Context) {
	apps, err := h.apps.Apps(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "failed to list apps")
		return
	}
	if apps == nil {
		apps = []string{}
	}
	success(c, apps)
}

func (h *GraphHandler) renderError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidRequest) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, "failed to render graph")
}
