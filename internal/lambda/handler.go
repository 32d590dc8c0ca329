package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/christophergentle/tpsgraph/internal/service"
	"github.com/christophergentle/tpsgraph/internal/surface"
)

// Publisher stores a rendered graph somewhere durable.
type Publisher interface {
	PublishGraph(ctx context.Context, app, format string, at time.Time, data []byte) (string, error)
}

// PublishResult represents the result of a scheduled publish
type PublishResult struct {
	App          string `json:"app"`
	Location     string `json:"location,omitempty"`
	Points       int    `json:"points"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// GraphHandler serves graphs to API Gateway and publishes them on a
// schedule.
type GraphHandler struct {
	service   *service.GraphService
	publisher Publisher
	apps      []string
	now       func() time.Time
}

// NewGraphHandler creates a handler. publisher may be nil when nothing is
// published; apps lists what a scheduled run renders.
func NewGraphHandler(svc *service.GraphService, publisher Publisher, apps []string) *GraphHandler {
	return &GraphHandler{service: svc, publisher: publisher, apps: apps, now: time.Now}
}

// HandleRequest renders the graph described by an API Gateway proxy
// request. The format comes from the path extension or the format query
// parameter; publish=true also uploads the image.
func (h *GraphHandler) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	q := req.QueryStringParameters

	graphReq := service.Request{App: q["app"], Format: q["format"]}
	if graphReq.Format == "" {
		graphReq.Format = formatFromPath(req.Path)
	}
	if v := q["hours"]; v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil || hours <= 0 {
			return errorResponse(http.StatusBadRequest, "invalid hours parameter"), nil
		}
		graphReq.Window = time.Duration(hours * float64(time.Hour))
	}
	for name, dst := range map[string]*int{"width": &graphReq.Width, "height": &graphReq.Height} {
		if v := q[name]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return errorResponse(http.StatusBadRequest, "invalid "+name+" parameter"), nil
			}
			*dst = n
		}
	}

	res, err := h.service.Render(ctx, graphReq)
	if errors.Is(err, service.ErrInvalidRequest) {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}
	if err != nil {
		log.Printf("Failed to render graph: %v", err)
		return errorResponse(http.StatusInternalServerError, "failed to render graph"), nil
	}

	headers := map[string]string{
		"Content-Type":  res.ContentType,
		"Cache-Control": "max-age=60",
	}

	if q["publish"] == "true" && h.publisher != nil {
		normalized, _ := h.service.Normalize(graphReq)
		location, err := h.publisher.PublishGraph(ctx, normalized.App, normalized.Format, h.now(), res.Data)
		if err != nil {
			log.Printf("Failed to publish graph: %v", err)
		} else {
			headers["X-Published-Location"] = location
		}
	}

	resp := events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: headers}
	if strings.HasPrefix(res.ContentType, "image/svg") {
		resp.Body = string(res.Data)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(res.Data)
		resp.IsBase64Encoded = true
	}
	return resp, nil
}

// HandleScheduled renders and publishes the default graph of every
// configured app. A failing app does not stop the others.
func (h *GraphHandler) HandleScheduled(ctx context.Context, event events.CloudWatchEvent) ([]PublishResult, error) {
	log.Printf("Scheduled publish triggered by %s at %s", event.Source, event.Time)
	if h.publisher == nil {
		return nil, fmt.Errorf("no publisher configured")
	}

	var results []PublishResult
	var failed int
	for _, app := range h.apps {
		result := PublishResult{App: app}
		res, err := h.service.Render(ctx, service.Request{App: app})
		if err == nil {
			result.Points = res.Points
			result.Location, err = h.publisher.PublishGraph(ctx, app, surface.FormatPNG, h.now(), res.Data)
		}
		if err != nil {
			log.Printf("Failed to publish graph for %s: %v", app, err)
			result.ErrorMessage = err.Error()
			failed++
		} else {
			result.Success = true
		}
		results = append(results, result)
	}

	if failed > 0 && failed == len(h.apps) {
		return results, fmt.Errorf("all %d graph publishes failed", failed)
	}
	return results, nil
}

func formatFromPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".svg") {
		return surface.FormatSVG
	}
	return surface.FormatPNG
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]interface{}{"code": status, "message": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
