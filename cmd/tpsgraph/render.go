package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/christophergentle/tpsgraph/internal/service"
	"github.com/christophergentle/tpsgraph/internal/store"
	"github.com/christophergentle/tpsgraph/internal/surface"
	"github.com/spf13/cobra"
)

var (
	renderInput  string
	renderOutput string
	renderFormat string
	renderWidth  int
	renderHeight int
	renderHours  float64
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a graph to a file",
		Long: `Render a graph from a JSON series (--input) or from the SQLite history
of an application. The format follows --format or the output extension.`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}
	cmd.Flags().StringVarP(&renderInput, "input", "i", "", "JSON series file of {\"t\", \"c\"} points")
	cmd.Flags().StringVarP(&renderOutput, "output", "o", "tps.png", "Output file path")
	cmd.Flags().StringVarP(&renderFormat, "format", "f", "", "Output format: png or svg")
	cmd.Flags().IntVar(&renderWidth, "width", 0, "Image width in pixels (default: graph.width)")
	cmd.Flags().IntVar(&renderHeight, "height", 0, "Image height in pixels (default: graph.height)")
	cmd.Flags().Float64Var(&renderHours, "hours", 0, "History window in hours (default: graph.window_hours)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := renderFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(renderOutput), ".")
	}
	format = surface.NormalizeFormat(format)
	if format != surface.FormatPNG && format != surface.FormatSVG {
		return fmt.Errorf("invalid format: %s (must be png or svg)", format)
	}

	var res *service.Result
	if renderInput != "" {
		svc, err := service.FromConfig(cfg, nil)
		if err != nil {
			return err
		}
		points, err := readPoints(renderInput)
		if err != nil {
			return err
		}
		width, height := renderWidth, renderHeight
		if width == 0 {
			width = cfg.Graph.Width
		}
		if height == 0 {
			height = cfg.Graph.Height
		}
		res, err = svc.RenderPoints(format, width, height, points)
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	} else {
		st, err := store.Open(cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := service.FromConfig(cfg, st)
		if err != nil {
			return err
		}
		res, err = svc.Render(context.Background(), service.Request{
			App:    appName(cfg),
			Window: time.Duration(renderHours * float64(time.Hour)),
			Format: format,
			Width:  renderWidth,
			Height: renderHeight,
		})
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	if err := os.WriteFile(renderOutput, res.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Printf("Wrote %s (%d points, %d bytes)", renderOutput, res.Points, len(res.Data))
	return nil
}
