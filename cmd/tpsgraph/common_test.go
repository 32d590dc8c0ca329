package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/christophergentle/tpsgraph/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadPoints(t *testing.T) {
	path := writeFile(t, "series.json", `[{"t": 2460375.0, "c": 2}, {"t": 2460375.5, "c": 0}]`)

	points, err := readPoints(path)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 2460375.5, points[1].T)
	assert.Equal(t, 2.0, points[0].C)
}

func TestReadPointsRejectsBadSeries(t *testing.T) {
	tests := map[string]string{
		"negative count": `[{"t": 1, "c": -1}]`,
		"out of order":   `[{"t": 2, "c": 1}, {"t": 1, "c": 1}]`,
		"not json":       `{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readPoints(writeFile(t, "series.json", body))
			assert.Error(t, err)
		})
	}
}

func TestAppName(t *testing.T) {
	cfg := config.Default()
	cfg.Store.App = "search,payments"

	app = ""
	assert.Equal(t, "search", appName(cfg))

	app = "checkout"
	defer func() { app = "" }()
	assert.Equal(t, "checkout", appName(cfg))
}

func TestLoadConfigFlag(t *testing.T) {
	configPath = writeFile(t, config.FileName, "graph:\n  width: 321\n")
	defer func() { configPath = "" }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 321, cfg.Graph.Width)
}
