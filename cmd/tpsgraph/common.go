package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/christophergentle/tpsgraph/internal/config"
	"github.com/christophergentle/tpsgraph/internal/graph"
)

// loadConfig reads the --config file, falling back to tpsgraph.yaml and
// then to TPSGRAPH_* environment variables.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.GetConfigPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("No %s found, using environment configuration", config.FileName)
			return config.LoadConfigFromEnv(), nil
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// appName returns --app or the first configured app.
func appName(cfg *config.Config) string {
	if app != "" {
		return app
	}
	if apps := cfg.Store.Apps(); len(apps) > 0 {
		return apps[0]
	}
	return ""
}

// readPoints decodes a JSON array of {"t": julianDay, "c": count}.
func readPoints(path string) ([]graph.DataPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var points []graph.DataPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, p := range points {
		if p.C < 0 {
			return nil, fmt.Errorf("point %d has negative count %v", i, p.C)
		}
		if i > 0 && p.T <= points[i-1].T {
			return nil, fmt.Errorf("point %d is not after point %d", i, i-1)
		}
	}
	return points, nil
}
