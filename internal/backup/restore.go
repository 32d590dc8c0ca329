package backup

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/christophergentle/tpsgraph/internal/graph"
)

// Importer receives restored series.
type Importer interface {
	Import(ctx context.Context, app string, points []graph.DataPoint) error
}

// RestoreOptions configures restore behavior
type RestoreOptions struct {
	InputPath string
	// Apps limits the restore; empty restores every app in the manifest.
	Apps         []string
	DryRun       bool
	ProgressFunc func(app string, points int)
}

// RestoreResult contains information about a completed restore
type RestoreResult struct {
	AppsRestored int
	TotalPoints  int
	Duration     time.Duration
	Errors       []string
}

// Restore imports a snapshot directory into dst. Files failing their
// checksum or failing to parse are reported in Errors and skipped.
func Restore(ctx context.Context, dst Importer, options RestoreOptions) (*RestoreResult, error) {
	startTime := time.Now()

	manifest, err := ReadManifest(filepath.Join(options.InputPath, manifestName))
	if err != nil {
		return nil, err
	}
	log.Printf("Restoring backup from %s (created: %s)", options.InputPath, manifest.BackupTimestamp)

	apps := options.Apps
	if len(apps) == 0 {
		for _, entry := range manifest.Apps {
			apps = append(apps, entry.App)
		}
	}

	result := &RestoreResult{Errors: []string{}}
	fail := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		result.Errors = append(result.Errors, msg)
		log.Printf("Error: %s", msg)
	}

	for _, app := range apps {
		entry := manifest.Find(app)
		if entry == nil {
			fail("app %s not found in backup manifest", app)
			continue
		}

		if !isPlainFileName(entry.FileName) {
			fail("invalid file name %q for %s", entry.FileName, app)
			continue
		}
		filePath := filepath.Join(options.InputPath, entry.FileName)
		if entry.Checksum != "" {
			sum, err := FileChecksum(filePath)
			if err != nil {
				fail("failed to check %s: %v", entry.FileName, err)
				continue
			}
			if sum != entry.Checksum {
				fail("checksum mismatch for %s", entry.FileName)
				continue
			}
		}

		points, err := readPoints(filePath)
		if err != nil {
			fail("failed to read points for %s: %v", app, err)
			continue
		}

		if options.DryRun {
			log.Printf("[DRY RUN] Would restore %d points for %s", len(points), app)
		} else if err := dst.Import(ctx, app, points); err != nil {
			fail("failed to restore %s: %v", app, err)
			continue
		}

		if options.ProgressFunc != nil {
			options.ProgressFunc(app, len(points))
		}
		result.AppsRestored++
		result.TotalPoints += len(points)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// isPlainFileName reports whether name stays inside the snapshot
// directory.
func isPlainFileName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}

// readPoints reads a JSON Lines series, gzip-compressed when the name ends
// in .gz.
func readPoints(filePath string) ([]graph.DataPoint, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(filePath, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var points []graph.DataPoint
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var p graph.DataPoint
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return points, nil
}
