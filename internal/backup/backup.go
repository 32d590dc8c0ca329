// Package backup snapshots per-minute TPS history to JSON Lines files with
// a manifest, and restores snapshots into a store.
package backup

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/christophergentle/tpsgraph/internal/graph"
)

// Source supplies the history to back up.
type Source interface {
	Series(ctx context.Context, app string, from, to time.Time) ([]graph.DataPoint, error)
}

// Uploader copies snapshot files somewhere durable.
type Uploader interface {
	Publish(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// BackupOptions configures backup behavior
type BackupOptions struct {
	Apps      []string
	From, To  time.Time
	OutputDir string
	Compress  bool
	// Uploader and Prefix copy the finished snapshot, manifest last.
	Uploader     Uploader
	Prefix       string
	ProgressFunc func(app string, points int)
}

// BackupResult contains information about a completed backup
type BackupResult struct {
	Manifest    Manifest
	BackupPath  string
	TotalPoints int
	Uploaded    []string
	Duration    time.Duration
}

// Backup writes the history of every app to a new snapshot directory under
// OutputDir. Apps are read in parallel; any failure fails the backup.
func Backup(ctx context.Context, src Source, options BackupOptions) (*BackupResult, error) {
	startTime := time.Now()
	if len(options.Apps) == 0 {
		return nil, fmt.Errorf("no apps to back up")
	}
	for _, app := range options.Apps {
		if err := checkAppName(app); err != nil {
			return nil, err
		}
	}
	if !options.From.Before(options.To) {
		return nil, fmt.Errorf("empty backup range %s to %s", options.From, options.To)
	}

	timestamp := FormatTimestamp(startTime)
	backupDir := filepath.Join(options.OutputDir, "backup-"+timestamp)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	log.Printf("Starting backup of %d apps to %s", len(options.Apps), backupDir)

	manifest := Manifest{
		BackupTimestamp: timestamp,
		BackupVersion:   Version,
		From:            options.From.UTC(),
		To:              options.To.UTC(),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var backupErr error

	for _, app := range options.Apps {
		wg.Add(1)
		go func(app string) {
			defer wg.Done()

			entry, err := backupApp(ctx, src, app, backupDir, options)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if backupErr == nil {
					backupErr = fmt.Errorf("failed to back up %s: %w", app, err)
				}
				return
			}
			manifest.Apps = append(manifest.Apps, *entry)
			manifest.TotalPoints += entry.PointCount
		}(app)
	}
	wg.Wait()

	if backupErr != nil {
		return nil, backupErr
	}

	// keep the manifest stable regardless of goroutine order
	ordered := make([]AppManifest, 0, len(manifest.Apps))
	for _, app := range options.Apps {
		if entry := manifest.Find(app); entry != nil {
			ordered = append(ordered, *entry)
		}
	}
	manifest.Apps = ordered

	if err := WriteManifest(filepath.Join(backupDir, manifestName), manifest); err != nil {
		return nil, err
	}

	result := &BackupResult{
		Manifest:    manifest,
		BackupPath:  backupDir,
		TotalPoints: manifest.TotalPoints,
	}

	if options.Uploader != nil {
		files := make([]string, 0, len(manifest.Apps)+1)
		for _, entry := range manifest.Apps {
			files = append(files, entry.FileName)
		}
		files = append(files, manifestName)

		for _, name := range files {
			location, err := upload(ctx, options.Uploader, path.Join(options.Prefix, "backup-"+timestamp, name), filepath.Join(backupDir, name))
			if err != nil {
				return nil, err
			}
			result.Uploaded = append(result.Uploaded, location)
		}
	}

	result.Duration = time.Since(startTime)
	log.Printf("Backup completed: %d points from %d apps in %v", result.TotalPoints, len(manifest.Apps), result.Duration)
	return result, nil
}

// checkAppName rejects names that cannot be used as a file name inside
// the snapshot directory.
func checkAppName(app string) error {
	if app == "" || app == "." || strings.ContainsAny(app, `/\`) || strings.Contains(app, "..") {
		return fmt.Errorf("app name %q cannot be backed up", app)
	}
	return nil
}

func backupApp(ctx context.Context, src Source, app, dir string, options BackupOptions) (*AppManifest, error) {
	appStart := time.Now()
	points, err := src.Series(ctx, app, options.From, options.To)
	if err != nil {
		return nil, err
	}
	if options.ProgressFunc != nil {
		options.ProgressFunc(app, len(points))
	}

	fileName := app + ".jsonl"
	if options.Compress {
		fileName += ".gz"
	}
	filePath := filepath.Join(dir, fileName)

	size, err := writePoints(filePath, points, options.Compress)
	if err != nil {
		return nil, err
	}
	checksum, err := FileChecksum(filePath)
	if err != nil {
		return nil, err
	}

	duration := time.Since(appStart)
	log.Printf("Backed up %s: %d points in %v", app, len(points), duration)
	return &AppManifest{
		App:            app,
		PointCount:     len(points),
		FileSize:       size,
		FileName:       fileName,
		Checksum:       checksum,
		BackupDuration: duration.String(),
	}, nil
}

// writePoints writes one JSON point per line and returns the file size.
func writePoints(filePath string, points []graph.DataPoint, compress bool) (int64, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(file)
		w = gz
	}

	encoder := json.NewEncoder(w)
	for _, p := range points {
		if err := encoder.Encode(p); err != nil {
			return 0, fmt.Errorf("failed to write point: %w", err)
		}
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return 0, fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}

	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Size(), nil
}

func upload(ctx context.Context, u Uploader, key, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	contentType := "application/x-ndjson"
	switch filepath.Ext(filePath) {
	case ".gz":
		contentType = "application/gzip"
	case ".json":
		contentType = "application/json"
	}
	location, err := u.Publish(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return location, nil
}
