package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Version of the snapshot layout written by Backup.
const Version = "1.0"

const (
	manifestName    = "manifest.json"
	timestampLayout = "2006-01-02T15-04-05Z"
)

// Manifest describes one history snapshot
type Manifest struct {
	BackupTimestamp string        `json:"backupTimestamp"`
	BackupVersion   string        `json:"backupVersion"`
	From            time.Time     `json:"from"`
	To              time.Time     `json:"to"`
	Apps            []AppManifest `json:"apps"`
	TotalPoints     int           `json:"totalPoints"`
}

// AppManifest describes the series file of a single application
type AppManifest struct {
	App            string `json:"app"`
	PointCount     int    `json:"pointCount"`
	FileSize       int64  `json:"fileSize"`
	FileName       string `json:"fileName"`
	Checksum       string `json:"checksum"`
	BackupDuration string `json:"backupDuration"`
}

// Find returns the entry of app, or nil.
func (m *Manifest) Find(app string) *AppManifest {
	for i := range m.Apps {
		if m.Apps[i].App == app {
			return &m.Apps[i]
		}
	}
	return nil
}

// WriteManifest writes the manifest to a file
func WriteManifest(path string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads and parses a manifest file
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.BackupVersion != Version {
		return nil, fmt.Errorf("unsupported backup version %q", manifest.BackupVersion)
	}
	return &manifest, nil
}

// FileChecksum returns the hex SHA256 of a file.
func FileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file for checksum: %w", err)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// FormatTimestamp names a snapshot directory after t.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a snapshot timestamp
func ParseTimestamp(ts string) (time.Time, error) {
	return time.Parse(timestampLayout, ts)
}
