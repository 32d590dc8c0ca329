package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/christophergentle/tpsgraph/internal/graph"
	"github.com/christophergentle/tpsgraph/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, "payments", base.Add(time.Duration(i)*time.Minute), float64(i+1)))
	}
	require.NoError(t, s.Record(ctx, "search", base, 42))
	return s
}

type memUploader struct {
	mu   sync.Mutex
	keys []string
}

func (u *memUploader) Publish(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.keys = append(u.keys, key)
	return "mem://" + key, nil
}

func TestBackupAndRestore(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(map[bool]string{false: "plain", true: "gzip"}[compress], func(t *testing.T) {
			src := seededStore(t)
			ctx := context.Background()

			res, err := Backup(ctx, src, BackupOptions{
				Apps:      []string{"payments", "search"},
				From:      base.Add(-time.Hour),
				To:        base.Add(time.Hour),
				OutputDir: t.TempDir(),
				Compress:  compress,
			})
			require.NoError(t, err)
			assert.Equal(t, 6, res.TotalPoints)
			require.Len(t, res.Manifest.Apps, 2)
			assert.Equal(t, "payments", res.Manifest.Apps[0].App)
			assert.Equal(t, compress, strings.HasSuffix(res.Manifest.Apps[0].FileName, ".gz"))

			dst, err := store.Open(":memory:")
			require.NoError(t, err)
			defer dst.Close()

			restored, err := Restore(ctx, dst, RestoreOptions{InputPath: res.BackupPath})
			require.NoError(t, err)
			assert.Empty(t, restored.Errors)
			assert.Equal(t, 2, restored.AppsRestored)
			assert.Equal(t, 6, restored.TotalPoints)

			points, err := dst.Series(ctx, "payments", base.Add(-time.Hour), base.Add(time.Hour))
			require.NoError(t, err)
			require.Len(t, points, 5)
			assert.Equal(t, 5.0, points[4].C)
			assert.True(t, base.Add(4*time.Minute).Equal(graph.FromJulian(points[4].T, time.UTC)))
		})
	}
}

func TestBackupUploadsManifestLast(t *testing.T) {
	u := &memUploader{}
	res, err := Backup(context.Background(), seededStore(t), BackupOptions{
		Apps:      []string{"payments", "search"},
		From:      base,
		To:        base.Add(time.Hour),
		OutputDir: t.TempDir(),
		Uploader:  u,
		Prefix:    "snapshots",
	})
	require.NoError(t, err)

	require.Len(t, u.keys, 3)
	dir := "snapshots/backup-" + res.Manifest.BackupTimestamp
	assert.Equal(t, []string{dir + "/payments.jsonl", dir + "/search.jsonl", dir + "/manifest.json"}, u.keys)
	assert.Equal(t, "mem://"+dir+"/manifest.json", res.Uploaded[2])
}

func TestBackupRejectsEmptyRange(t *testing.T) {
	_, err := Backup(context.Background(), seededStore(t), BackupOptions{
		Apps: []string{"payments"}, From: base, To: base, OutputDir: t.TempDir(),
	})
	assert.Error(t, err)
}

func TestRestoreReportsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	res, err := Backup(ctx, seededStore(t), BackupOptions{
		Apps: []string{"payments", "search"}, From: base, To: base.Add(time.Hour), OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	f, err := os.OpenFile(filepath.Join(res.BackupPath, "search.jsonl"), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("{\"t\": 1, \"c\": 1}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	dst, err := store.Open(":memory:")
	require.NoError(t, err)
	defer dst.Close()

	restored, err := Restore(ctx, dst, RestoreOptions{InputPath: res.BackupPath, Apps: []string{"payments", "search", "missing"}})
	require.NoError(t, err)
	assert.Equal(t, 1, restored.AppsRestored)
	require.Len(t, restored.Errors, 2)
	assert.Contains(t, restored.Errors[0], "checksum mismatch")
	assert.Contains(t, restored.Errors[1], "not found")
}

func TestRestoreDryRun(t *testing.T) {
	ctx := context.Background()
	res, err := Backup(ctx, seededStore(t), BackupOptions{
		Apps: []string{"payments"}, From: base, To: base.Add(time.Hour), OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	dst, err := store.Open(":memory:")
	require.NoError(t, err)
	defer dst.Close()

	restored, err := Restore(ctx, dst, RestoreOptions{InputPath: res.BackupPath, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 5, restored.TotalPoints)

	apps, err := dst.Apps(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestTimestampRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 2, 9, 0, time.FixedZone("CET", 3600))
	ts := FormatTimestamp(at)
	assert.Equal(t, "2024-03-05T13-02-09Z", ts)

	parsed, err := ParseTimestamp(ts)
	require.NoError(t, err)
	assert.True(t, at.Equal(parsed))
}

func TestReadManifestRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), manifestName)
	require.NoError(t, WriteManifest(path, Manifest{BackupVersion: "0.1"}))
	_, err := ReadManifest(path)
	assert.ErrorContains(t, err, "unsupported")
}

func TestBackupRejectsUnsafeAppNames(t *testing.T) {
	root := t.TempDir()
	for _, app := range []string{"../../escaped", "a/b", `a\b`, "..", ".", ""} {
		t.Run(app, func(t *testing.T) {
			_, err := Backup(context.Background(), seededStore(t), BackupOptions{
				Apps:      []string{"payments", app},
				From:      base,
				To:        base.Add(time.Hour),
				OutputDir: filepath.Join(root, "backups"),
			})
			assert.Error(t, err)
		})
	}

	matches, err := filepath.Glob(filepath.Join(root, "*.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, matches)
	_, err = os.Stat(filepath.Join(root, "backups"))
	assert.True(t, os.IsNotExist(err))
}

func TestRestoreRejectsFileNamesOutsideSnapshot(t *testing.T) {
	ctx := context.Background()
	res, err := Backup(ctx, seededStore(t), BackupOptions{
		Apps: []string{"payments"}, From: base, To: base.Add(time.Hour), OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	outside := filepath.Join(filepath.Dir(res.BackupPath), "outside.jsonl")
	require.NoError(t, os.WriteFile(outside, []byte("{\"t\": 2460375, \"c\": 9}\n"), 0o644))

	manifest := res.Manifest
	manifest.Apps[0].FileName = "../outside.jsonl"
	manifest.Apps[0].Checksum = ""
	require.NoError(t, WriteManifest(filepath.Join(res.BackupPath, manifestName), manifest))

	dst, err := store.Open(":memory:")
	require.NoError(t, err)
	defer dst.Close()

	restored, err := Restore(ctx, dst, RestoreOptions{InputPath: res.BackupPath})
	require.NoError(t, err)
	assert.Equal(t, 0, restored.AppsRestored)
	require.Len(t, restored.Errors, 1)
	assert.Contains(t, restored.Errors[0], "invalid file name")

	apps, err := dst.Apps(ctx)
	require.NoError(t, err)
	assert.Empty(t, apps)
}
