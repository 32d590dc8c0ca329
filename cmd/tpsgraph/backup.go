package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/christophergentle/tpsgraph/internal/backup"
	"github.com/christophergentle/tpsgraph/internal/publish"
	"github.com/christophergentle/tpsgraph/internal/state"
	"github.com/christophergentle/tpsgraph/internal/store"
	"github.com/spf13/cobra"
)

var (
	backupDir      string
	backupDays     int
	backupCompress bool
	backupBucket   string
	backupDynamo   bool
	restoreDryRun  bool
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot TPS history to JSON Lines files",
		Long: `Snapshot the history of every configured app (or --app) from SQLite, or
from DynamoDB with --dynamodb, optionally copying the snapshot to S3.`,
		Args: cobra.NoArgs,
		RunE: runBackup,
	}
	cmd.Flags().StringVarP(&backupDir, "output", "o", "backups", "Directory the snapshot is created in")
	cmd.Flags().IntVar(&backupDays, "days", 0, "Days of history to include (default: store.retention_days)")
	cmd.Flags().BoolVar(&backupCompress, "compress", true, "Gzip the series files")
	cmd.Flags().StringVar(&backupBucket, "bucket", "", "S3 bucket to copy the snapshot to")
	cmd.Flags().BoolVar(&backupDynamo, "dynamodb", false, "Read history from store.dynamodb_table instead of SQLite")
	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	apps := cfg.Store.Apps()
	if app != "" {
		apps = []string{app}
	}

	var src backup.Source
	if backupDynamo {
		m, err := state.NewTPSHistoryManager(ctx, cfg.Store.DynamoDBTable)
		if err != nil {
			return err
		}
		src = m
	} else {
		st, err := store.Open(cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer st.Close()
		if app == "" {
			if apps, err = st.Apps(ctx); err != nil {
				return err
			}
		}
		src = st
	}

	days := backupDays
	if days == 0 {
		days = cfg.Store.RetentionDays
	}
	to := time.Now()
	opts := backup.BackupOptions{
		Apps:      apps,
		From:      to.AddDate(0, 0, -days),
		To:        to,
		OutputDir: backupDir,
		Compress:  backupCompress,
		ProgressFunc: func(app string, points int) {
			log.Printf("  %s: %d points", app, points)
		},
	}
	if backupBucket != "" {
		u, err := publish.NewS3Publisher(ctx, backupBucket, "")
		if err != nil {
			return err
		}
		opts.Uploader = u
		opts.Prefix = cfg.Publish.Prefix + "/backups"
	}

	res, err := backup.Backup(ctx, src, opts)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	log.Printf("Snapshot %s: %d points, %d files uploaded", res.BackupPath, res.TotalPoints, len(res.Uploaded))
	return nil
}

func restoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [snapshot-dir]",
		Short: "Import a snapshot into the SQLite history",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}
	cmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Check the snapshot without importing it")
	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := backup.RestoreOptions{InputPath: args[0], DryRun: restoreDryRun}
	if app != "" {
		opts.Apps = []string{app}
	}
	res, err := backup.Restore(context.Background(), st, opts)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	log.Printf("Restored %d apps (%d points) in %v", res.AppsRestored, res.TotalPoints, res.Duration)
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d apps failed to restore", len(res.Errors))
	}
	return nil
}
