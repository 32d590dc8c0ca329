package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/christophergentle/tpsgraph/internal/store"
	"github.com/spf13/cobra"
)

var pruneDays int

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [series.json]",
		Short: "Import a JSON series into the SQLite history",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name := appName(cfg)
	if name == "" {
		return fmt.Errorf("no app given: set --app or store.app")
	}

	points, err := readPoints(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Import(context.Background(), name, points); err != nil {
		return err
	}
	log.Printf("Imported %d points for %s into %s", len(points), name, cfg.Store.SQLitePath)
	return nil
}

func pruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history older than the retention period",
		Args:  cobra.NoArgs,
		RunE:  runPrune,
	}
	cmd.Flags().IntVar(&pruneDays, "days", 0, "Days of history to keep (default: store.retention_days)")
	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	days := pruneDays
	if days == 0 {
		days = cfg.Store.RetentionDays
	}
	if days <= 0 {
		return fmt.Errorf("invalid retention: %d days", days)
	}

	st, err := store.Open(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Prune(context.Background(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		return err
	}
	log.Printf("Pruned %d rows older than %d days", n, days)
	return nil
}
