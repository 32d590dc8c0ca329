// Package main provides the tpsgraph command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	app        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tpsgraph",
		Short: "Render transactions-per-minute bar charts",
		Long: `tpsgraph renders per-minute transaction history as a bar chart with
day and hour markers, as PNG or SVG.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: tpsgraph.yaml, then environment)")
	rootCmd.PersistentFlags().StringVar(&app, "app", "", "Application whose history is used (default: store.app)")

	rootCmd.AddCommand(renderCmd(), importCmd(), serveCmd(), pruneCmd(), backupCmd(), restoreCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
