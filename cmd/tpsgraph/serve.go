package main

import (
	"log"

	"github.com/christophergentle/tpsgraph/internal/cache"
	"github.com/christophergentle/tpsgraph/internal/metrics"
	"github.com/christophergentle/tpsgraph/internal/server"
	"github.com/christophergentle/tpsgraph/internal/service"
	"github.com/christophergentle/tpsgraph/internal/store"
	"github.com/spf13/cobra"
)

var serveAddr string

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graphs and the TPS API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if app != "" {
		cfg.Store.App = app
	}

	st, err := store.Open(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := service.FromConfig(cfg, st)
	if err != nil {
		return err
	}

	m := metrics.NewMetrics(nil)
	svc.WithMetrics(m)

	if cfg.Server.RedisAddr != "" {
		rc, err := cache.New(cfg.Server.RedisAddr, cfg.Server.CacheTTL())
		if err != nil {
			log.Printf("Render cache disabled: %v", err)
		} else {
			svc.WithCache(rc)
			log.Printf("Render cache enabled at %s", cfg.Server.RedisAddr)
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	r := server.SetupRouter(server.NewGraphHandler(svc, st, st), m)
	log.Printf("Serving graphs on %s from %s", addr, cfg.Store.SQLitePath)
	return r.Run(addr)
}
