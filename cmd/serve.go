// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kestrel Aerospace

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kestrelsat/groundlink/internal/config"
	"github.com/kestrelsat/groundlink/internal/gateway"
	"github.com/kestrelsat/groundlink/internal/ground"
	"github.com/kestrelsat/groundlink/internal/link"
	"github.com/kestrelsat/groundlink/internal/observability"
)

var (
	tcpPort     int
	maxClients  int
	metricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ground-station service",
	Long: `Run the ground station: open the satellite link, accept operator TCP
connections, and dispatch traffic between the two until interrupted.

Operators connect with any TCP client (or 'groundlink console') and
type 'help' for the command set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&tcpPort, "tcp-port", 0, "Operator TCP port (default 4444)")
	serveCmd.Flags().IntVar(&maxClients, "max-clients", 0, "Maximum simultaneous operator sessions (default 10)")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus endpoint address (e.g. :9100)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if tcpPort != 0 {
		cfg.Ground.TCP.Port = tcpPort
	}
	if maxClients != 0 {
		cfg.Ground.TCP.MaxClients = maxClients
	}
	if metricsAddr != "" {
		cfg.Ground.Metrics.Addr = metricsAddr
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	conn, connInfo, err := link.Open(cfg.Ground.Link.Port, cfg.Ground.Link.Baud, cfg.Ground.Link.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	var metrics *observability.Collector
	if cfg.Ground.Metrics.Addr != "" {
		metrics, err = observability.NewCollector(nil)
		if err != nil {
			return fmt.Errorf("metrics setup failed: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Ground.Metrics.Addr, mux); err != nil {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		logger.Info("metrics endpoint up", "addr", cfg.Ground.Metrics.Addr)
	}

	dispatcher := ground.NewDispatcher(conn, ground.NewIDAllocator(), metrics, logger)
	gw := gateway.NewServer(cfg.Ground.TCP.Port, cfg.Ground.TCP.MaxClients, dispatcher.HandleCommand, metrics, logger)
	dispatcher.AttachSender(gw)

	if err := gw.Start(); err != nil {
		return err
	}
	defer gw.Stop()

	fmt.Printf("Groundlink - Nanosatellite Ground Station\n")
	fmt.Printf("Link: %s\n", connInfo)
	fmt.Printf("Operator TCP port: %d\n\n", cfg.Ground.TCP.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Unblock the listen loop's pending read when a signal lands.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	err = dispatcher.Listen(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
