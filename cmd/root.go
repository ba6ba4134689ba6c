// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kestrel Aerospace

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kestrelsat/groundlink/internal/config"
)

var (
	// Configuration file
	configPath string

	// Link flags (override the config file)
	portName string
	baudRate int
	linkURL  string
)

var rootCmd = &cobra.Command{
	Use:   "groundlink",
	Short: "Nanosatellite ground-station service",
	Long: `Groundlink - ground-station service for the Kestrel nanosatellite.

Bridges TCP-connected operators and the satellite's binary telemetry
protocol over a serial link (or a serial-over-WebSocket bridge).
Operators issue text commands; the service encodes them, correlates the
satellite's asynchronous replies back to the requesting operator, and
keeps an in-memory index of retrieved sensor logs.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVarP(&linkURL, "url", "u", "", "Bridge URL (ws:// or wss://)")
}

// loadConfig merges the config file (if any) with command-line
// overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if portName != "" {
		cfg.Ground.Link.Port = portName
		cfg.Ground.Link.URL = ""
	}
	if baudRate != 0 {
		cfg.Ground.Link.Baud = baudRate
	}
	if linkURL != "" {
		cfg.Ground.Link.URL = linkURL
		cfg.Ground.Link.Port = ""
	}

	return cfg, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
