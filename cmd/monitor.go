// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kestrel Aerospace

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelsat/groundlink/internal/link"
	"github.com/kestrelsat/groundlink/pkg/skylink"
)

var statsInterval int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display decoded link traffic in human-readable format",
	Long: `Attach to the satellite link read-only and print every frame as it
arrives: decoded binary packets with their payloads, and satellite
debug lines verbatim. Periodically prints link statistics.

Useful for bench diagnosis without starting the full service.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().IntVar(&statsInterval, "stats", 0, "Print statistics every N seconds (0 disables)")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, connInfo, err := link.Open(cfg.Ground.Link.Port, cfg.Ground.Link.Baud, cfg.Ground.Link.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Groundlink - Link Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	reader := skylink.NewFrameReader()
	stats := skylink.NewStatistics()
	buf := make([]byte, 256)

	var lastStats time.Time

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err == link.ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		stats.BytesRead += uint64(n)
		for i := 0; i < n; i++ {
			frame, ferr := reader.Feed(buf[i])
			stats.Update(frame, ferr)
			if ferr != nil {
				fmt.Printf("[ERROR] %v\n", ferr)
				continue
			}
			if frame == nil {
				continue
			}

			switch frame.Kind {
			case skylink.FrameText:
				if len(frame.Bytes) > 1 {
					fmt.Printf("Satellite Debug: %s", frame.Bytes)
				}
			case skylink.FrameBinary:
				fmt.Print(skylink.FormatFrame(frame.Bytes, time.Now()))
			}
		}

		if statsInterval > 0 && time.Since(lastStats) >= time.Duration(statsInterval)*time.Second {
			fmt.Print(stats.String())
			lastStats = time.Now()
		}
	}
}
