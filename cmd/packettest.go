// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kestrel Aerospace

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelsat/groundlink/internal/ground"
	"github.com/kestrelsat/groundlink/pkg/skylink"
)

var packettestCmd = &cobra.Command{
	Use:   "packettest",
	Short: "Encode every command packet and dump the wire bytes",
	Long: `Build one of each ground-to-satellite packet with sample values and
print the encoded bytes. Offline check of the wire layout against the
satellite firmware; no link is opened.`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packettestCmd)
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	ids := ground.NewIDAllocator()
	enc := skylink.NewEncoder(ids)

	packets := []struct {
		name   string
		packet skylink.MessagePacket
	}{
		{"TIME_SEND", skylink.NewTimeSend(skylink.ReservedID, 1767225600)},
		{"UPDATE_MIN_TEMP", skylink.NewUpdateMinTemp(skylink.ReservedID, 5)},
		{"UPDATE_MAX_TEMP", skylink.NewUpdateMaxTemp(skylink.ReservedID, 40)},
		{"UPDATE_HUMIDITY", skylink.NewUpdateHumidity(skylink.ReservedID, 55)},
		{"UPDATE_LIGHT", skylink.NewUpdateLight(skylink.ReservedID, 80)},
		{"UPDATE_VOLTAGE", skylink.NewUpdateVoltage(skylink.ReservedID, 2.5)},
		{"REQUEST_SENSOR_LOGS", skylink.NewRequestSensorLogs(skylink.ReservedID, 100, 200)},
		{"REQUEST_EVENT_LOG", skylink.NewRequestEventLog(skylink.ReservedID, 100, 200)},
		{"REQUEST_CURRENT_TIME", skylink.NewRequestCurrentTime(skylink.ReservedID)},
	}

	fmt.Printf("Groundlink - Packet Encoder Test\n\n")

	for _, pt := range packets {
		p := pt.packet
		data, err := enc.Encode(&p)
		if err != nil {
			return fmt.Errorf("encode %s: %w", pt.name, err)
		}

		fmt.Printf("%-22s len=%-3d id=0x%02X  ", pt.name, len(data), p.ResponseID)
		for _, b := range data {
			fmt.Printf("%02X ", b)
		}
		fmt.Println()

		if !skylink.IsWellFormed(data) {
			fmt.Printf("  WARNING: packet failed well-formedness check\n")
		}
	}

	return nil
}
