// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace
//
// Groundlink - Nanosatellite Ground Station
//
// Ground-side service bridging TCP operators and the satellite
// telemetry link.

package main

import (
	"os"

	"github.com/kestrelsat/groundlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
