// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package skylink

import (
	"bytes"
	"testing"
)

// FuzzFrameReader feeds arbitrary byte streams through the reader and
// checks structural invariants: no panic, binary frames respect the
// safety ceiling, text frames end in a line feed, and the reader stays
// usable afterwards.
func FuzzFrameReader(f *testing.F) {
	f.Add([]byte{0x05, 0x08, 0x01, 0x00, 0x55})
	f.Add([]byte("debug line\n"))
	f.Add([]byte{0x00, 0x00, 0xFF, 0x55})
	f.Add(bytes.Repeat([]byte{0x7F}, 300))

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewFrameReader()
		for _, b := range data {
			frame, err := r.Feed(b)
			if err != nil {
				continue
			}
			if frame == nil {
				continue
			}
			switch frame.Kind {
			case FrameBinary:
				if len(frame.Bytes) > MaxFrameSize+1 {
					t.Errorf("binary frame exceeds ceiling: %d bytes", len(frame.Bytes))
				}
				if frame.Bytes[len(frame.Bytes)-1] != EndMark {
					t.Errorf("binary frame does not end with end mark: %X", frame.Bytes)
				}
			case FrameText:
				if frame.Bytes[len(frame.Bytes)-1] != '\n' {
					t.Errorf("text frame does not end with line feed: %q", frame.Bytes)
				}
			}
		}

		// Reader must still accept a clean frame after arbitrary noise.
		r.Reset()
		var got *Frame
		for _, b := range []byte{0x05, 0x08, 0x01, 0x00, 0x55} {
			if fr, err := r.Feed(b); err == nil && fr != nil {
				got = fr
			}
		}
		if got == nil || got.Kind != FrameBinary {
			t.Error("reader unusable after fuzz input")
		}
	})
}

// FuzzParseSensorData must never panic on arbitrary frames.
func FuzzParseSensorData(f *testing.F) {
	f.Add([]byte{0x10, 0x01, 0xFF, 0x00, 0x14, 0x2D, 0x32, 0x03, 0x66, 0x66, 0x06, 0x40, 0x80, 0x96, 0x98, 0x00, 0x55})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		ParseSensorData(data)
		ParseEventData(data)
		ParseCurrentTime(data)
		ParseResponseType(data)
		ParseResponseID(data)
		IsWellFormed(data)
	})
}
