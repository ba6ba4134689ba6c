// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package skylink

import (
	"bytes"
	"testing"
)

// feed pushes a byte slice through the reader and collects the emitted
// frames and errors.
func feed(r *FrameReader, data []byte) ([]*Frame, []error) {
	var frames []*Frame
	var errs []error
	for _, b := range data {
		f, err := r.Feed(b)
		if err != nil {
			errs = append(errs, err)
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
	return frames, errs
}

// ============================================================
// Frame Reader Tests
// ============================================================

func TestFrameReader_BinaryFrame(t *testing.T) {
	r := NewFrameReader()
	ack := []byte{0x05, 0x08, 0x03, 0x00, 0x55}

	frames, errs := feed(r, ack)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].Kind != FrameBinary {
		t.Error("Expected binary frame")
	}
	if !bytes.Equal(frames[0].Bytes, ack) {
		t.Errorf("Frame bytes mismatch: got %X, want %X", frames[0].Bytes, ack)
	}
}

func TestFrameReader_TextLine(t *testing.T) {
	r := NewFrameReader()

	frames, errs := feed(r, []byte("boot complete\n"))
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].Kind != FrameText {
		t.Error("Expected text frame")
	}
	if string(frames[0].Bytes) != "boot complete\n" {
		t.Errorf("Text mismatch: %q", frames[0].Bytes)
	}
}

// A text line, a binary frame, and another text line arrive back to
// back; exactly three frames come out, in order.
func TestFrameReader_InterleavedStreams(t *testing.T) {
	r := NewFrameReader()

	stream := []byte("radio up\n")
	ack := []byte{0x05, 0x08, 0x01, 0x00, 0x55}
	stream = append(stream, ack...)
	stream = append(stream, []byte("mode ok\n")...)

	frames, errs := feed(r, stream)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(frames))
	}
	if frames[0].Kind != FrameText || string(frames[0].Bytes) != "radio up\n" {
		t.Errorf("Frame 0 wrong: %v %q", frames[0].Kind, frames[0].Bytes)
	}
	if frames[1].Kind != FrameBinary || !bytes.Equal(frames[1].Bytes, ack) {
		t.Errorf("Frame 1 wrong: %v %X", frames[1].Kind, frames[1].Bytes)
	}
	if frames[2].Kind != FrameText || string(frames[2].Bytes) != "mode ok\n" {
		t.Errorf("Frame 2 wrong: %v %q", frames[2].Kind, frames[2].Bytes)
	}
}

func TestFrameReader_IdleZeroBytesDiscarded(t *testing.T) {
	r := NewFrameReader()

	stream := append([]byte{0, 0, 0}, 0x05, 0x08, 0x01, 0x00, 0x55)
	frames, errs := feed(r, stream)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 || len(frames[0].Bytes) != 5 {
		t.Fatalf("Noise bytes leaked into frame: %+v", frames)
	}
}

// An end marker before the declared length does not terminate the frame.
func TestFrameReader_EarlyEndMarkIsPayload(t *testing.T) {
	r := NewFrameReader()

	// data_len=7, payload contains 0x55 at offset 4
	frame := []byte{0x07, 0x02, 0x01, 0x00, 0x55, 0x01, 0x55}
	frames, errs := feed(r, frame)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if !bytes.Equal(frames[0].Bytes, frame) {
		t.Errorf("Frame truncated at embedded end mark: %X", frames[0].Bytes)
	}
}

func TestFrameReader_OversizeFrameDropped(t *testing.T) {
	r := NewFrameReader()

	// Declared length 254 but no end mark ever arrives; the last byte
	// fed pushes the accumulator past the ceiling.
	var errs []error
	var frames []*Frame
	r.Feed(0xFE)
	for i := 0; i < MaxFrameSize; i++ {
		f, err := r.Feed(0x01)
		if err != nil {
			errs = append(errs, err)
		}
		if f != nil {
			frames = append(frames, f)
		}
	}

	if len(errs) != 1 {
		t.Fatalf("Expected exactly one frame error, got %d", len(errs))
	}
	if len(frames) != 0 {
		t.Errorf("No frame should be emitted, got %d", len(frames))
	}

	// The reader must be usable again immediately.
	clean := []byte{0x05, 0x08, 0x01, 0x00, 0x55}
	fs, es := feed(r, clean)
	if len(es) != 0 || len(fs) != 1 || !bytes.Equal(fs[0].Bytes, clean) {
		t.Errorf("Reader did not recover after oversize drop")
	}
}

// Sensor frames declare data_len=16 with the end mark excluded; the
// reader emits the full 17 bytes once the marker lands.
func TestFrameReader_SensorFrameSeventeenBytes(t *testing.T) {
	r := NewFrameReader()
	frame := []byte{
		0x10, 0x01, 0xFF, 0x00,
		0x14, 0x2D, 0x32, 0x03,
		0x66, 0x66, 0x06, 0x40,
		0x80, 0x96, 0x98, 0x00,
		0x55,
	}

	frames, errs := feed(r, frame)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if len(frames[0].Bytes) != 17 {
		t.Errorf("Frame length = %d, want 17", len(frames[0].Bytes))
	}
}

// A lone newline emits a one-byte text frame; the dispatcher drops
// debug lines of length <= 1.
func TestFrameReader_BareNewline(t *testing.T) {
	r := NewFrameReader()

	frames, errs := feed(r, []byte{'\n'})
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 || frames[0].Kind != FrameText || len(frames[0].Bytes) != 1 {
		t.Fatalf("Expected one-byte text frame, got %+v", frames)
	}
}
