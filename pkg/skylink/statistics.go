// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package skylink

import (
	"fmt"
	"time"
)

// Statistics tracks link traffic and error rates.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	BinaryFrames    uint64
	TextFrames      uint64
	FramingErrors   uint64
	MalformedFrames uint64
	UnknownTypes    uint64
	BytesRead       uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one frame event coming off the reader.
func (s *Statistics) Update(frame *Frame, readErr error) {
	if readErr != nil {
		s.FramingErrors++
		s.LastUpdateTime = time.Now()
		return
	}
	if frame == nil {
		return
	}

	switch frame.Kind {
	case FrameText:
		s.TextFrames++
	case FrameBinary:
		s.BinaryFrames++
		if !IsWellFormed(frame.Bytes) {
			s.MalformedFrames++
		} else if ParseResponseType(frame.Bytes) == Unknown {
			s.UnknownTypes++
		}
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates derives frame and error rates since StartTime.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.BinaryFrames+s.TextFrames) / elapsed
		s.ErrorRate = float64(s.FramingErrors+s.MalformedFrames) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	total := s.BinaryFrames + s.TextFrames
	var malformedPercent float64
	if s.BinaryFrames > 0 {
		malformedPercent = float64(s.MalformedFrames) * 100.0 / float64(s.BinaryFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Link Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", total)
	result += fmt.Sprintf("Binary Frames:   %8d\n", s.BinaryFrames)
	result += fmt.Sprintf("Debug Lines:     %8d\n", s.TextFrames)
	if s.BytesRead > 0 {
		result += fmt.Sprintf("Bytes Read:      %8d\n", s.BytesRead)
	}

	if s.FramingErrors > 0 {
		result += fmt.Sprintf("Framing Errors:  %8d\n", s.FramingErrors)
	}
	if s.MalformedFrames > 0 {
		result += fmt.Sprintf("Malformed Frames:%8d (%.1f%%)\n", s.MalformedFrames, malformedPercent)
	}
	if s.UnknownTypes > 0 {
		result += fmt.Sprintf("Unknown Types:   %8d\n", s.UnknownTypes)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset clears all counters.
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.BinaryFrames = 0
	s.TextFrames = 0
	s.FramingErrors = 0
	s.MalformedFrames = 0
	s.UnknownTypes = 0
	s.BytesRead = 0
	s.FrameRate = 0
	s.ErrorRate = 0
}
