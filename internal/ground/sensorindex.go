// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package ground

import (
	"sort"
	"sync"

	"github.com/kestrelsat/groundlink/pkg/skylink"
)

// SensorIndex is an in-memory, timestamp-sorted log of sensor readings
// with range queries. Inserts arrive from the dispatcher's inbound path
// while operator requests read concurrently; a single mutex with short
// critical sections keeps it consistent.
type SensorIndex struct {
	mu       sync.Mutex
	readings []skylink.SensorReading
}

// NewSensorIndex creates an empty index.
func NewSensorIndex() *SensorIndex {
	return &SensorIndex{
		readings: make([]skylink.SensorReading, 0, 100),
	}
}

// Insert adds r in timestamp order. Inserting a timestamp that is
// already present is a no-op reported as success: log retrievals may
// replay records the index has seen.
func (s *SensorIndex) Insert(r skylink.SensorReading) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := sort.Search(len(s.readings), func(i int) bool {
		return s.readings[i].Timestamp >= r.Timestamp
	})

	if pos < len(s.readings) && s.readings[pos].Timestamp == r.Timestamp {
		return true
	}

	s.readings = append(s.readings, skylink.SensorReading{})
	copy(s.readings[pos+1:], s.readings[pos:])
	s.readings[pos] = r
	return true
}

// Get returns the reading sampled exactly at ts.
func (s *SensorIndex) Get(ts uint32) (skylink.SensorReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := sort.Search(len(s.readings), func(i int) bool {
		return s.readings[i].Timestamp >= ts
	})
	if pos < len(s.readings) && s.readings[pos].Timestamp == ts {
		return s.readings[pos], true
	}
	return skylink.SensorReading{}, false
}

// Range returns the readings with timestamps in [start, end], both ends
// inclusive. It returns nil (not an empty slice) when the index is
// empty or start lies beyond the latest stored timestamp; otherwise the
// possibly empty slice between the bounds.
func (s *SensorIndex) Range(start, end uint32) ([]skylink.SensorReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.readings) == 0 {
		return nil, false
	}
	if start > s.readings[len(s.readings)-1].Timestamp {
		return nil, false
	}

	lower := sort.Search(len(s.readings), func(i int) bool {
		return s.readings[i].Timestamp >= start
	})
	upper := sort.Search(len(s.readings), func(i int) bool {
		return s.readings[i].Timestamp > end
	})
	if upper < lower {
		return []skylink.SensorReading{}, true
	}

	out := make([]skylink.SensorReading, upper-lower)
	copy(out, s.readings[lower:upper])
	return out, true
}

// Latest returns the most recent reading.
func (s *SensorIndex) Latest() (skylink.SensorReading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.readings) == 0 {
		return skylink.SensorReading{}, false
	}
	return s.readings[len(s.readings)-1], true
}

// All returns a copy of every stored reading in timestamp order.
func (s *SensorIndex) All() []skylink.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]skylink.SensorReading, len(s.readings))
	copy(out, s.readings)
	return out
}

// Size returns the number of stored readings.
func (s *SensorIndex) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings)
}

// Clear removes every reading.
func (s *SensorIndex) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = s.readings[:0]
}
