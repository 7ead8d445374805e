package server

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Stats tracks passive service counters. Purely observational; nothing in the
// render pipeline reads them.
type Stats struct {
	requests atomic.Int64
	started  time.Time
}

func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

func (s *Stats) CountRequest() {
	s.requests.Add(1)
}

// Snapshot returns the current counters plus process memory usage.
func (s *Stats) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests":       s.requests.Load(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
	}
}
