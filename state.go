// FILE: state.go
package logship

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds shipping counters. One Stats may be shared by many loggers,
// typically one per process while loggers are created per request.
type Stats struct {
	RecordsEmitted  atomic.Uint64 // Every facade call
	RecordsBuffered atomic.Uint64 // Appended to a batch
	RecordsShipped  atomic.Uint64 // Drained after a 2xx response
	RecordsFallback atomic.Uint64 // Written to the fallback channel instead of buffered

	FlushAttempts  atomic.Uint64 // Network sends started
	FlushFailures  atomic.Uint64 // Non-2xx responses, transport and encoding errors
	FlushesSkipped atomic.Uint64 // Opportunistic flushes skipped while one was in flight
	TimersArmed    atomic.Uint64 // Deferred flush timers started
	BytesSent      atomic.Uint64 // Request body bytes of successful sends

	startTime time.Time
}

// NewStats creates a zeroed counter set
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	RecordsEmitted  uint64
	RecordsBuffered uint64
	RecordsShipped  uint64
	RecordsFallback uint64
	FlushAttempts   uint64
	FlushFailures   uint64
	FlushesSkipped  uint64
	TimersArmed     uint64
	BytesSent       uint64
	Uptime          time.Duration
}

// Snapshot reads all counters
func (s *Stats) Snapshot() StatsSnapshot {
	var uptime time.Duration
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime)
	}
	return StatsSnapshot{
		RecordsEmitted:  s.RecordsEmitted.Load(),
		RecordsBuffered: s.RecordsBuffered.Load(),
		RecordsShipped:  s.RecordsShipped.Load(),
		RecordsFallback: s.RecordsFallback.Load(),
		FlushAttempts:   s.FlushAttempts.Load(),
		FlushFailures:   s.FlushFailures.Load(),
		FlushesSkipped:  s.FlushesSkipped.Load(),
		TimersArmed:     s.TimersArmed.Load(),
		BytesSent:       s.BytesSent.Load(),
		Uptime:          uptime,
	}
}

// Args renders the snapshot as alternating key/value pairs for structured output
func (s StatsSnapshot) Args() []any {
	return []any{
		"records_emitted", s.RecordsEmitted,
		"records_buffered", s.RecordsBuffered,
		"records_shipped", s.RecordsShipped,
		"records_fallback", s.RecordsFallback,
		"flush_attempts", s.FlushAttempts,
		"flush_failures", s.FlushFailures,
		"flushes_skipped", s.FlushesSkipped,
		"timers_armed", s.TimersArmed,
		"bytes_sent", s.BytesSent,
		"uptime_seconds", int64(s.Uptime.Seconds()),
	}
}

// sink serializes line writes to the fallback channel
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// write emits one complete line, errors are ignored as there is nowhere left to report them
func (s *sink) write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(line)
}
