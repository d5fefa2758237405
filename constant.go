// FILE: lixenwraith/logship/constant.go
package logship

import (
	"time"
)

// Level names carried in the "level" field of shipped records
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// FlushState values reported by Logger.FlushState
type FlushState int32

const (
	StateIdle     FlushState = iota // No timer armed, no send in progress
	StateArmed                      // A deferred flush timer is pending
	StateFlushing                   // A network send is in progress
)

// String returns the lowercase state name
func (s FlushState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// Ingestion defaults
const (
	DefaultBaseURL          = "https://events.baselime.io/v1"
	DefaultFlushAfterMs     = 10000
	DefaultFlushAfterLogs   = 100
	DefaultRequestTimeoutMs = 5000
)

// Ingestion request headers
const (
	headerAPIKey    = "x-api-key"
	headerService   = "x-service"
	headerNamespace = "x-namespace"
	contentTypeJSON = "application/json"
)

// Reserved record keys, caller fields never override these
const (
	keyMessage   = "message"
	keyLevel     = "level"
	keyTimestamp = "timestamp"
	keyRequestID = "requestId"
	keyTraceID   = "traceId"
)

// Timers
const (
	// Default wait for Shutdown when no timeout is given
	defaultShutdownTimeout = 5 * time.Second
)
