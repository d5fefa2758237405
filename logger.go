// FILE: lixenwraith/logship/logger.go
package logship

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/logship/formatter"
)

// Logger buffers records for one request scope and ships them in batches.
//
// A Logger is created per request, handed a Background that outlives the
// response, and discarded once the owner has awaited a final Flush inside
// that Background. Records still pending at that point are lost.
type Logger struct {
	cfg       *Config
	ctx       context.Context
	requestID string
	endpoint  string

	clock      *MonotonicClock
	batch      *Batch
	sched      *scheduler
	transport  Transport
	background Background
	tracer     TraceProvider
	stats      *Stats

	flushSlot chan struct{} // One slot, held for the duration of a send
	flushing  atomic.Bool
	closed    atomic.Bool

	out   *sink
	fmtMu sync.Mutex
	fmt   *formatter.Formatter
}

// Option configures collaborators of a Logger
type Option func(*Logger)

// WithBackground sets the primitive that keeps asynchronous flushes alive.
// Without one, records are written to the fallback channel and never buffered.
func WithBackground(b Background) Option {
	return func(l *Logger) { l.background = b }
}

// WithTraceProvider sets the optional trace id source
func WithTraceProvider(p TraceProvider) Option {
	return func(l *Logger) { l.tracer = p }
}

// WithTransport replaces the default fasthttp transport
func WithTransport(t Transport) Option {
	return func(l *Logger) { l.transport = t }
}

// WithOutput replaces the fallback channel selected by fallback_target
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		if w != nil {
			l.out = &sink{w: w}
		}
	}
}

// WithStats shares a counter set between loggers
func WithStats(s *Stats) Option {
	return func(l *Logger) {
		if s != nil {
			l.stats = s
		}
	}
}

// WithContext sets the request context used for trace lookup and flushes
func WithContext(ctx context.Context) Option {
	return func(l *Logger) {
		if ctx != nil {
			l.ctx = ctx
		}
	}
}

// Process-wide sinks so loggers targeting the same stream do not interleave lines
var (
	stdoutSink = &sink{w: os.Stdout}
	stderrSink = &sink{w: os.Stderr}
)

// New creates a Logger from a validated configuration
func New(cfg *Config, opts ...Option) (*Logger, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}
	cfg = cfg.Clone()

	l := &Logger{
		cfg:       cfg,
		ctx:       context.Background(),
		requestID: cfg.RequestID,
		endpoint:  cfg.endpoint(),
		clock:     NewMonotonicClock(),
		batch:     NewBatch(int(min(cfg.FlushAfterLogs, 1024))),
		flushSlot: make(chan struct{}, 1),
		fmt:       formatter.New().Color(cfg.ConsoleColor),
	}
	if l.requestID == "" {
		l.requestID = uuid.NewString()
	}
	if cfg.FallbackTarget == "stderr" {
		l.out = stderrSink
	} else {
		l.out = stdoutSink
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.stats == nil {
		l.stats = NewStats()
	}
	if l.transport == nil {
		l.transport = NewFastHTTPTransport(time.Duration(cfg.RequestTimeoutMs) * time.Millisecond)
	}

	l.sched = &scheduler{
		delay:      time.Duration(cfg.FlushAfterMs) * time.Millisecond,
		threshold:  int(cfg.FlushAfterLogs),
		after:      systemAfterFunc,
		isFlushing: l.flushing.Load,
		flushNow:   l.scheduleFlush,
		armed:      func() { l.stats.TimersArmed.Add(1) },
	}

	return l, nil
}

// RequestID returns the id stamped on every record
func (l *Logger) RequestID() string {
	return l.requestID
}

// Pending returns the number of buffered records
func (l *Logger) Pending() int {
	return l.batch.Size()
}

// Stats returns the counter set this logger reports into
func (l *Logger) Stats() *Stats {
	return l.stats
}

// FlushState reports idle, armed, or flushing
func (l *Logger) FlushState() FlushState {
	if l.flushing.Load() {
		return StateFlushing
	}
	if l.sched.isArmed() {
		return StateArmed
	}
	return StateIdle
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, data ...Fields) {
	l.emit(LevelDebug, msg, data)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, data ...Fields) {
	l.emit(LevelInfo, msg, data)
}

// Log is an alias of Info
func (l *Logger) Log(msg string, data ...Fields) {
	l.emit(LevelInfo, msg, data)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, data ...Fields) {
	l.emit(LevelWarn, msg, data)
}

// Error logs at error level. msg may be a string, an error (rendered with its
// trace when created through WithStack), or any value, which is JSON encoded.
func (l *Logger) Error(msg any, data ...Fields) {
	l.emit(LevelError, normalizeMessage(msg), data)
}

// Errorf formats an error level message
func (l *Logger) Errorf(format string, args ...any) {
	l.emit(LevelError, fmt.Sprintf(format, args...), nil)
}

// emit builds the record and routes it to the console, the fallback channel,
// or the batch
func (l *Logger) emit(level, msg string, data []Fields) {
	fields := mergeFields(data)
	level = extractLevel(level, fields)

	rec := Record{
		Message:   msg,
		Level:     level,
		Timestamp: l.clock.Now(),
		RequestID: l.requestID,
		TraceID:   l.traceID(),
		Fields:    fields,
	}
	l.stats.RecordsEmitted.Add(1)

	switch {
	case l.cfg.IsLocalDev:
		l.writeConsole(rec)
	case l.cfg.APIKey == "" || l.background == nil || l.closed.Load():
		l.writeFallback(rec)
	default:
		size := l.batch.Append(rec)
		l.stats.RecordsBuffered.Add(1)
		l.sched.onAppend(size)
	}
}

// traceID resolves the active trace, tolerating a missing or failing provider
func (l *Logger) traceID() (id string) {
	if l.tracer == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			id = ""
		}
	}()
	id, ok := l.tracer.TraceID(l.ctx)
	if !ok {
		return ""
	}
	return id
}

// scheduleFlush hands an opportunistic flush to the background primitive
func (l *Logger) scheduleFlush() {
	ctx := context.WithoutCancel(l.ctx)
	l.background.WaitUntil(func() {
		_ = l.flush(ctx, FlushOptions{SkipIfInProgress: true})
	})
}

// writeConsole renders a record in the human readable local form
func (l *Logger) writeConsole(rec Record) {
	l.fmtMu.Lock()
	defer l.fmtMu.Unlock()
	l.out.write(l.fmt.Console(rec.Level, rec.RequestID, rec.Message, rec.Fields))
}

// writeFallback emits a record as one JSON line when it cannot be shipped
func (l *Logger) writeFallback(rec Record) {
	l.stats.RecordsFallback.Add(1)

	l.fmtMu.Lock()
	defer l.fmtMu.Unlock()
	line, err := l.fmt.JSONLine(rec)
	if err != nil {
		l.out.write(l.fmt.Line("logship: ", fmt.Sprintf("failed to encode record %q: %v", rec.Message, err)))
		return
	}
	l.out.write(line)
}

// internalLog writes library diagnostics to the fallback channel
func (l *Logger) internalLog(format string, args ...any) {
	l.fmtMu.Lock()
	defer l.fmtMu.Unlock()
	l.out.write(l.fmt.Line("logship: ", fmt.Sprintf(format, args...)))
}

// Shutdown cancels the pending timer and performs a final flush.
// It must be called from inside the Background when the owning scope ends.
// If no timeout is provided, uses a default of 5 seconds.
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	// Records emitted from here on take the fallback path
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}

	effectiveTimeout := defaultShutdownTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		effectiveTimeout = timeout[0]
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(l.ctx), effectiveTimeout)
	defer cancel()

	l.sched.cancel()

	var finalErr error
	if err := l.flush(ctx, FlushOptions{}); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("final flush did not start within %v: %w", effectiveTimeout, err))
	}
	if n := l.batch.Size(); n > 0 {
		finalErr = combineErrors(finalErr, fmtErrorf("%d records were not delivered", n))
	}

	return finalErr
}
