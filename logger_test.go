// FILE: lixenwraith/logship/logger_test.go
package logship

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// fakeTransport records every request and replies with a configurable status
type fakeTransport struct {
	mu       sync.Mutex
	requests []*IngestRequest
	status   int
	err      error
	block    chan struct{} // When set, Send waits on it
	started  chan struct{} // When set, receives once per Send
}

func newFakeTransport(status int) *fakeTransport {
	return &fakeTransport{status: status}
}

func (f *fakeTransport) Send(ctx context.Context, req *IngestRequest) (*IngestResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block, started, status, err := f.block, f.started, f.status, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &IngestResponse{StatusCode: status, Status: http.StatusText(status), Body: []byte("reply")}, nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) request(i int) *IngestRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func (f *fakeTransport) setStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// syncBackground runs tasks inline
var syncBackground = BackgroundFunc(func(task func()) { task() })

// safeBuffer is a goroutine safe bytes.Buffer
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *safeBuffer) Lines() []string {
	s := strings.TrimRight(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// createTestLogger builds a shipping logger around a fake transport
func createTestLogger(t *testing.T, flushAfterLogs int64, bg Background) (*Logger, *fakeTransport, *safeBuffer) {
	t.Helper()
	transport := newFakeTransport(http.StatusOK)
	out := &safeBuffer{}

	logger, err := NewBuilder().
		APIKey("test-key").
		Dataset("test-dataset").
		Service("test-service").
		Namespace("test-namespace").
		RequestID("req-1").
		FlushAfterLogs(flushAfterLogs).
		FlushAfterMs(60000).
		Background(bg).
		Transport(transport).
		Output(out).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { logger.sched.cancel() })

	return logger, transport, out
}

func decodeBody(t *testing.T, req *IngestRequest) []Record {
	t.Helper()
	records, err := DecodeBatch(req.Body)
	require.NoError(t, err)
	return records
}

func messages(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

// TestNew verifies construction defaults and validation
func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		logger, err := New(nil)
		assert.ErrorIs(t, err, ErrNilConfig)
		assert.Nil(t, logger)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FlushAfterLogs = 0
		_, err := New(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flush_after_logs must be positive")
	})

	t.Run("generated request id", func(t *testing.T) {
		l1, err := New(DefaultConfig())
		require.NoError(t, err)
		l2, err := New(DefaultConfig())
		require.NoError(t, err)

		assert.Len(t, l1.RequestID(), 36)
		assert.NotEqual(t, l1.RequestID(), l2.RequestID())
	})

	t.Run("explicit request id", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RequestID = "cf-ray-123"
		logger, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, "cf-ray-123", logger.RequestID())
		assert.Equal(t, StateIdle, logger.FlushState())
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		logger, err := New(cfg)
		require.NoError(t, err)
		cfg.FlushAfterLogs = 1
		assert.Equal(t, int64(DefaultFlushAfterLogs), logger.cfg.FlushAfterLogs)
	})
}

// TestEndToEndSizeTriggeredFlush covers a, b below threshold then c flushing all three
func TestEndToEndSizeTriggeredFlush(t *testing.T) {
	logger, transport, out := createTestLogger(t, 3, syncBackground)
	transport.setStatus(http.StatusInternalServerError)

	logger.Info("a")
	logger.Info("b")
	assert.Equal(t, 2, logger.Pending())
	assert.Equal(t, 0, transport.calls())
	assert.Equal(t, StateArmed, logger.FlushState())

	logger.Info("c")
	require.Equal(t, 1, transport.calls())
	assert.Equal(t, []string{"a", "b", "c"}, messages(decodeBody(t, transport.request(0))))

	// Rejected batch stays for the next trigger
	assert.Equal(t, 3, logger.Pending())
	assert.Equal(t, StateArmed, logger.FlushState(), "size trigger re-arms the deferred flush")
	assert.Contains(t, out.String(), "failed to ingest logs: 500 Internal Server Error reply")

	// Next trigger resends everything, then drains on success
	transport.setStatus(http.StatusOK)
	require.NoError(t, logger.Flush(context.Background()))
	require.Equal(t, 2, transport.calls())
	assert.Equal(t, []string{"a", "b", "c"}, messages(decodeBody(t, transport.request(1))))
	assert.Equal(t, 0, logger.Pending())

	snap := logger.Stats().Snapshot()
	assert.Equal(t, uint64(3), snap.RecordsShipped)
	assert.Equal(t, uint64(1), snap.FlushFailures)
	assert.Equal(t, uint64(2), snap.FlushAttempts)
}

// TestEndToEndHTTP ships through the real transport to a test server
func TestEndToEndHTTP(t *testing.T) {
	type captured struct {
		path    string
		headers http.Header
		body    []byte
	}
	got := make(chan captured, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		got <- captured{path: r.URL.Path, headers: r.Header.Clone(), body: buf.Bytes()}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tasks, err := NewTaskGroup(4)
	require.NoError(t, err)

	logger, err := NewBuilder().
		APIKey("secret").
		Dataset("cloudflare").
		Service("my-worker").
		Namespace("fetch").
		BaseURL(srv.URL + "/v1").
		RequestID("ray-42").
		FlushAfterLogs(2).
		Background(tasks).
		Output(&safeBuffer{}).
		Build()
	require.NoError(t, err)

	logger.Info("hello", Fields{"foo": "bar"})
	logger.Warn("world")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tasks.Release(ctx))

	select {
	case c := <-got:
		assert.Equal(t, "/v1/cloudflare", c.path)
		assert.Equal(t, "application/json", c.headers.Get("Content-Type"))
		assert.Equal(t, "secret", c.headers.Get("x-api-key"))
		assert.Equal(t, "my-worker", c.headers.Get("x-service"))
		assert.Equal(t, "fetch", c.headers.Get("x-namespace"))

		var raw []map[string]any
		require.NoError(t, json.Unmarshal(c.body, &raw))
		require.Len(t, raw, 2)
		assert.Equal(t, "hello", raw[0]["message"])
		assert.Equal(t, "info", raw[0]["level"])
		assert.Equal(t, "bar", raw[0]["foo"])
		assert.Equal(t, "ray-42", raw[0]["requestId"])
		assert.NotContains(t, raw[0], "traceId")
		assert.Equal(t, "warn", raw[1]["level"])
	case <-time.After(5 * time.Second):
		t.Fatal("no batch received")
	}
	assert.Equal(t, 0, logger.Pending())
}

// TestLocalDevMode verifies console output bypasses the batch and the network
func TestLocalDevMode(t *testing.T) {
	transport := newFakeTransport(http.StatusOK)
	out := &safeBuffer{}

	logger, err := NewBuilder().
		APIKey("key").
		Dataset("ds").
		LocalDev(true).
		ConsoleColor(false).
		RequestID("local-req").
		FlushAfterLogs(1).
		Background(syncBackground).
		Transport(transport).
		Output(out).
		Build()
	require.NoError(t, err)

	logger.Error(WithStack(errors.New("boom")))

	assert.Equal(t, 0, transport.calls())
	assert.Equal(t, 0, logger.Pending())
	assert.Equal(t, StateIdle, logger.FlushState())

	lines := out.Lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "error - local-req - boom: "), lines[0])
	assert.Contains(t, lines[0], "TestLocalDevMode")

	t.Run("extra fields pretty printed", func(t *testing.T) {
		logger.Info("with fields", Fields{"user": "u1"})
		assert.Contains(t, out.String(), "info - local-req - with fields\n")
		assert.Contains(t, out.String(), "\"user\": \"u1\"")
	})

	t.Run("colors", func(t *testing.T) {
		colored := &safeBuffer{}
		cl, err := NewBuilder().LocalDev(true).ConsoleColor(true).Output(colored).Build()
		require.NoError(t, err)
		cl.Warn("careful")
		assert.Contains(t, colored.String(), "\x1b[")
		assert.Contains(t, colored.String(), "careful")
	})
}

// TestFallbackOnlyMode verifies missing key or background skips buffering
func TestFallbackOnlyMode(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		out := &safeBuffer{}
		logger, err := NewBuilder().RequestID("r").Background(syncBackground).Output(out).Build()
		require.NoError(t, err)

		logger.Info("no key", Fields{"k": "v"})
		assert.Equal(t, 0, logger.Pending())

		lines := out.Lines()
		require.Len(t, lines, 1)
		var rec Record
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
		assert.Equal(t, "no key", rec.Message)
		assert.Equal(t, "r", rec.RequestID)
		assert.Equal(t, "v", rec.Fields["k"])
		assert.Equal(t, uint64(1), logger.Stats().Snapshot().RecordsFallback)
	})

	t.Run("missing background", func(t *testing.T) {
		transport := newFakeTransport(http.StatusOK)
		out := &safeBuffer{}
		logger, err := NewBuilder().APIKey("k").Dataset("d").Transport(transport).Output(out).Build()
		require.NoError(t, err)

		logger.Info("no background")
		assert.Equal(t, 0, logger.Pending())
		assert.Equal(t, 0, transport.calls())
		assert.Len(t, out.Lines(), 1)
	})
}

// TestLevelOverride verifies an embedded level replaces the method level
func TestLevelOverride(t *testing.T) {
	logger, transport, _ := createTestLogger(t, 1, syncBackground)

	data := Fields{"level": "error", "attempt": 3}
	logger.Info("escalated", data)

	require.Equal(t, 1, transport.calls())
	records := decodeBody(t, transport.request(0))
	require.Len(t, records, 1)
	assert.Equal(t, "error", records[0].Level)
	assert.NotContains(t, records[0].Fields, "level")
	assert.Equal(t, float64(3), records[0].Fields["attempt"])

	// Caller map untouched
	assert.Equal(t, "error", data["level"])
}

// TestErrorNormalization verifies the accepted argument kinds of Error
func TestErrorNormalization(t *testing.T) {
	logger, transport, _ := createTestLogger(t, 1, syncBackground)

	logger.Error("plain")
	logger.Error(errors.New("bare error"))
	logger.Error(map[string]int{"code": 7})

	require.Equal(t, 3, transport.calls())
	assert.Equal(t, "plain", decodeBody(t, transport.request(0))[0].Message)
	assert.Equal(t, "bare error", decodeBody(t, transport.request(1))[0].Message)
	assert.Equal(t, `{"code":7}`, decodeBody(t, transport.request(2))[0].Message)
}

// TestTraceID verifies trace correlation through the OpenTelemetry provider
func TestTraceID(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	transport := newFakeTransport(http.StatusOK)
	logger, err := NewBuilder().
		APIKey("k").Dataset("d").
		FlushAfterLogs(1).
		Background(syncBackground).
		Transport(transport).
		Tracer(OTelTraceProvider{}).
		Context(ctx).
		Output(&safeBuffer{}).
		Build()
	require.NoError(t, err)

	logger.Info("traced")
	require.Equal(t, 1, transport.calls())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", decodeBody(t, transport.request(0))[0].TraceID)

	t.Run("no active span", func(t *testing.T) {
		id, ok := OTelTraceProvider{}.TraceID(context.Background())
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("panicking provider tolerated", func(t *testing.T) {
		logger.tracer = TraceProviderFunc(func(context.Context) (string, bool) { panic("no tracer") })
		logger.Info("still logged")
		require.Equal(t, 2, transport.calls())
		assert.Empty(t, decodeBody(t, transport.request(1))[0].TraceID)
	})
}

// TestTimestampsIncrease verifies records carry strictly increasing timestamps
func TestTimestampsIncrease(t *testing.T) {
	logger, transport, _ := createTestLogger(t, 50, syncBackground)

	for i := 0; i < 50; i++ {
		logger.Debug("tick")
	}
	require.Equal(t, 1, transport.calls())
	records := decodeBody(t, transport.request(0))
	require.Len(t, records, 50)
	for i := 1; i < len(records); i++ {
		assert.Greater(t, records[i].Timestamp, records[i-1].Timestamp)
	}
}

// TestShutdown verifies the final flush and post-shutdown behavior
func TestShutdown(t *testing.T) {
	logger, transport, out := createTestLogger(t, 100, syncBackground)

	logger.Info("pending")
	assert.Equal(t, StateArmed, logger.FlushState())

	require.NoError(t, logger.Shutdown(time.Second))
	assert.Equal(t, 1, transport.calls())
	assert.Equal(t, StateIdle, logger.FlushState())
	assert.Equal(t, 0, logger.Pending())

	assert.ErrorIs(t, logger.Flush(context.Background()), ErrShutdown)
	assert.NoError(t, logger.Shutdown(), "double shutdown")

	logger.Info("late")
	assert.Equal(t, 0, logger.Pending())
	assert.Contains(t, out.String(), `"message":"late"`)

	t.Run("undelivered records reported", func(t *testing.T) {
		l, tr, _ := createTestLogger(t, 100, syncBackground)
		tr.setStatus(http.StatusServiceUnavailable)
		l.Info("stuck")
		err := l.Shutdown(time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 records were not delivered")
	})

	t.Run("records emitted during the final flush", func(t *testing.T) {
		l, tr, lateOut := createTestLogger(t, 100, syncBackground)
		tr.block = make(chan struct{})
		tr.started = make(chan struct{}, 1)
		l.Info("queued")

		done := make(chan error, 1)
		go func() { done <- l.Shutdown(time.Second) }()
		<-tr.started

		l.Info("racing")
		close(tr.block)
		require.NoError(t, <-done)

		assert.Equal(t, 1, tr.calls())
		assert.Equal(t, []string{"queued"}, messages(decodeBody(t, tr.request(0))))
		assert.Equal(t, 0, l.Pending())
		assert.Contains(t, lateOut.String(), `"message":"racing"`)
	})
}
