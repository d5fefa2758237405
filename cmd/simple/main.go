// FILE: lixenwraith/logship/cmd/simple/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/logship"
)

func main() {
	fmt.Println("--- Simple Logger Example ---")

	// --- Local development: colored console lines, nothing is shipped ---
	fmt.Println("\n[1] local dev console output")
	local, err := logship.NewBuilder().
		LocalDev(true).
		RequestID("local-1234").
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	local.Info("server started", logship.Fields{"port": 8080})
	local.Debug("cache warmed")
	local.Warn("slow upstream", logship.Fields{"latency_ms": 950})
	local.Error(logship.WithStack(errors.New("connection reset")))

	// --- No API key: every record is one JSON line on stdout ---
	fmt.Println("\n[2] fallback JSON lines (no api key)")
	fallback, err := logship.NewBuilder().RequestID("fallback-5678").Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	fallback.Info("user signed in", logship.Fields{"user": "u-42"})
	fallback.Log("level override", logship.Fields{"level": "error"})

	// --- Shipping to a local sink (run cmd/sink in another terminal) ---
	fmt.Println("\n[3] shipping to http://127.0.0.1:8090/v1/simple")
	tasks, err := logship.NewTaskGroup(4)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create task group: %v\n", err)
		os.Exit(1)
	}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	reqCtx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	shipping, err := logship.NewBuilder().
		APIKey("local-key").
		Dataset("simple").
		Service("simple-example").
		BaseURL("http://127.0.0.1:8090/v1").
		FlushAfterLogs(3).
		FlushAfterMs(200).
		Background(tasks).
		Tracer(logship.OTelTraceProvider{}).
		Context(reqCtx).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	for i := 1; i <= 4; i++ {
		shipping.Info("processing item", logship.Fields{"item": i})
	}
	fmt.Printf("pending after size-triggered flush: %d (state %s)\n", shipping.Pending(), shipping.FlushState())

	time.Sleep(300 * time.Millisecond) // Let the deferred flush fire
	tasks.WaitUntil(func() { _ = shipping.Shutdown(time.Second) })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := tasks.Release(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Background tasks did not settle: %v\n", err)
	}

	snap := shipping.Stats().Snapshot()
	fmt.Printf("shipped %d of %d records in %d attempts\n", snap.RecordsShipped, snap.RecordsBuffered, snap.FlushAttempts)
	fmt.Println("\n--- Simple Logger Example Complete ---")
}
