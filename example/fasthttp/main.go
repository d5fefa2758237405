// FILE: lixenwraith/logship/example/fasthttp/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/compat"
)

var (
	baseCfg *logship.Config
	tasks   *logship.TaskGroup
	stats   = logship.NewStats()
)

func main() {
	var err error
	baseCfg, err = logship.NewConfigFromDefaults(map[string]any{
		"api_key":          os.Getenv("BASELIME_API_KEY"),
		"dataset":          "fasthttp",
		"service":          "example-server",
		"namespace":        "http",
		"flush_after_logs": 50,
		"is_local_dev":     os.Getenv("BASELIME_API_KEY") == "",
	})
	if err != nil {
		panic(err)
	}

	tasks, err = logship.NewTaskGroup(256)
	if err != nil {
		panic(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = tasks.Release(ctx)
	}()

	// Server level logger for fasthttp's own diagnostics
	serverLogger, err := logship.FromConfig(baseCfg).
		RequestID("server").
		Background(tasks).
		Stats(stats).
		Build()
	if err != nil {
		panic(err)
	}
	defer serverLogger.Shutdown()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		serverLogger,
		compat.WithDefaultLevel(logship.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:         "MyServer",
		Concurrency:  fasthttp.DefaultConcurrency,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		TCPKeepalive: true,
	}

	// Start server
	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

// requestHandler creates one logger per request and ships it after the response
func requestHandler(ctx *fasthttp.RequestCtx) {
	logger, err := logship.FromConfig(baseCfg).
		RequestID(fmt.Sprintf("%d", ctx.ID())).
		Background(tasks).
		Stats(stats).
		Build()
	if err != nil {
		ctx.Error("logger unavailable", fasthttp.StatusInternalServerError)
		return
	}
	// Final flush runs after the handler returns
	defer tasks.WaitUntil(func() { _ = logger.Shutdown() })

	start := time.Now()
	logger.Info("request received", logship.Fields{
		"method": string(ctx.Method()),
		"path":   string(ctx.Path()),
	})

	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())

	logger.Info("request completed", logship.Fields{
		"status":      ctx.Response.StatusCode(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func customLevelDetector(msg string) string {
	// Custom logic to detect log levels
	// Can inspect specific fasthttp message patterns

	if strings.Contains(msg, "connection cannot be served") {
		return logship.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return logship.LevelError
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
