// FILE: lixenwraith/logship/cmd/stress/main.go
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/lixenwraith/logship"
)

const (
	maxMessageSize = 2000
	configFile     = "stress_config.toml"
)

// Example TOML content for stress test, pointed at cmd/sink
var tomlContent = `
# Example stress_config.toml
[logship]
  api_key = "stress-key"
  dataset = "stress"
  service = "stress-test"
  namespace = "bursts"
  baselime_url = "http://127.0.0.1:8090/v1"
  flush_after_ms = 50
  flush_after_logs = 100
  request_timeout_ms = 2000
  compress = true
  fallback_target = "stderr"
`

var levels = []string{
	logship.LevelDebug,
	logship.LevelInfo,
	logship.LevelWarn,
	logship.LevelError,
}

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

// runRequest simulates one request scope: a fresh logger, a burst of records,
// and a final flush handed to the background
func runRequest(cfg *logship.Config, tasks *logship.TaskGroup, stats *logship.Stats, burstID, logsPerBurst int) error {
	logger, err := logship.FromConfig(cfg).
		RequestID(uuid.NewString()).
		Background(tasks).
		Stats(stats).
		Build()
	if err != nil {
		return err
	}

	for i := 0; i < logsPerBurst; i++ {
		msg := generateRandomMessage(rand.Intn(maxMessageSize) + 10)
		data := logship.Fields{
			"bst": burstID,
			"seq": i,
			"rnd": rand.Int63(),
		}
		switch levels[rand.Intn(len(levels))] {
		case logship.LevelDebug:
			logger.Debug(msg, data)
		case logship.LevelInfo:
			logger.Info(msg, data)
		case logship.LevelWarn:
			logger.Warn(msg, data)
		case logship.LevelError:
			logger.Error(msg, data)
		}
	}

	tasks.WaitUntil(func() {
		if err := logger.Shutdown(5 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "\nrequest %d: %v\n", burstID, err)
		}
	})
	return nil
}

func main() {
	var (
		totalBursts  int
		logsPerBurst int
		numWorkers   int
		poolSize     int
	)

	flagSet := pflag.NewFlagSet("stress", pflag.ContinueOnError)
	flagSet.IntVar(&totalBursts, "bursts", 200, "number of simulated requests")
	flagSet.IntVar(&logsPerBurst, "logs", 250, "records per request")
	flagSet.IntVar(&numWorkers, "workers", 32, "concurrent requests")
	flagSet.IntVar(&poolSize, "pool", 64, "background task pool size")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "stress: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("--- Logger Stress Test ---")

	// --- Setup Config ---
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write example config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created example config file: %s\n", configFile)
	}

	cfg, err := logship.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Remaining arguments are key=value overrides, e.g. flush_after_logs=20
	if err := cfg.ApplyOverride(flagSet.Args()...); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid override: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	tasks, err := logship.NewTaskGroup(poolSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create task group: %v\n", err)
		os.Exit(1)
	}
	stats := logship.NewStats()

	fmt.Printf("Shipping to %s/%s: %d workers, %d requests, %d logs/request.\n",
		cfg.BaseURL, cfg.Dataset, numWorkers, totalBursts, logsPerBurst)
	fmt.Println("Start cmd/sink first, or watch stderr for ingestion failures.")
	fmt.Println("Press Ctrl+C to stop early.")

	// --- Setup Workers and Signal Handling ---
	burstChan := make(chan int, numWorkers)
	var wg sync.WaitGroup
	var completed atomic.Int64
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping request generation...")
		close(stopChan)
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for burstID := range burstChan {
				if err := runRequest(cfg, tasks, stats, burstID, logsPerBurst); err != nil {
					fmt.Fprintf(os.Stderr, "\nrequest %d: %v\n", burstID, err)
				}
				if n := completed.Add(1); n%10 == 0 || n == int64(totalBursts) {
					fmt.Printf("\rProgress: %d/%d requests completed", n, totalBursts)
				}
			}
		}()
	}

	// --- Run Test ---
	startTime := time.Now()
submit:
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting request submission.")
			break submit
		}
	}
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	wg.Wait()

	fmt.Println("Waiting for background flushes (up to 30s)...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := tasks.Release(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Background flushes did not settle: %v\n", err)
	}
	duration := time.Since(startTime)

	snap := stats.Snapshot()
	fmt.Printf("\n--- Test Finished ---\n")
	fmt.Printf("Completed %d/%d requests in %v\n", completed.Load(), totalBursts, duration.Round(time.Millisecond))
	if duration.Seconds() > 0 {
		fmt.Printf("Approximate records/sec: %.2f\n", float64(snap.RecordsEmitted)/duration.Seconds())
	}
	args := snap.Args()
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Printf("  %-18s %v\n", args[i], args[i+1])
	}
	if lost := snap.RecordsBuffered - snap.RecordsShipped; lost > 0 {
		fmt.Printf("%d records were not confirmed by the endpoint\n", lost)
	}
}
