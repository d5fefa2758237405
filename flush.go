// FILE: lixenwraith/logship/flush.go
package logship

import (
	"context"
	"fmt"
)

// FlushOptions controls a single flush attempt
type FlushOptions struct {
	// SkipIfInProgress returns immediately when another flush is in flight
	// instead of waiting for it. Used by the scheduler so triggers do not pile up.
	SkipIfInProgress bool
}

// Flush sends every pending record, waiting for an in-flight flush first.
// Delivery failures are reported on the fallback channel and leave the records
// pending, the returned error only reflects ctx expiring before the flush
// could start or a logger that was already shut down.
func (l *Logger) Flush(ctx context.Context) error {
	return l.FlushWithOptions(ctx, FlushOptions{})
}

// FlushWithOptions is Flush with explicit options
func (l *Logger) FlushWithOptions(ctx context.Context, opts FlushOptions) error {
	if l.closed.Load() {
		return ErrShutdown
	}
	return l.flush(ctx, opts)
}

// flush is the serialized send path. At most one call per logger holds
// flushSlot at any time, which bounds the logger to one network request.
func (l *Logger) flush(ctx context.Context, opts FlushOptions) error {
	if opts.SkipIfInProgress {
		select {
		case l.flushSlot <- struct{}{}:
		default:
			l.stats.FlushesSkipped.Add(1)
			return nil
		}
	} else {
		select {
		case l.flushSlot <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	l.flushing.Store(true)
	defer func() {
		if r := recover(); r != nil {
			l.stats.FlushFailures.Add(1)
			l.internalLog("failed to ingest logs: %v\n", r)
		}
		l.flushing.Store(false)
		<-l.flushSlot
	}()

	l.send(ctx)
	return nil
}

// send ships one snapshot and drains it on success. Must hold flushSlot.
func (l *Logger) send(ctx context.Context) {
	records := l.batch.Snapshot()
	n := len(records)
	if n == 0 {
		return
	}

	l.stats.FlushAttempts.Add(1)

	body, err := EncodeBatch(records)
	if err != nil {
		l.stats.FlushFailures.Add(1)
		l.internalLog("failed to encode %d records: %v\n", n, err)
		return
	}

	resp, err := l.transport.Send(ctx, &IngestRequest{
		URL:       l.endpoint,
		APIKey:    l.cfg.APIKey,
		Service:   l.cfg.Service,
		Namespace: l.cfg.Namespace,
		Body:      body,
		Gzip:      l.cfg.Compress,
	})
	if err != nil {
		l.stats.FlushFailures.Add(1)
		l.internalLog("failed to ingest logs: %v\n", err)
		return
	}

	if !resp.OK() {
		l.stats.FlushFailures.Add(1)
		l.internalLog("failed to ingest logs: %s\n", describeResponse(resp))
		return
	}

	// Records appended during the round trip sit behind the first n
	drained := l.batch.Drain(n)
	l.stats.RecordsShipped.Add(uint64(drained))
	l.stats.BytesSent.Add(uint64(len(body)))
}

// describeResponse renders status, status text and body of a rejected batch
func describeResponse(resp *IngestResponse) string {
	return fmt.Sprintf("%d %s %s", resp.StatusCode, resp.Status, resp.Body)
}
