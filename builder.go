// FILE: lixenwraith/logship/builder.go
package logship

import (
	"context"
	"io"
)

// Builder provides a fluent API for building loggers.
// It wraps a Config instance plus collaborator options and provides chainable
// methods for setting values.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error // Accumulate errors for deferred handling
}

// NewBuilder creates a new builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// FromConfig starts a builder from a copy of an existing configuration.
func FromConfig(cfg *Config) *Builder {
	if cfg == nil {
		return &Builder{cfg: DefaultConfig(), err: ErrNilConfig}
	}
	return &Builder{cfg: cfg.Clone()}
}

// Build creates a new Logger with the specified configuration and collaborators.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.cfg, b.opts...)
}

// APIKey sets the ingestion credential.
func (b *Builder) APIKey(key string) *Builder {
	b.cfg.APIKey = key
	return b
}

// Dataset sets the target dataset.
func (b *Builder) Dataset(dataset string) *Builder {
	b.cfg.Dataset = dataset
	return b
}

// Service sets the service label.
func (b *Builder) Service(service string) *Builder {
	b.cfg.Service = service
	return b
}

// Namespace sets the namespace label.
func (b *Builder) Namespace(namespace string) *Builder {
	b.cfg.Namespace = namespace
	return b
}

// BaseURL overrides the ingestion endpoint.
func (b *Builder) BaseURL(url string) *Builder {
	b.cfg.BaseURL = url
	return b
}

// FlushAfterMs sets the deferred flush delay in milliseconds.
func (b *Builder) FlushAfterMs(ms int64) *Builder {
	b.cfg.FlushAfterMs = ms
	return b
}

// FlushAfterLogs sets the batch size that triggers an immediate flush.
func (b *Builder) FlushAfterLogs(n int64) *Builder {
	b.cfg.FlushAfterLogs = n
	return b
}

// RequestTimeoutMs sets the POST timeout in milliseconds.
func (b *Builder) RequestTimeoutMs(ms int64) *Builder {
	b.cfg.RequestTimeoutMs = ms
	return b
}

// Compress enables gzip request bodies.
func (b *Builder) Compress(enable bool) *Builder {
	b.cfg.Compress = enable
	return b
}

// RequestID sets the id stamped on every record.
func (b *Builder) RequestID(id string) *Builder {
	b.cfg.RequestID = id
	return b
}

// LocalDev switches to console-only output.
func (b *Builder) LocalDev(enable bool) *Builder {
	b.cfg.IsLocalDev = enable
	return b
}

// ConsoleColor toggles ANSI colors in console output.
func (b *Builder) ConsoleColor(enable bool) *Builder {
	b.cfg.ConsoleColor = enable
	return b
}

// FallbackTarget selects "stdout" or "stderr" for the fallback channel.
func (b *Builder) FallbackTarget(target string) *Builder {
	b.cfg.FallbackTarget = target
	return b
}

// Override applies "key=value" strings, see Config.ApplyOverride.
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.cfg.ApplyOverride(overrides...); err != nil {
		b.err = err
	}
	return b
}

// Background sets the primitive keeping asynchronous flushes alive.
func (b *Builder) Background(bg Background) *Builder {
	b.opts = append(b.opts, WithBackground(bg))
	return b
}

// Tracer sets the trace id provider.
func (b *Builder) Tracer(p TraceProvider) *Builder {
	b.opts = append(b.opts, WithTraceProvider(p))
	return b
}

// Transport replaces the default HTTP transport.
func (b *Builder) Transport(t Transport) *Builder {
	b.opts = append(b.opts, WithTransport(t))
	return b
}

// Output replaces the fallback channel writer.
func (b *Builder) Output(w io.Writer) *Builder {
	b.opts = append(b.opts, WithOutput(w))
	return b
}

// Stats shares a counter set.
func (b *Builder) Stats(s *Stats) *Builder {
	b.opts = append(b.opts, WithStats(s))
	return b
}

// Context sets the request context.
func (b *Builder) Context(ctx context.Context) *Builder {
	b.opts = append(b.opts, WithContext(ctx))
	return b
}

// Example usage:
// tasks, _ := logship.NewTaskGroup(16)
// logger, err := logship.NewBuilder().
//
//	APIKey(os.Getenv("BASELIME_KEY")).
//	Dataset("cloudflare").
//	Service("my-worker").
//	Namespace("fetch").
//	RequestID(r.Header.Get("cf-ray")).
//	Background(tasks).
//	Tracer(logship.OTelTraceProvider{}).
//	Context(r.Context()).
//	Build()
//
// if err == nil {
//
//	 logger.Info("Hello world", logship.Fields{"foo": "bar"})
//	 tasks.WaitUntil(func() { _ = logger.Shutdown() })
//
// }
