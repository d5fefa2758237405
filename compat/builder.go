// FILE: lixenwraith/logship/compat/builder.go
package compat

import (
	"fmt"

	"github.com/lixenwraith/logship"
)

// Builder provides a flexible way to create configured logger adapters for gnet and fasthttp
// It can use an existing *logship.Logger instance or create a new one from a *logship.Config
type Builder struct {
	logger *logship.Logger
	logCfg *logship.Config
	opts   []logship.Option
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing logger to use for the adapters
// If this is set WithConfig and WithOptions are ignored
func (b *Builder) WithLogger(l *logship.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("logship/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance
// If neither WithLogger nor WithConfig is used, a default logger will be created
func (b *Builder) WithConfig(cfg *logship.Config) *Builder {
	b.logCfg = cfg
	return b
}

// WithOptions sets collaborators for a new logger instance, typically
// logship.WithBackground so the adapters ship instead of falling back
func (b *Builder) WithOptions(opts ...logship.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// getLogger resolves the logger to be used, creating one if necessary
func (b *Builder) getLogger() (*logship.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	// An existing logger was provided, so we use it
	if b.logger != nil {
		return b.logger, nil
	}

	cfg := b.logCfg
	if cfg == nil {
		cfg = logship.DefaultConfig()
	}

	l, err := logship.New(cfg, b.opts...)
	if err != nil {
		return nil, err
	}

	// Cache the newly created logger for subsequent builds with this builder
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that lifts "key=%v" pairs of the
// format string into record fields
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*StructuredGnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewStructuredGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// GetLogger returns the underlying *logship.Logger instance
// If a logger has not been provided or created yet, it will be initialized
func (b *Builder) GetLogger() (*logship.Logger, error) {
	return b.getLogger()
}

// --- Example Usage ---
//
//	// 1. Create a process wide task group and the shipping logger
//	tasks, _ := logship.NewTaskGroup(64)
//	cfg, _ := logship.NewConfigFromFile("logship.toml")
//
//	// 2. Create a builder that owns the logger
//	builder := compat.NewBuilder().
//		WithConfig(cfg).
//		WithOptions(logship.WithBackground(tasks))
//
//	// 3. Build the required adapters
//	gnetLogger, err := builder.BuildGnet()
//	if err != nil { /* handle error */ }
//
//	fasthttpLogger, err := builder.BuildFastHTTP()
//	if err != nil { /* handle error */ }
//
//	// 4. Configure your servers with the adapters
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	server := &fasthttp.Server{
//		Handler: handler,
//		Logger:  fasthttpLogger,
//	}
//	go server.ListenAndServe(":8080")
//
//	// 5. On exit, ship what is left
//	logger, _ := builder.GetLogger()
//	_ = logger.Shutdown()
