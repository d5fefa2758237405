// FILE: lixenwraith/logship/compat/gnet.go
package compat

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/logship"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// fatalFlushTimeout bounds the final flush before the fatal handler runs
const fatalFlushTimeout = 100 * time.Millisecond

// GnetAdapter wraps logship.Logger to implement gnet logging.Logger interface
type GnetAdapter struct {
	logger       *logship.Logger
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *logship.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

func gnetFields() logship.Fields {
	return logship.Fields{"source": "gnet"}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...), gnetFields())
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.Info(fmt.Sprintf(format, args...), gnetFields())
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.Warn(fmt.Sprintf(format, args...), gnetFields())
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...), gnetFields())
}

// Fatalf logs at error level, ships pending records and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Error(msg, logship.Fields{"source": "gnet", "fatal": true})

	// Ensure log is flushed before exit
	ctx, cancel := context.WithTimeout(context.Background(), fatalFlushTimeout)
	_ = a.logger.Flush(ctx)
	cancel()

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
