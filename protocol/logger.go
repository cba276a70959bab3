package protocol

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the protocol package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the protocol package's logger.
// It is not synchronized with Logger: call it during startup, before any
// connection is served.
func SetLogger(l *zap.Logger) {
	logger = l
}
