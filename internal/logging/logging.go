// Package logging builds the structured logger. A TUI owns the terminal, so
// log entries go to a file in the config directory rather than stderr.
package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file created in the config directory.
const FileName = "tedrecords.log"

const (
	TimeStampKey = "timestamp"
	MessageKey   = "message"
	GoVersionKey = "go_version"
)

type contextKey struct{}

// Logger is a logr.Logger backed by zap.
type Logger struct {
	logr.Logger

	zap  *zap.Logger
	file *os.File
}

// New returns a logger writing JSON lines to w. Verbosity v enables
// V(0) through V(v) entries.
func New(w zapcore.WriteSyncer, verbosity int) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	var fields []zapcore.Field
	if info, ok := debug.ReadBuildInfo(); ok {
		fields = append(fields, zap.String(GoVersionKey, info.GoVersion))
	}

	// zapr maps V(n) to zap level -n.
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(w),
		zap.NewAtomicLevelAt(zapcore.Level(-verbosity)),
	).With(fields)

	zl := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	return &Logger{Logger: zapr.NewLogger(zl), zap: zl}
}

// Open appends to dir/FileName, creating dir when needed.
func Open(dir string, verbosity int) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := New(f, verbosity)
	l.file = f
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: logr.Discard()}
}

// Close flushes buffered entries and closes the log file, if any.
func (l *Logger) Close() error {
	var errs []error
	if l.zap != nil {
		if err := l.zap.Sync(); err != nil && !isIgnorableSyncError(err) {
			errs = append(errs, err)
		}
	}
	if l.file != nil {
		errs = append(errs, l.file.Close())
		l.file = nil
	}
	return errors.Join(errs...)
}

func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EBADF)
}

// WithLogger attaches log to ctx.
func WithLogger(ctx context.Context, log logr.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger attached to ctx or a discarding logger.
func FromContext(ctx context.Context) logr.Logger {
	if log, ok := ctx.Value(contextKey{}).(logr.Logger); ok {
		return log
	}
	return logr.Discard()
}
