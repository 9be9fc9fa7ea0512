// Package logging provides the leveled logger shared by every component of
// the server, built on zap (the pack's ecosystem logging library) rather
// than a hand-rolled wrapper around the standard library's log.Logger.
package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a small leveled façade over a zap.SugaredLogger whose output
// destination can be swapped at runtime (used by SIGHUP-driven rotation).
type Logger struct {
	mu  sync.Mutex
	dst io.Writer
	sl  *zap.SugaredLogger
}

// New builds a Logger writing to dst. Passing nil defaults to os.Stderr.
func New(dst io.Writer) *Logger {
	if dst == nil {
		dst = os.Stderr
	}
	l := &Logger{dst: dst}
	l.rebuild()
	return l
}

func (l *Logger) rebuild() {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(l.dst), zapcore.DebugLevel)
	l.sl = zap.New(core).Sugar()
}

// Reopen points the logger at a new destination and discards the old one.
// Used to implement SIGHUP-driven log rotation without restarting the
// process.
func (l *Logger) Reopen(dst io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.sl.Sync()
	l.dst = dst
	l.rebuild()
}

func (l *Logger) Info(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sl.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sl.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sl.Errorf(format, v...)
}

func (l *Logger) Debug(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sl.Debugf(format, v...)
}
