package util

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"cosmossdk.io/log"
)

// SlogWrapper adapts a slog.Logger to cosmossdk.io/log's Logger so trees log
// through the command's handler. Records keep the caller's source location.
type SlogWrapper struct {
	logger *slog.Logger
}

func NewSlogWrapper(logger *slog.Logger) *SlogWrapper {
	return &SlogWrapper{logger: logger}
}

var _ log.Logger = &SlogWrapper{}

func (w *SlogWrapper) Debug(msg string, keyVals ...any) {
	w.log(slog.LevelDebug, msg, keyVals...)
}

func (w *SlogWrapper) Info(msg string, keyVals ...any) {
	w.log(slog.LevelInfo, msg, keyVals...)
}

func (w *SlogWrapper) Warn(msg string, keyVals ...any) {
	w.log(slog.LevelWarn, msg, keyVals...)
}

func (w *SlogWrapper) Error(msg string, keyVals ...any) {
	w.log(slog.LevelError, msg, keyVals...)
}

func (w *SlogWrapper) With(keyVals ...any) log.Logger {
	return &SlogWrapper{
		logger: w.logger.With(keyVals...),
	}
}

func (w *SlogWrapper) Impl() any {
	return w.logger
}

func (w *SlogWrapper) log(level slog.Level, msg string, keyVals ...any) {
	ctx := context.Background()
	if !w.logger.Enabled(ctx, level) {
		return
	}
	// skip runtime.Callers, this function and the level method
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(keyVals...)
	_ = w.logger.Handler().Handle(ctx, record)
}
