package logger

import (
	"context"
	"sync"

	"github.com/piresc/fleetwatch/internal/pkg/requestcontext"
	"go.uber.org/zap"
)

var (
	// globalLogger holds the singleton logger instance
	globalLogger *ZapLogger
	// once ensures the fallback logger is built only once
	once sync.Once
	// mu protects access to the global logger
	mu sync.RWMutex
)

// SetGlobalLogger sets the global logger instance.
// This should be called once during application startup.
func SetGlobalLogger(logger *ZapLogger) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance, or a production
// logger if none was set
func GetGlobalLogger() *ZapLogger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	once.Do(func() {
		defaultLogger, err := zap.NewProduction()
		if err != nil {
			defaultLogger = zap.NewNop()
		}
		mu.Lock()
		if globalLogger == nil {
			globalLogger = &ZapLogger{Logger: defaultLogger}
		}
		mu.Unlock()
	})

	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	GetGlobalLogger().Info(msg, fields...)
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	GetGlobalLogger().Warn(msg, fields...)
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	GetGlobalLogger().Debug(msg, fields...)
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	GetGlobalLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits using the global logger
func Fatal(msg string, fields ...Field) {
	GetGlobalLogger().Fatal(msg, fields...)
}

// Context-aware logging

func withContext(ctx context.Context) *zap.Logger {
	l := GetGlobalLogger().Logger
	if ctx == nil {
		return l
	}
	if requestID := requestcontext.GetRequestID(ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	if agentID := requestcontext.GetAgentID(ctx); agentID != "" {
		l = l.With(zap.String("agent_id", agentID))
	}
	return l
}

// InfoCtx logs an info message tagged with the request context
func InfoCtx(ctx context.Context, msg string, fields ...Field) {
	withContext(ctx).Info(msg, fields...)
}

// WarnCtx logs a warning message tagged with the request context
func WarnCtx(ctx context.Context, msg string, fields ...Field) {
	withContext(ctx).Warn(msg, fields...)
}

// ErrorCtx logs an error message tagged with the request context
func ErrorCtx(ctx context.Context, msg string, fields ...Field) {
	withContext(ctx).Error(msg, fields...)
}

// DebugCtx logs a debug message tagged with the request context
func DebugCtx(ctx context.Context, msg string, fields ...Field) {
	withContext(ctx).Debug(msg, fields...)
}
