package actor

import (
	"context"
	"log/slog"
)

// Logger Actor 日志门面
// 每条日志都带 tracking id，便于按消息链关联
type Logger interface {
	Debug(text, trackingID string, args ...any)
	Info(text, trackingID string, args ...any)
	Warn(text, trackingID string, args ...any)
	Error(text, trackingID string, args ...any)
}

// LoggerFactory 为指定 Actor 创建日志器
type LoggerFactory func(actorID string) Logger

// SlogLoggerFactory 返回基于 slog 的日志器工厂
func SlogLoggerFactory(base *slog.Logger) LoggerFactory {
	return func(actorID string) Logger {
		return NewSlogLogger(base, actorID)
	}
}

// NewSlogLogger 创建绑定 Actor ID 的 slog 日志器
func NewSlogLogger(base *slog.Logger, actorID string) Logger {
	if base == nil {
		base = slog.Default()
	}
	return &slogLogger{l: base.With("actor", actorID)}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(text, trackingID string, args ...any) {
	s.log(slog.LevelDebug, text, trackingID, args)
}

func (s *slogLogger) Info(text, trackingID string, args ...any) {
	s.log(slog.LevelInfo, text, trackingID, args)
}

func (s *slogLogger) Warn(text, trackingID string, args ...any) {
	s.log(slog.LevelWarn, text, trackingID, args)
}

func (s *slogLogger) Error(text, trackingID string, args ...any) {
	s.log(slog.LevelError, text, trackingID, args)
}

func (s *slogLogger) log(level slog.Level, text, trackingID string, args []any) {
	if trackingID != "" {
		args = append([]any{"tracking_id", trackingID}, args...)
	}
	s.l.Log(context.Background(), level, text, args...)
}
