package library

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// LoggingActor 把 GenerateSimpleLogMessages 输出到 Actor 日志器
// Sink 不为空时额外写一行文本；低于 MinLevel 的消息被忽略
type LoggingActor struct {
	Sink     io.Writer
	MinLevel slog.Level
}

// Receive 实现 actor.Actor 接口
func (a *LoggingActor) Receive(ctx *actor.Context, msg actor.Message) error {
	switch m := msg.(type) {
	case *actor.Started, *actor.Stopping:
		return nil
	case *GenerateSimpleLogMessages:
		return a.generate(ctx, m)
	case *TerminateYourself:
		ctx.Logger().Debug("terminating on request", m.TrackingID())
		return ctx.StopSelf()
	default:
		ctx.NotifyMarooned(msg)
		return nil
	}
}

func (a *LoggingActor) generate(ctx *actor.Context, m *GenerateSimpleLogMessages) error {
	level, err := ParseLevel(m.Level)
	if err != nil {
		return err
	}
	if level < a.MinLevel {
		return nil
	}

	log := ctx.Logger()
	switch {
	case level >= slog.LevelError:
		log.Error(m.Text, m.TrackingID())
	case level >= slog.LevelWarn:
		log.Warn(m.Text, m.TrackingID())
	case level >= slog.LevelInfo:
		log.Info(m.Text, m.TrackingID())
	default:
		log.Debug(m.Text, m.TrackingID())
	}

	if a.Sink != nil {
		_, err = fmt.Fprintf(a.Sink, "%s %-5s %s\n", time.Now().Format(time.RFC3339), level.String(), m.Text)
		if err != nil {
			return fmt.Errorf("write log sink: %w", err)
		}
	}
	return nil
}

// ParseLevel 解析日志级别名称，接受 WARNING 作为 WARN 的别名
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn, nil
	}
	if s == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
