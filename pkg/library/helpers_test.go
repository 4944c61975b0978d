package library

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// ============== 测试辅助 ==============

type logLine struct {
	Level      string
	Actor      string
	Text       string
	TrackingID string
}

// captureLogger 收集 Actor 日志，代替真实的日志输出
type captureLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (c *captureLogger) factory(actorID string) actor.Logger {
	return &boundCapture{c: c, actor: actorID}
}

func (c *captureLogger) add(l logLine) {
	c.mu.Lock()
	c.lines = append(c.lines, l)
	c.mu.Unlock()
}

func (c *captureLogger) contains(level, substr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if l.Level == level && strings.Contains(l.Text, substr) {
			return true
		}
	}
	return false
}

type boundCapture struct {
	c     *captureLogger
	actor string
}

func (b *boundCapture) Debug(text, trackingID string, _ ...any) {
	b.c.add(logLine{"DEBUG", b.actor, text, trackingID})
}

func (b *boundCapture) Info(text, trackingID string, _ ...any) {
	b.c.add(logLine{"INFO", b.actor, text, trackingID})
}

func (b *boundCapture) Warn(text, trackingID string, _ ...any) {
	b.c.add(logLine{"WARN", b.actor, text, trackingID})
}

func (b *boundCapture) Error(text, trackingID string, _ ...any) {
	b.c.add(logLine{"ERROR", b.actor, text, trackingID})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSystem(t *testing.T, logs *captureLogger) *actor.System {
	t.Helper()

	cfg := actor.DefaultSystemConfig()
	cfg.Logger = discardLogger()
	if logs != nil {
		cfg.LoggerFactory = logs.factory
	}

	sys := actor.NewSystemWithConfig(t.Name(), cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, sys.Shutdown(ctx))
	})
	return sys
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func receiveAs[T actor.Message](t *testing.T, inbox *actor.Inbox) T {
	t.Helper()
	msg, err := inbox.Receive(testContext(t))
	require.NoError(t, err)
	typed, ok := msg.(T)
	require.Truef(t, ok, "unexpected message %T: %+v", msg, msg)
	return typed
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// memoryStore 内存中的 TagStore
type memoryStore struct {
	mu   sync.Mutex
	tags map[string]Metadata
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tags: make(map[string]Metadata)}
}

func (s *memoryStore) Read(path string) (Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		return Metadata{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[path], nil
}

func (s *memoryStore) Write(path string, md Metadata) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	s.mu.Lock()
	s.tags[path] = md
	s.mu.Unlock()
	return nil
}
