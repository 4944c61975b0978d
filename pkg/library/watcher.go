package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// DefaultExtensions 默认监听的音频扩展名
var DefaultExtensions = []string{".mp3"}

// WatcherOptions 目录监听配置
type WatcherOptions struct {
	// Dir 监听的目录
	Dir string
	// Extensions 需要整理的扩展名，大小写不敏感
	Extensions []string
	// Debounce 同一文件连续事件的合并间隔
	Debounce time.Duration
	// Logger 日志器，默认 slog.Default()
	Logger *slog.Logger
	// OnOutcome 收到整理结果时回调，在 Watcher 的结果 goroutine 中调用
	OnOutcome func(actor.Message)
}

// Watcher 监听目录中新写入的音频文件，并交给 OrganizerActor 整理
// 结果回到 Watcher 自己的 Inbox 并记录日志
type Watcher struct {
	opts       WatcherOptions
	extensions map[string]bool
	organizer  *actor.Ref
	inbox      *actor.Inbox
	logger     *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewWatcher 创建目录监听器
func NewWatcher(sys *actor.System, organizer *actor.Ref, opts WatcherOptions) (*Watcher, error) {
	if opts.Dir == "" {
		return nil, errors.New("watcher: empty directory")
	}
	if organizer == nil {
		return nil, errors.New("watcher: nil organizer")
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	return &Watcher{
		opts:       opts,
		extensions: exts,
		organizer:  organizer,
		inbox:      sys.NewInbox("watcher-" + filepath.Base(opts.Dir)),
		logger:     opts.Logger.With("component", "watcher", "dir", opts.Dir),
		timers:     make(map[string]*time.Timer),
	}, nil
}

// Run 开始监听，阻塞直到 ctx 取消
// 返回前停止所有待触发的定时器并关闭 Inbox
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	if err := fsw.Add(w.opts.Dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.opts.Dir, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.collect(ctx)
	}()

	w.logger.Info("watching directory", "extensions", w.opts.Extensions, "debounce", w.opts.Debounce)
	w.watchLoop(ctx, fsw)

	w.stopTimers()
	err = fsw.Close()
	wg.Wait()
	w.inbox.Close()
	return err
}

// Accepts 判断文件扩展名是否需要整理
func (w *Watcher) Accepts(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.Accepts(event.Name) {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// schedule 重置文件的合并定时器
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		closed := w.closed
		w.mu.Unlock()

		if !closed {
			w.submit(path)
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// submit 以新的 tracking id 提交整理请求
func (w *Watcher) submit(path string) {
	msg := &OrganizeFile{Tracked: actor.Track(actor.NewTrackingID()), Path: path}
	if err := w.organizer.Tell(msg, w.inbox.Ref()); err != nil {
		w.logger.Error("submit failed", "path", path, "tracking_id", msg.TrackingID(), "error", err)
		return
	}
	w.logger.Debug("file submitted", "path", path, "tracking_id", msg.TrackingID())
}

// collect 读取整理结果直到 ctx 取消
func (w *Watcher) collect(ctx context.Context) {
	for {
		msg, err := w.inbox.Receive(ctx)
		if err != nil {
			return
		}

		switch m := msg.(type) {
		case *FileOrganized:
			w.logger.Info("file organized", "tracking_id", m.TrackingID(), "from", m.OldPath, "to", m.NewPath)
		case actor.Failure:
			w.logger.Error("organize failed", "tracking_id", m.TrackingID(), "reason", m.Reason())
		default:
			w.logger.Warn("unexpected reply", "kind", msg.Kind())
		}

		if w.opts.OnOutcome != nil {
			w.opts.OnOutcome(msg)
		}
	}
}
