package actor

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// PoisonPolicy PoisonPill 出队后如何处理排在其后的消息
type PoisonPolicy int

const (
	// PoisonDrop 丢弃排在 PoisonPill 之后的消息，计入死信
	PoisonDrop PoisonPolicy = iota
	// PoisonDrain 不再接受新消息，但处理完已入队的消息后再退出
	PoisonDrain
)

// String 返回策略名称
func (p PoisonPolicy) String() string {
	switch p {
	case PoisonDrop:
		return "drop"
	case PoisonDrain:
		return "drain"
	default:
		return "unknown"
	}
}

// ParsePoisonPolicy 解析策略名称，无法识别时返回 PoisonDrop 和 false
func ParsePoisonPolicy(s string) (PoisonPolicy, bool) {
	switch s {
	case "drop", "":
		return PoisonDrop, true
	case "drain":
		return PoisonDrain, true
	default:
		return PoisonDrop, false
	}
}

// SystemConfig 系统配置
type SystemConfig struct {
	// PoisonPolicy PoisonPill 之后的排队消息处理策略
	PoisonPolicy PoisonPolicy
	// EnableDeadLetterLogging 是否记录死信
	EnableDeadLetterLogging bool
	// PanicHandler panic 处理函数，为 nil 时记录 error 日志和堆栈
	PanicHandler func(actor *Ref, msg Message, recovered any)
	// Logger 系统日志器
	Logger *slog.Logger
	// LoggerFactory Actor 日志器工厂，默认基于 Logger
	LoggerFactory LoggerFactory
	// Metrics 指标收集，默认不收集
	Metrics Metrics
}

// DefaultSystemConfig 默认系统配置
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		PoisonPolicy:            PoisonDrop,
		EnableDeadLetterLogging: true,
	}
}

// System Actor 系统
// 创建 Actor、维护名称注册表，并提供等待 Actor 终止的同步原语
type System struct {
	name string

	// Actor 注册表
	actors cmap.ConcurrentMap[string, *cell]

	// lifecycle 串行化注册与关闭：持读锁注册，持写锁切换 running
	lifecycle sync.RWMutex
	running   atomic.Bool
	wg        sync.WaitGroup

	config  *SystemConfig
	stats   *systemCounters
	metrics Metrics
	logger  *slog.Logger
}

// NewSystem 创建新的 Actor 系统
func NewSystem(name string) *System {
	return NewSystemWithConfig(name, DefaultSystemConfig())
}

// NewSystemWithConfig 使用配置创建 Actor 系统
func NewSystemWithConfig(name string, config *SystemConfig) *System {
	if config == nil {
		config = DefaultSystemConfig()
	}
	cfg := *config

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LoggerFactory == nil {
		cfg.LoggerFactory = SlogLoggerFactory(cfg.Logger.With("system", name))
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics()
	}

	s := &System{
		name:    name,
		actors:  cmap.New[*cell](),
		config:  &cfg,
		stats:   &systemCounters{startTime: time.Now()},
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With("system", name),
	}
	s.running.Store(true)

	s.logger.Info("actor system started", "poison_policy", cfg.PoisonPolicy.String())
	return s
}

// Name 返回系统名称
func (s *System) Name() string {
	return s.name
}

// FromType 构造 Actor 并以 name 注册，启动它的调度循环
// name 为空时生成唯一 ID；名称已注册时返回 *DuplicateNameError
func (s *System) FromType(producer Producer, name string) (*Ref, error) {
	if !s.running.Load() {
		return nil, ErrSystemStopped
	}
	if producer == nil {
		return nil, errors.New("actor: nil producer")
	}
	if name == "" {
		name = "$" + gonanoid.Must(10)
	}

	a := producer()
	if a == nil {
		return nil, errors.New("actor: producer returned nil")
	}

	c := newCell(s, name, a)
	// Started 在注册前入队，保证是第一条消息
	c.mailbox.push(envelope{message: &Started{}, sentAt: time.Now()})

	s.lifecycle.RLock()
	if !s.running.Load() {
		s.lifecycle.RUnlock()
		return nil, ErrSystemStopped
	}
	if !s.actors.SetIfAbsent(name, c) {
		s.lifecycle.RUnlock()
		return nil, &DuplicateNameError{Name: name}
	}
	s.wg.Add(1)
	s.lifecycle.RUnlock()

	live := s.stats.totalActors.Add(1)
	s.metrics.ActorsRunning(int(live))

	go s.actorLoop(c)

	s.logger.Debug("spawned actor", "actor", name)
	return c.ref(), nil
}

// Spawn 以已构造的实例创建 Actor
func (s *System) Spawn(a Actor, name string) (*Ref, error) {
	return s.FromType(func() Actor { return a }, name)
}

// Lookup 按名称查找 Actor
func (s *System) Lookup(name string) (*Ref, bool) {
	c, ok := s.actors.Get(name)
	if !ok {
		return nil, false
	}
	return c.ref(), true
}

// Actors 列出所有已注册的 Actor
func (s *System) Actors() []*Ref {
	refs := make([]*Ref, 0, s.actors.Count())
	for _, c := range s.actors.Items() {
		refs = append(refs, c.ref())
	}
	return refs
}

// Count 返回已注册 Actor 数量
func (s *System) Count() int {
	return s.actors.Count()
}

// IsRunning 检查系统是否运行中
func (s *System) IsRunning() bool {
	return s.running.Load()
}

// Stats 获取统计信息
func (s *System) Stats() *SystemStats {
	return s.stats.snapshot()
}

// WaitFor 阻塞直到 Actor 处理完 PoisonPill 并退出
// Actor 已终止时立即返回；观察到终止后从注册表注销，名称可被复用。
// 引用不属于本系统时返回 *UnknownActorError。需要超时的调用方通过 ctx 控制。
func (s *System) WaitFor(ctx context.Context, ref *Ref) error {
	if ref == nil || ref.cell == nil || ref.system != s {
		return &UnknownActorError{ID: ref.ID()}
	}

	c, ok := s.actors.Get(ref.id)
	if !ok || c != ref.cell {
		// 已被其他 WaitFor 注销
		if ref.cell.actor != nil && ref.cell.getStatus() == StatusTerminated {
			return nil
		}
		return &UnknownActorError{ID: ref.id}
	}

	select {
	case <-c.done:
		s.reap(c)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForName 按名称等待 Actor 终止
func (s *System) WaitForName(ctx context.Context, name string) error {
	ref, ok := s.Lookup(name)
	if !ok {
		return &UnknownActorError{ID: name}
	}
	return s.WaitFor(ctx, ref)
}

// Shutdown 协作式关闭系统
// 给每个 Actor 发送 PoisonPill 并等待全部退出，ctx 到期时返回 ctx 错误
func (s *System) Shutdown(ctx context.Context) error {
	s.lifecycle.Lock()
	stopped := !s.running.CompareAndSwap(true, false)
	s.lifecycle.Unlock()
	if stopped {
		return nil
	}
	s.logger.Info("actor system shutting down")

	refs := s.Actors()
	for _, ref := range refs {
		// 已终止的 Actor 返回 DeadActorError，忽略
		_ = ref.Tell(&PoisonPill{}, nil)
	}

	for _, ref := range refs {
		if err := s.WaitFor(ctx, ref); err != nil && !errors.Is(err, ErrUnknownActor) {
			s.logger.Warn("actor system shutdown interrupted", "error", err)
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("actor system shutdown complete")
		return nil
	case <-ctx.Done():
		s.logger.Warn("actor system shutdown timeout")
		return ctx.Err()
	}
}

// reap 从注册表注销已终止的 Actor
func (s *System) reap(c *cell) {
	removed := s.actors.RemoveCb(c.id, func(_ string, v *cell, exists bool) bool {
		return exists && v == c
	})
	if removed {
		s.logger.Debug("actor deregistered", "actor", c.id)
	}
}

// actorLoop Actor 调度循环
// 唯一的挂起点是邮箱为空时的等待
func (s *System) actorLoop(c *cell) {
	defer s.wg.Done()
	defer close(c.done)

	c.setStatus(StatusRunning)

	drain := s.config.PoisonPolicy == PoisonDrain
	for {
		env, rest, ok := c.mailbox.popTerminal(drain)
		if !ok {
			// PoisonDrain：邮箱已封闭并处理完
			break
		}
		s.metrics.MailboxDepth(c.id, c.mailbox.len())

		if VariantOf(env.message) == VariantPoisonPill {
			if c.getStatus() == StatusTerminating {
				continue
			}
			c.setStatus(StatusTerminating)
			c.logger.Debug("poison pill received", "", "policy", s.config.PoisonPolicy.String())

			if drain {
				continue
			}
			s.drop(c, rest)
			break
		}

		s.process(c, env)
	}

	s.process(c, envelope{message: &Stopping{}, sentAt: time.Now()})
	c.setStatus(StatusTerminated)

	live := s.stats.totalActors.Add(-1)
	s.metrics.ActorsRunning(int(live))
	s.metrics.ActorTerminated(c.id)
	s.logger.Debug("actor terminated", "actor", c.id)
}

// process 处理单条消息
func (s *System) process(c *cell, env envelope) {
	ctx := &Context{
		self:    c.ref(),
		sender:  env.sender,
		system:  s,
		cell:    c,
		message: env.message,
	}

	kind := env.message.Kind()
	c.stats.RecordReceived()
	timer := s.metrics.MessageDuration(kind)
	start := time.Now()

	err := s.invoke(c, ctx, env.message)

	timer.ObserveDuration()
	s.metrics.MessageProcessed(kind, err == nil)

	if err != nil {
		c.stats.RecordFailure(err)
		s.stats.failures.Add(1)
		s.reportFailure(c, env, err)
		return
	}

	c.stats.RecordHandled(time.Since(start))
	s.stats.processedMsgs.Add(1)
}

// invoke 调用 Receive，panic 转换为 *PanicError
func (s *System) invoke(c *cell, ctx *Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.MessagePanic(msg.Kind())
			if s.config.PanicHandler != nil {
				s.config.PanicHandler(ctx.self, msg, r)
			} else {
				c.logger.Error("panic in actor", TrackingOf(msg),
					"kind", msg.Kind(),
					"error", r,
					"stack", string(debug.Stack()),
				)
			}
			err = &PanicError{Value: r}
		}
	}()

	return c.actor.Receive(ctx, msg)
}

// reportFailure 把处理失败转换成 *ActorFailure 发送给原始发送者
// 没有发送者，或失败的消息本身是 Failure 时，记录 error 日志后丢弃
func (s *System) reportFailure(c *cell, env envelope, err error) {
	reason := err.Error()
	if reason == "" {
		reason = "unspecified failure"
	}

	tracking := TrackingOf(env.message)

	// 处理失败消息本身失败时不再回报，避免两个 Actor 之间来回传递失败
	if VariantOf(env.message) == VariantFailure {
		c.logger.Error("failure message processing failed", tracking,
			"kind", env.message.Kind(),
			"error", reason,
			"sender", env.sender.ID(),
		)
		return
	}

	if env.sender == nil {
		c.logger.Error("message processing failed", tracking,
			"kind", env.message.Kind(),
			"error", reason,
		)
		return
	}

	failure := &ActorFailure{
		FailureMessage: NewFailure(env.message, reason),
		Actor:          c.id,
	}

	if tellErr := env.sender.Tell(failure, c.ref()); tellErr != nil {
		c.logger.Error("failure report undeliverable", tracking,
			"kind", env.message.Kind(),
			"error", reason,
			"sender", env.sender.ID(),
			"tell_error", tellErr,
		)
	}
}

// drop 丢弃 PoisonPill 之后的消息
func (s *System) drop(c *cell, rest []envelope) {
	if len(rest) == 0 {
		return
	}
	c.stats.RecordDropped(len(rest))
	for _, env := range rest {
		s.deadLetter(c, env)
	}
}

// deadLetter 记录无法投递的消息
func (s *System) deadLetter(c *cell, env envelope) {
	s.stats.deadLetters.Add(1)
	s.metrics.DeadLetter(env.message.Kind())

	if s.config.EnableDeadLetterLogging {
		s.logger.Debug("dead letter",
			"actor", c.id,
			"kind", env.message.Kind(),
			"tracking_id", TrackingOf(env.message),
			"sender", env.sender.ID(),
		)
	}
}
