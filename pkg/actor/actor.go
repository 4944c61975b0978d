package actor

// Actor Actor 接口
// 实现此接口即可成为 Actor
//
// Receive 在 Actor 自己的调度循环中串行调用，不会重入。
// 返回错误或 panic 时，运行时会构造 *ActorFailure 发送给消息的发送者，
// 调度循环继续处理下一条消息。
type Actor interface {
	Receive(ctx *Context, msg Message) error
}

// ActorFunc 函数式 Actor，便于快速创建简单 Actor
type ActorFunc func(ctx *Context, msg Message) error

// Receive 实现 Actor 接口
func (f ActorFunc) Receive(ctx *Context, msg Message) error {
	return f(ctx, msg)
}

// Producer 构造 Actor 实例
type Producer func() Actor

// MaroonedHandler 可选接口，自定义无法识别消息的处理方式
// 未实现时默认以 error 级别记录日志
type MaroonedHandler interface {
	NotifyMarooned(ctx *Context, msg Message)
}

// BaseActor 基础 Actor 实现，方便嵌入
// 默认把所有非生命周期消息视为无法识别
type BaseActor struct{}

// Receive 默认实现
func (b *BaseActor) Receive(ctx *Context, msg Message) error {
	ctx.NotifyMarooned(msg)
	return nil
}

// Context Actor 执行上下文
// 只在 Receive 调用期间有效
type Context struct {
	self    *Ref
	sender  *Ref
	system  *System
	cell    *cell
	message Message
}

// Myself 返回当前 Actor 的引用，可作为回复地址放进消息
func (c *Context) Myself() *Ref { return c.self }

// Sender 返回当前消息的发送者，没有发送者时为 nil
func (c *Context) Sender() *Ref { return c.sender }

// Logger 返回绑定到当前 Actor 的日志器
func (c *Context) Logger() Logger { return c.cell.logger }

// System 获取 Actor 系统引用
func (c *Context) System() *System { return c.system }

// Message 获取当前正在处理的消息
func (c *Context) Message() Message { return c.message }

// TrackingID 当前消息的 tracking id
func (c *Context) TrackingID() string { return TrackingOf(c.message) }

// Reply 回复当前消息的发送者，回复地址为当前 Actor
func (c *Context) Reply(msg Message) error {
	if c.sender == nil {
		return ErrNoSender
	}
	return c.sender.Tell(msg, c.self)
}

// Tell 以当前 Actor 作为回复地址发送消息
func (c *Context) Tell(target *Ref, msg Message) error {
	return target.Tell(msg, c.self)
}

// Forward 转发当前消息，保留原始发送者
func (c *Context) Forward(target *Ref) error {
	return target.Tell(c.message, c.sender)
}

// StopSelf 给自己发送 PoisonPill
// 排在它前面的消息仍会被处理
func (c *Context) StopSelf() error {
	return c.self.Tell(&PoisonPill{}, nil)
}

// NotifyMarooned 上报无法识别的消息
// 这是发送方与接收方的消息契约不一致，不是瞬时故障
func (c *Context) NotifyMarooned(msg Message) {
	if msg == nil || isLifecycle(msg) {
		return
	}

	c.cell.stats.RecordMarooned()
	c.system.stats.marooned.Add(1)
	c.system.metrics.MessageMarooned(msg.Kind())

	if h, ok := c.cell.actor.(MaroonedHandler); ok {
		h.NotifyMarooned(c, msg)
		return
	}

	c.cell.logger.Error("marooned message", TrackingOf(msg),
		"kind", msg.Kind(),
		"sender", c.sender.ID(),
	)
}
