package actor

import (
	"sync/atomic"
	"time"
)

// Status Actor 运行状态
type Status int32

const (
	// StatusCreated 已创建，调度循环尚未开始
	StatusCreated Status = iota
	// StatusRunning 运行中（空闲或处理中）
	StatusRunning
	// StatusTerminating 已取出 PoisonPill，正在退出
	StatusTerminating
	// StatusTerminated 调度循环已退出
	StatusTerminated
)

// String 返回状态名称
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusTerminating:
		return "terminating"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// cell Actor 单元，包含邮箱及运行时状态
// Inbox 复用同一结构，actor 为 nil
type cell struct {
	id      string
	system  *System
	actor   Actor
	mailbox *mailbox
	logger  Logger
	stats   *StatsCollector

	status atomic.Int32
	done   chan struct{}
}

func newCell(s *System, id string, a Actor) *cell {
	return &cell{
		id:      id,
		system:  s,
		actor:   a,
		mailbox: newMailbox(),
		logger:  s.config.LoggerFactory(id),
		stats:   NewStatsCollector(),
		done:    make(chan struct{}),
	}
}

func (c *cell) ref() *Ref {
	return &Ref{id: c.id, system: c.system, cell: c}
}

func (c *cell) setStatus(st Status) { c.status.Store(int32(st)) }

func (c *cell) getStatus() Status { return Status(c.status.Load()) }

// Ref Actor 引用
// 轻量、可复制，只持有邮箱引用，是外部与 Actor 交互的唯一方式
type Ref struct {
	id     string
	system *System
	cell   *cell
}

// ID 返回 Actor ID
func (r *Ref) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// String 返回引用的字符串表示
func (r *Ref) String() string {
	if r == nil {
		return "<nil>"
	}
	if r.system != nil {
		return r.system.name + "/" + r.id
	}
	return r.id
}

// Tell 发送消息（fire-and-forget）
// replyTo 会作为信封中的发送者，为 nil 表示没有发送者
// 入队从不阻塞；目标已终止时返回 *DeadActorError
func (r *Ref) Tell(msg Message, replyTo *Ref) error {
	if r == nil || r.cell == nil {
		return &UnknownActorError{ID: r.ID()}
	}
	if msg == nil {
		return ErrNilMessage
	}

	env := envelope{
		sender:  replyTo,
		message: msg,
		sentAt:  time.Now(),
	}

	if !r.cell.mailbox.push(env) {
		r.system.deadLetter(r.cell, env)
		return &DeadActorError{ID: r.id, Kind: msg.Kind()}
	}

	r.system.stats.totalMessages.Add(1)
	return nil
}

// Status 返回 Actor 当前状态
func (r *Ref) Status() Status {
	if r == nil || r.cell == nil {
		return StatusTerminated
	}
	return r.cell.getStatus()
}

// Done 在 Actor 调度循环退出后关闭
func (r *Ref) Done() <-chan struct{} {
	return r.cell.done
}

// Stats 返回 Actor 统计快照
func (r *Ref) Stats() *ActorStats {
	return r.cell.stats.Stats()
}

// Equal 判断两个引用是否指向同一个 Actor
func (r *Ref) Equal(other *Ref) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.cell == other.cell
}
