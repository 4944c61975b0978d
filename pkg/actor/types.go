package actor

import (
	"fmt"

	"github.com/google/uuid"
)

// Message Actor 消息接口
// 所有 Actor 间传递的消息都必须实现此接口
type Message interface {
	// Kind 返回消息类型标识，用于日志、统计和监控
	Kind() string
}

// Traceable 可追踪消息
// 携带 tracking id，用于关联跨越多个 Actor 的消息链
type Traceable interface {
	Message
	TrackingID() string
}

// Failure 失败消息
// 包装处理失败的原始消息和失败原因，tracking id 沿用原始消息
type Failure interface {
	Traceable
	Source() Message
	Reason() string
}

// Tracked 可嵌入的追踪上下文
//
//	type RenameFile struct {
//	    actor.Tracked
//	    Path string
//	}
type Tracked struct {
	Tracking string
}

// TrackingID 实现 Traceable 接口
func (t Tracked) TrackingID() string { return t.Tracking }

// Track 使用给定的 tracking id 创建追踪上下文
func Track(trackingID string) Tracked {
	return Tracked{Tracking: trackingID}
}

// TrackFrom 从已有消息继承追踪上下文
// 非 Traceable 消息返回空上下文
func TrackFrom(msg Message) Tracked {
	return Tracked{Tracking: TrackingOf(msg)}
}

// NewTrackingID 生成新的 tracking id，在工作流起点调用一次
func NewTrackingID() string {
	return uuid.NewString()
}

// TrackingOf 返回消息的 tracking id，不可追踪的消息返回空字符串
func TrackingOf(msg Message) string {
	if t, ok := msg.(Traceable); ok {
		return t.TrackingID()
	}
	return ""
}

// FailureMessage 可嵌入的失败消息基础结构
type FailureMessage struct {
	Tracked
	// Original 处理失败的原始消息
	Original Message
	// Cause 可读的失败原因
	Cause string
}

// NewFailure 基于原始消息构造失败消息，tracking id 原样继承
func NewFailure(source Message, reason string) FailureMessage {
	return FailureMessage{
		Tracked:  TrackFrom(source),
		Original: source,
		Cause:    reason,
	}
}

// Source 实现 Failure 接口
func (f FailureMessage) Source() Message { return f.Original }

// Reason 实现 Failure 接口
func (f FailureMessage) Reason() string { return f.Cause }

// ActorFailure 运行时生成的通用失败消息
// Receive 返回错误或 panic 时发送给原始发送者
type ActorFailure struct {
	FailureMessage
	// Actor 处理失败的 Actor ID
	Actor string
}

// Kind 实现 Message 接口
func (f *ActorFailure) Kind() string { return "system.failure" }

// String 返回失败描述
func (f *ActorFailure) String() string {
	kind := "<nil>"
	if f.Original != nil {
		kind = f.Original.Kind()
	}
	return fmt.Sprintf("%s failed on %s: %s", f.Actor, kind, f.Cause)
}

// ============== 系统消息 ==============

// Started Actor 启动完成消息，总是 Actor 收到的第一条消息
type Started struct{}

// Kind 实现 Message 接口
func (s *Started) Kind() string { return "system.started" }

// Stopping Actor 正在停止消息，在调度循环退出前投递
type Stopping struct{}

// Kind 实现 Message 接口
func (s *Stopping) Kind() string { return "system.stopping" }

// PoisonPill 毒丸消息，优雅停止 Actor
// 出队后 Actor 不再接受新消息
type PoisonPill struct{}

// Kind 实现 Message 接口
func (p *PoisonPill) Kind() string { return "system.poison_pill" }

// isLifecycle 是否为运行时生命周期消息
func isLifecycle(msg Message) bool {
	switch msg.(type) {
	case *Started, *Stopping, *PoisonPill:
		return true
	}
	return false
}

// ============== 消息变体 ==============

// Variant 消息变体标签
type Variant int

const (
	// VariantPlain 普通消息
	VariantPlain Variant = iota
	// VariantTraceable 可追踪消息
	VariantTraceable
	// VariantFailure 失败消息
	VariantFailure
	// VariantPoisonPill 终止信号
	VariantPoisonPill
)

// String 返回变体名称
func (v Variant) String() string {
	switch v {
	case VariantPlain:
		return "plain"
	case VariantTraceable:
		return "traceable"
	case VariantFailure:
		return "failure"
	case VariantPoisonPill:
		return "poison_pill"
	default:
		return "unknown"
	}
}

// VariantOf 返回消息的变体标签
// 调度循环根据标签决定是否退出
func VariantOf(msg Message) Variant {
	switch msg.(type) {
	case *PoisonPill:
		return VariantPoisonPill
	case Failure:
		return VariantFailure
	case Traceable:
		return VariantTraceable
	default:
		return VariantPlain
	}
}
