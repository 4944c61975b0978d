package actor

import (
	"context"
	"errors"
	"fmt"
)

// ═══════════════════════════════════════════════════════════════════════════
// 通用请求-回复辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// Ask 向 Actor 发送消息并等待第一条回复
// 使用临时 Inbox 作为回复地址，超时由 ctx 控制。
// 回复是 Failure 且 T 不是 Failure 类型时返回 *FailedError。
//
// 用法示例:
//
//	renamed, err := actor.Ask[*library.FileSuccessfullyRenamed](ctx, files, msg)
func Ask[T Message](ctx context.Context, ref *Ref, msg Message) (T, error) {
	var zero T

	if ref == nil || ref.system == nil {
		return zero, &UnknownActorError{ID: ref.ID()}
	}

	inbox := ref.system.NewInbox("")
	defer inbox.Close()

	if err := ref.Tell(msg, inbox.Ref()); err != nil {
		return zero, err
	}

	reply, err := inbox.Receive(ctx)
	if err != nil {
		return zero, err
	}

	if result, ok := reply.(T); ok {
		return result, nil
	}
	if f, ok := reply.(Failure); ok {
		return zero, &FailedError{Failure: f}
	}
	return zero, fmt.Errorf("unexpected reply %s to %s", reply.Kind(), msg.Kind())
}

// ═══════════════════════════════════════════════════════════════════════════
// 错误处理工具
// ═══════════════════════════════════════════════════════════════════════════

// IsContextError 检查错误是否为 context 相关错误
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
