package actor

import (
	"context"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Inbox 由外部代码持有的邮箱
// 不运行调度循环，用于让 Actor 之外的调用方（测试、CLI）充当回复地址
//
//	inbox := sys.NewInbox("")
//	defer inbox.Close()
//	ref.Tell(&Ping{}, inbox.Ref())
//	reply, err := inbox.Receive(ctx)
type Inbox struct {
	cell *cell
}

// NewInbox 创建外部邮箱，name 为空时自动生成
// Inbox 不进入注册表
func (s *System) NewInbox(name string) *Inbox {
	if name == "" {
		name = "$inbox-" + gonanoid.Must(10)
	}
	c := newCell(s, name, nil)
	c.setStatus(StatusRunning)
	return &Inbox{cell: c}
}

// Ref 返回 Inbox 的引用
func (i *Inbox) Ref() *Ref {
	return i.cell.ref()
}

// Receive 阻塞直到收到消息或 ctx 取消
func (i *Inbox) Receive(ctx context.Context) (Message, error) {
	msg, _, err := i.ReceiveFrom(ctx)
	return msg, err
}

// ReceiveFrom 阻塞直到收到消息，同时返回发送者
func (i *Inbox) ReceiveFrom(ctx context.Context) (Message, *Ref, error) {
	env, ok := i.cell.mailbox.pop(ctx.Done())
	if !ok {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, &DeadActorError{ID: i.cell.id, Kind: "receive"}
	}
	return env.message, env.sender, nil
}

// Len 排队消息数
func (i *Inbox) Len() int {
	return i.cell.mailbox.len()
}

// Close 关闭 Inbox，之后发往它的消息返回 *DeadActorError
// 未读取的消息计入死信
func (i *Inbox) Close() {
	if i.cell.mailbox.isClosed() {
		return
	}
	i.cell.system.drop(i.cell, i.cell.mailbox.close())
	i.cell.setStatus(StatusTerminated)
}
