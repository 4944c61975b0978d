package actor_test

import (
	"context"
	"fmt"
	"time"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// PingMessage 示例消息类型
type PingMessage struct {
	actor.Tracked
}

func (m *PingMessage) Kind() string { return "ping" }

// PongMessage 示例响应消息
type PongMessage struct {
	actor.Tracked
}

func (m *PongMessage) Kind() string { return "pong" }

// CountMessage 计数器消息
type CountMessage struct {
	Value int
}

func (m *CountMessage) Kind() string { return "count" }

// Example_basic 演示 Actor 系统的基本使用
func Example_basic() {
	sys := actor.NewSystem("example")
	defer sys.Shutdown(context.Background())

	// 使用 ActorFunc 快速创建 Actor
	ref, _ := sys.FromType(func() actor.Actor {
		return actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) error {
			switch msg.(type) {
			case *actor.Started:
				fmt.Println("Actor started")
			case *PingMessage:
				fmt.Println("Received Ping")
			case *actor.Stopping:
				fmt.Println("Actor stopping")
			}
			return nil
		})
	}, "greeter")

	ref.Tell(&PingMessage{}, nil)
	ref.Tell(&actor.PoisonPill{}, nil)
	sys.WaitFor(context.Background(), ref)

	// Output:
	// Actor started
	// Received Ping
	// Actor stopping
}

// Example_actorFunc 演示函数式 Actor
func Example_actorFunc() {
	sys := actor.NewSystem("func-example")
	defer sys.Shutdown(context.Background())

	counter := 0
	ref, _ := sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) error {
		if m, ok := msg.(*CountMessage); ok {
			counter += m.Value
			fmt.Printf("Counter: %d\n", counter)
		}
		return nil
	}), "counter")

	ref.Tell(&CountMessage{Value: 1}, nil)
	ref.Tell(&CountMessage{Value: 2}, nil)
	ref.Tell(&CountMessage{Value: 3}, nil)
	ref.Tell(&actor.PoisonPill{}, nil)
	sys.WaitFor(context.Background(), ref)

	// Output:
	// Counter: 1
	// Counter: 3
	// Counter: 6
}

// Example_ask 演示请求-回复
func Example_ask() {
	sys := actor.NewSystem("ask-example")
	defer sys.Shutdown(context.Background())

	ref, _ := sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) error {
		if m, ok := msg.(*PingMessage); ok {
			return ctx.Reply(&PongMessage{Tracked: actor.TrackFrom(m)})
		}
		return nil
	}), "ponger")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	pong, err := actor.Ask[*PongMessage](ctx, ref, &PingMessage{Tracked: actor.Track("req-1")})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(pong.Kind(), pong.TrackingID())

	// Output:
	// pong req-1
}

// Example_failure 演示失败消息：Receive 返回的错误会作为 ActorFailure 发回给发送者
func Example_failure() {
	sys := actor.NewSystem("failure-example")
	defer sys.Shutdown(context.Background())

	ref, _ := sys.Spawn(actor.ActorFunc(func(ctx *actor.Context, msg actor.Message) error {
		if _, ok := msg.(*PingMessage); ok {
			return fmt.Errorf("cannot ping right now")
		}
		return nil
	}), "grumpy")

	inbox := sys.NewInbox("caller")
	defer inbox.Close()

	ref.Tell(&PingMessage{Tracked: actor.Track("req-2")}, inbox.Ref())

	reply, _ := inbox.Receive(context.Background())
	if f, ok := reply.(*actor.ActorFailure); ok {
		fmt.Println(f.TrackingID(), f.Source().Kind(), f.Reason())
	}

	// Output:
	// req-2 ping cannot ping right now
}
