// Package actor 提供轻量级 Actor 运行时
//
// Actor 模式是一种并发计算模型，每个 Actor 是独立的计算单元：
// • 拥有私有状态（无需锁保护）
// • 通过无界邮箱（mailbox）接收消息
// • 消息处理串行化（一次处理一条，不会重入）
// • 可以向其他 Actor 发送消息，或通过 PoisonPill 终止自己
//
// # 核心组件
//
// [System] 是 Actor 系统的入口，负责创建 Actor 并维护名称注册表：
//
//	sys := actor.NewSystem("library")
//	defer sys.Shutdown(context.Background())
//
//	ref, err := sys.FromType(func() actor.Actor { return &MyActor{} }, "my-actor")
//
// [Actor] 接口定义消息处理行为，[ActorFunc] 提供函数式快捷方式。
//
// [Ref] 是 Actor 的引用，[Ref.Tell] 异步发送消息并携带回复地址：
//
//	ref.Tell(&Hello{}, inbox.Ref())
//
// [Context] 提供 Receive 期间的运行时上下文：[Context.Myself]、[Context.Sender]、
// [Context.Logger]、[Context.Reply]。
//
// # 消息变体
//
// [Traceable] 消息携带 tracking id，在工作流起点用 [NewTrackingID] 生成一次，
// 之后每一跳都通过 [TrackFrom] 原样传递。[Failure] 消息包装失败的原始消息和原因。
// [VariantOf] 返回消息的变体标签。
//
// # 失败处理
//
// Receive 返回错误或 panic 时，调度循环不会退出。运行时构造 [ActorFailure]
// 发送给原始发送者；没有发送者时以 error 级别记录日志后丢弃。
// 可预期的失败（例如文件重命名失败）应由 Actor 自己回复明确的失败消息，
// 运行时的通用路径只是兜底。
//
// 无法识别的消息交给 [Context.NotifyMarooned]，默认记录 error 日志。
//
// # 终止
//
// [PoisonPill] 出队后 Actor 不再接受消息，[Ref.Tell] 返回 [DeadActorError]。
// 排在它后面的消息默认被丢弃（[PoisonDrop]），也可以配置为 [PoisonDrain]。
// [System.WaitFor] 阻塞到 Actor 退出为止。没有强制杀死路径。
package actor
