package actor

// Timer 计时器，操作完成时调用 ObserveDuration 记录耗时
type Timer interface {
	ObserveDuration()
}

// Metrics 运行时指标收集接口
// 所有 Actor 循环共用同一个实例，实现必须并发安全
type Metrics interface {
	// MessageDuration 开始为指定类型的消息计时
	MessageDuration(kind string) Timer
	// MessageProcessed 记录一次分发，Receive 失败时 success 为 false
	MessageProcessed(kind string, success bool)
	// MessagePanic 记录一次从 Receive 恢复的 panic
	MessagePanic(kind string)
	// MessageMarooned 记录一条 Actor 无法识别的消息
	MessageMarooned(kind string)
	// DeadLetter 记录一条无法投递或被丢弃的消息
	DeadLetter(kind string)
	// MailboxDepth Actor 每次出队后上报剩余的邮箱长度，Inbox 不上报
	MailboxDepth(actorID string, depth int)
	// ActorTerminated Actor 退出时调用，用于清理按 Actor 区分的指标
	ActorTerminated(actorID string)
	// ActorsRunning 上报存活的 Actor 数量
	ActorsRunning(count int)
}

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

type nopMetrics struct{}

func (nopMetrics) MessageDuration(string) Timer  { return nopTimer{} }
func (nopMetrics) MessageProcessed(string, bool) {}
func (nopMetrics) MessagePanic(string)           {}
func (nopMetrics) MessageMarooned(string)        {}
func (nopMetrics) DeadLetter(string)             {}
func (nopMetrics) MailboxDepth(string, int)      {}
func (nopMetrics) ActorTerminated(string)        {}
func (nopMetrics) ActorsRunning(int)             {}

// NopMetrics 返回丢弃所有指标的实现
func NopMetrics() Metrics { return nopMetrics{} }
