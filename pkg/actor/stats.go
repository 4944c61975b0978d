package actor

import (
	"sync"
	"sync/atomic"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Actor 统计信息
// ═══════════════════════════════════════════════════════════════════════════

// ActorStats Actor 运行时统计信息
type ActorStats struct {
	// 消息计数
	MessagesReceived int64 // 出队并分发的消息数
	MessagesHandled  int64 // 成功处理的消息数
	Failures         int64 // Receive 返回错误或 panic 的次数
	Marooned         int64 // 无法识别的消息数
	Dropped          int64 // PoisonPill 之后被丢弃的消息数

	// 延迟统计
	TotalLatency   time.Duration
	AverageLatency time.Duration
	MaxLatency     time.Duration

	// 时间戳
	StartedAt     time.Time
	LastMessageAt time.Time
	LastFailureAt time.Time

	// LastFailure 最后一个错误
	LastFailure error
}

// Clone 克隆统计信息
func (s *ActorStats) Clone() *ActorStats {
	c := *s
	return &c
}

// StatsCollector 线程安全的统计收集器
// 写入只发生在 Actor 自己的调度循环中，读取可以来自任意 goroutine
type StatsCollector struct {
	mu    sync.RWMutex
	stats ActorStats
}

// NewStatsCollector 创建统计收集器
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		stats: ActorStats{StartedAt: time.Now()},
	}
}

// RecordReceived 记录出队消息
func (c *StatsCollector) RecordReceived() {
	c.mu.Lock()
	c.stats.MessagesReceived++
	c.stats.LastMessageAt = time.Now()
	c.mu.Unlock()
}

// RecordHandled 记录成功处理
func (c *StatsCollector) RecordHandled(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.MessagesHandled++
	c.stats.TotalLatency += latency
	c.stats.AverageLatency = c.stats.TotalLatency / time.Duration(c.stats.MessagesHandled)
	if latency > c.stats.MaxLatency {
		c.stats.MaxLatency = latency
	}
}

// RecordFailure 记录处理失败
func (c *StatsCollector) RecordFailure(err error) {
	c.mu.Lock()
	c.stats.Failures++
	c.stats.LastFailure = err
	c.stats.LastFailureAt = time.Now()
	c.mu.Unlock()
}

// RecordMarooned 记录无法识别的消息
func (c *StatsCollector) RecordMarooned() {
	c.mu.Lock()
	c.stats.Marooned++
	c.mu.Unlock()
}

// RecordDropped 记录被丢弃的消息
func (c *StatsCollector) RecordDropped(n int) {
	c.mu.Lock()
	c.stats.Dropped += int64(n)
	c.mu.Unlock()
}

// Stats 获取统计快照
func (c *StatsCollector) Stats() *ActorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.Clone()
}

// ═══════════════════════════════════════════════════════════════════════════
// 系统统计
// ═══════════════════════════════════════════════════════════════════════════

// SystemStats 系统统计快照
type SystemStats struct {
	TotalActors   int64
	TotalMessages int64
	ProcessedMsgs int64
	Failures      int64
	Marooned      int64
	DeadLetters   int64
	StartTime     time.Time
}

type systemCounters struct {
	totalActors   atomic.Int64
	totalMessages atomic.Int64
	processedMsgs atomic.Int64
	failures      atomic.Int64
	marooned      atomic.Int64
	deadLetters   atomic.Int64
	startTime     time.Time
}

func (c *systemCounters) snapshot() *SystemStats {
	return &SystemStats{
		TotalActors:   c.totalActors.Load(),
		TotalMessages: c.totalMessages.Load(),
		ProcessedMsgs: c.processedMsgs.Load(),
		Failures:      c.failures.Load(),
		Marooned:      c.marooned.Load(),
		DeadLetters:   c.deadLetters.Load(),
		StartTime:     c.startTime,
	}
}
