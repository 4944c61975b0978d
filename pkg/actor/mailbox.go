package actor

import (
	"sync"
	"time"
)

// envelope 消息信封
type envelope struct {
	sender  *Ref
	message Message
	sentAt  time.Time
}

// mailbox 无界 FIFO 邮箱
// 多生产者单消费者：任意 Ref 持有者可并发入队，只有所属 Actor 出队
type mailbox struct {
	mu     sync.Mutex
	queue  []envelope
	closed bool

	// signal 容量为 1，入队或关闭时唤醒消费者
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// push 入队，从不阻塞
// 邮箱已关闭时返回 false
func (m *mailbox) push(env envelope) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, env)
	m.mu.Unlock()

	m.wake()
	return true
}

// pop 出队，邮箱为空时挂起
// 邮箱关闭且为空，或 done 被关闭时返回 false
func (m *mailbox) pop(done <-chan struct{}) (envelope, bool) {
	env, _, ok := m.next(done, nil)
	return env, ok
}

// popTerminal 出队；取到 PoisonPill 时在同一临界区内关闭邮箱
// drain 为 true 时只封闭，已入队的消息保留；否则一并取走剩余消息
func (m *mailbox) popTerminal(drain bool) (envelope, []envelope, bool) {
	return m.next(nil, func(env envelope) []envelope {
		if _, ok := env.message.(*PoisonPill); !ok {
			return nil
		}
		m.closed = true
		if drain {
			return nil
		}
		rest := m.queue
		m.queue = nil
		return rest
	})
}

// next 出队的公共实现，onPop 在持锁状态下调用
func (m *mailbox) next(done <-chan struct{}, onPop func(envelope) []envelope) (envelope, []envelope, bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			env := m.queue[0]
			m.queue[0] = envelope{}
			m.queue = m.queue[1:]
			if len(m.queue) == 0 {
				m.queue = nil
			}
			var rest []envelope
			if onPop != nil {
				rest = onPop(env)
			}
			m.mu.Unlock()
			return env, rest, true
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return envelope{}, nil, false
		}

		select {
		case <-m.signal:
		case <-done:
			return envelope{}, nil, false
		}
	}
}

// seal 拒绝新消息，已入队的消息仍可出队
func (m *mailbox) seal() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wake()
}

// close 拒绝新消息并取走所有未处理的消息
func (m *mailbox) close() []envelope {
	m.mu.Lock()
	m.closed = true
	rest := m.queue
	m.queue = nil
	m.mu.Unlock()
	m.wake()
	return rest
}

// len 当前排队的消息数
func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *mailbox) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mailbox) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}
