package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type numMsg struct {
	N int
}

func (m *numMsg) Kind() string { return "test.num" }

func TestMailboxFIFO(t *testing.T) {
	mb := newMailbox()
	for i := 0; i < 100; i++ {
		require.True(t, mb.push(envelope{message: &numMsg{N: i}}))
	}
	assert.Equal(t, 100, mb.len())

	for i := 0; i < 100; i++ {
		env, ok := mb.pop(nil)
		require.True(t, ok)
		assert.Equal(t, i, env.message.(*numMsg).N)
	}
	assert.Equal(t, 0, mb.len())
}

func TestMailboxPopWaitsForPush(t *testing.T) {
	mb := newMailbox()

	got := make(chan int, 1)
	go func() {
		env, ok := mb.pop(nil)
		if ok {
			got <- env.message.(*numMsg).N
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.True(t, mb.push(envelope{message: &numMsg{N: 7}}))

	select {
	case n := <-got:
		assert.Equal(t, 7, n)
	case <-time.After(time.Second):
		t.Fatal("pop did not wake up")
	}
}

func TestMailboxPopDone(t *testing.T) {
	mb := newMailbox()
	done := make(chan struct{})
	close(done)

	_, ok := mb.pop(done)
	assert.False(t, ok)
}

func TestMailboxClose(t *testing.T) {
	mb := newMailbox()
	mb.push(envelope{message: &numMsg{N: 1}})
	mb.push(envelope{message: &numMsg{N: 2}})

	rest := mb.close()
	assert.Len(t, rest, 2)
	assert.False(t, mb.push(envelope{message: &numMsg{N: 3}}))

	_, ok := mb.pop(nil)
	assert.False(t, ok)
}

func TestMailboxSealKeepsQueued(t *testing.T) {
	mb := newMailbox()
	mb.push(envelope{message: &numMsg{N: 1}})
	mb.seal()

	assert.False(t, mb.push(envelope{message: &numMsg{N: 2}}))

	env, ok := mb.pop(nil)
	require.True(t, ok)
	assert.Equal(t, 1, env.message.(*numMsg).N)

	_, ok = mb.pop(nil)
	assert.False(t, ok)
}

func TestMailboxConcurrentProducers(t *testing.T) {
	mb := newMailbox()

	const producers, perProducer = 8, 200
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				mb.push(envelope{message: &numMsg{N: p*perProducer + i}})
			}
		}(p)
	}
	wg.Wait()

	// 每个生产者内部保持顺序
	last := make(map[int]int)
	for i := 0; i < producers*perProducer; i++ {
		env, ok := mb.pop(nil)
		require.True(t, ok)
		n := env.message.(*numMsg).N
		p := n / perProducer
		if prev, seen := last[p]; seen {
			assert.Greater(t, n, prev)
		}
		last[p] = n
	}
}

func TestMailboxPopTerminalClosesOnPill(t *testing.T) {
	mb := newMailbox()
	require.True(t, mb.push(envelope{message: &numMsg{N: 1}}))
	require.True(t, mb.push(envelope{message: &PoisonPill{}}))
	require.True(t, mb.push(envelope{message: &numMsg{N: 2}}))
	require.True(t, mb.push(envelope{message: &numMsg{N: 3}}))

	env, rest, ok := mb.popTerminal(false)
	require.True(t, ok)
	assert.Equal(t, 1, env.message.(*numMsg).N)
	assert.Empty(t, rest)
	assert.False(t, mb.isClosed())

	env, rest, ok = mb.popTerminal(false)
	require.True(t, ok)
	assert.IsType(t, &PoisonPill{}, env.message)
	require.Len(t, rest, 2)
	assert.Equal(t, 2, rest[0].message.(*numMsg).N)

	// 取到 PoisonPill 的同时邮箱已关闭，不存在接受后再丢弃的窗口
	assert.True(t, mb.isClosed())
	assert.False(t, mb.push(envelope{message: &numMsg{N: 4}}))
	assert.Zero(t, mb.len())
}

func TestMailboxPopTerminalDrainKeepsQueued(t *testing.T) {
	mb := newMailbox()
	require.True(t, mb.push(envelope{message: &PoisonPill{}}))
	require.True(t, mb.push(envelope{message: &numMsg{N: 1}}))

	env, rest, ok := mb.popTerminal(true)
	require.True(t, ok)
	assert.IsType(t, &PoisonPill{}, env.message)
	assert.Empty(t, rest)
	assert.False(t, mb.push(envelope{message: &numMsg{N: 2}}))

	env, _, ok = mb.popTerminal(true)
	require.True(t, ok)
	assert.Equal(t, 1, env.message.(*numMsg).N)

	_, _, ok = mb.popTerminal(true)
	assert.False(t, ok)
}
