package actor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============== 测试消息类型 ==============

type seqMsg struct {
	Tracked
	N int
}

func (m *seqMsg) Kind() string { return "test.seq" }

type ackMsg struct {
	Tracked
	N int
}

func (m *ackMsg) Kind() string { return "test.ack" }

type boomMsg struct {
	Tracked
}

func (m *boomMsg) Kind() string { return "test.boom" }

type panicMsg struct{}

func (m *panicMsg) Kind() string { return "test.panic" }

type unknownMsg struct{}

func (m *unknownMsg) Kind() string { return "test.unknown" }

type blockMsg struct {
	entered chan struct{}
	release chan struct{}
}

func (m *blockMsg) Kind() string { return "test.block" }

// ============== 测试 Actor ==============

// echoActor 回复 seqMsg，boomMsg 返回错误，panicMsg 触发 panic
type echoActor struct {
	mu   sync.Mutex
	seen []int
}

func (a *echoActor) Receive(ctx *Context, msg Message) error {
	switch m := msg.(type) {
	case *Started, *Stopping:
	case *seqMsg:
		a.mu.Lock()
		a.seen = append(a.seen, m.N)
		a.mu.Unlock()
		if ctx.Sender() != nil {
			return ctx.Reply(&ackMsg{Tracked: TrackFrom(m), N: m.N})
		}
	case *boomMsg:
		return errors.New("boom")
	case *panicMsg:
		panic("intentional panic")
	case *blockMsg:
		close(m.entered)
		<-m.release
	default:
		ctx.NotifyMarooned(msg)
	}
	return nil
}

func (a *echoActor) Seen() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.seen...)
}

// ============== 测试用例 ==============

func TestStartedIsFirstMessage(t *testing.T) {
	sys := newTestSystem(t)

	kinds := make(chan string, 4)
	ref, err := sys.FromType(func() Actor {
		return ActorFunc(func(_ *Context, msg Message) error {
			kinds <- msg.Kind()
			return nil
		})
	}, "first")
	require.NoError(t, err)
	require.NoError(t, ref.Tell(&seqMsg{N: 1}, nil))

	stopAndWait(t, sys, ref)
	close(kinds)

	var got []string
	for k := range kinds {
		got = append(got, k)
	}
	assert.Equal(t, []string{"system.started", "test.seq", "system.stopping"}, got)
}

func TestFIFOPerSender(t *testing.T) {
	sys := newTestSystem(t)

	a := &echoActor{}
	ref, err := sys.Spawn(a, "fifo")
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		require.NoError(t, ref.Tell(&seqMsg{N: i}, nil))
	}
	stopAndWait(t, sys, ref)

	seen := a.Seen()
	require.Len(t, seen, 500)
	for i, n := range seen {
		assert.Equal(t, i, n)
	}
}

func TestReceiveNeverReentrant(t *testing.T) {
	sys := newTestSystem(t)

	var inside, maxInside atomic.Int32
	ref, err := sys.FromType(func() Actor {
		return ActorFunc(func(_ *Context, msg Message) error {
			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(50 * time.Microsecond)
			inside.Add(-1)
			return nil
		})
	}, "single-writer")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = ref.Tell(&seqMsg{N: i}, nil)
			}
		}()
	}
	wg.Wait()
	stopAndWait(t, sys, ref)

	assert.Equal(t, int32(1), maxInside.Load())
}

func TestTerminationFinality(t *testing.T) {
	sys := newTestSystem(t)

	ref, err := sys.Spawn(&echoActor{}, "finality")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, waitStatus(ref, StatusRunning))

	stopAndWait(t, sys, ref)
	assert.Equal(t, StatusTerminated, ref.Status())

	err = ref.Tell(&seqMsg{N: 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeadActor)

	var dead *DeadActorError
	require.ErrorAs(t, err, &dead)
	assert.Equal(t, "finality", dead.ID)
	assert.Equal(t, "test.seq", dead.Kind)

	// 再次等待立即返回
	require.NoError(t, sys.WaitFor(testContext(t), ref))
	assert.GreaterOrEqual(t, sys.Stats().DeadLetters, int64(1))
}

func TestPoisonPillDropsQueuedMessages(t *testing.T) {
	sys := newTestSystem(t)

	a := &echoActor{}
	ref, err := sys.Spawn(a, "dropper")
	require.NoError(t, err)

	block := &blockMsg{entered: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, ref.Tell(block, nil))
	<-block.entered

	require.NoError(t, ref.Tell(&seqMsg{N: 1}, nil))
	require.NoError(t, ref.Tell(&PoisonPill{}, nil))
	require.NoError(t, ref.Tell(&seqMsg{N: 2}, nil))
	require.NoError(t, ref.Tell(&seqMsg{N: 3}, nil))
	close(block.release)

	require.NoError(t, sys.WaitFor(testContext(t), ref))

	assert.Equal(t, []int{1}, a.Seen())
	assert.Equal(t, int64(2), ref.Stats().Dropped)
}

func TestPoisonPillDrainPolicy(t *testing.T) {
	sys := newTestSystem(t, func(c *SystemConfig) { c.PoisonPolicy = PoisonDrain })

	a := &echoActor{}
	ref, err := sys.Spawn(a, "drainer")
	require.NoError(t, err)

	block := &blockMsg{entered: make(chan struct{}), release: make(chan struct{})}
	require.NoError(t, ref.Tell(block, nil))
	<-block.entered

	require.NoError(t, ref.Tell(&PoisonPill{}, nil))
	require.NoError(t, ref.Tell(&seqMsg{N: 1}, nil))
	require.NoError(t, ref.Tell(&seqMsg{N: 2}, nil))
	close(block.release)

	require.NoError(t, sys.WaitFor(testContext(t), ref))

	assert.Equal(t, []int{1, 2}, a.Seen())
	assert.Zero(t, ref.Stats().Dropped)
	assert.ErrorIs(t, ref.Tell(&seqMsg{N: 3}, nil), ErrDeadActor)
}

func TestFailureConversion(t *testing.T) {
	sys := newTestSystem(t)

	ref, err := sys.Spawn(&echoActor{}, "failing")
	require.NoError(t, err)

	inbox := sys.NewInbox("requester")
	defer inbox.Close()

	boom := &boomMsg{Tracked: Track("T1")}
	require.NoError(t, ref.Tell(boom, inbox.Ref()))

	failure := receiveAs[*ActorFailure](t, inbox)
	assert.Equal(t, "T1", failure.TrackingID())
	assert.Equal(t, boom, failure.Source())
	assert.Equal(t, "boom", failure.Reason())
	assert.Equal(t, "failing", failure.Actor)
	assert.Equal(t, VariantFailure, VariantOf(failure))

	// 调度循环继续处理后续消息
	require.NoError(t, ref.Tell(&seqMsg{Tracked: Track("T2"), N: 9}, inbox.Ref()))
	ack := receiveAs[*ackMsg](t, inbox)
	assert.Equal(t, 9, ack.N)
	assert.Equal(t, "T2", ack.TrackingID())

	// 只有一条失败消息
	assert.Zero(t, inbox.Len())
	assert.Equal(t, int64(1), ref.Stats().Failures)
	assert.Equal(t, StatusRunning, ref.Status())
}

func TestPanicIsConvertedToFailure(t *testing.T) {
	var handled atomic.Int32
	sys := newTestSystem(t, func(c *SystemConfig) {
		c.PanicHandler = func(_ *Ref, _ Message, _ any) { handled.Add(1) }
	})

	ref, err := sys.Spawn(&echoActor{}, "panicky")
	require.NoError(t, err)

	inbox := sys.NewInbox("")
	defer inbox.Close()

	require.NoError(t, ref.Tell(&panicMsg{}, inbox.Ref()))

	failure := receiveAs[*ActorFailure](t, inbox)
	assert.Contains(t, failure.Reason(), "intentional panic")
	assert.Empty(t, failure.TrackingID())
	assert.Equal(t, int32(1), handled.Load())

	require.NoError(t, ref.Tell(&seqMsg{N: 1}, inbox.Ref()))
	receiveAs[*ackMsg](t, inbox)
}

func TestFailureWithoutSenderIsLogged(t *testing.T) {
	rec := &recordingLogger{}
	sys := newTestSystem(t, func(c *SystemConfig) { c.LoggerFactory = rec.factory })

	ref, err := sys.Spawn(&echoActor{}, "orphan")
	require.NoError(t, err)

	require.NoError(t, ref.Tell(&boomMsg{Tracked: Track("T9")}, nil))
	stopAndWait(t, sys, ref)

	entry, ok := rec.find("error", "message processing failed")
	require.True(t, ok)
	assert.Equal(t, "orphan", entry.Actor)
	assert.Equal(t, "T9", entry.TrackingID)
}

func TestFailureOfFailureIsNotReported(t *testing.T) {
	rec := &recordingLogger{}
	sys := newTestSystem(t, func(c *SystemConfig) { c.LoggerFactory = rec.factory })

	var failures atomic.Int64
	strict := func(ctx *Context, msg Message) error {
		switch msg.(type) {
		case *Started, *Stopping:
			return nil
		case *ActorFailure:
			failures.Add(1)
		}
		return errors.New("unexpected " + msg.Kind())
	}

	a, err := sys.Spawn(ActorFunc(strict), "a")
	require.NoError(t, err)
	b, err := sys.Spawn(ActorFunc(strict), "b")
	require.NoError(t, err)

	require.NoError(t, b.Tell(&seqMsg{Tracked: Track("T5")}, a))
	stopAndWait(t, sys, b)
	stopAndWait(t, sys, a)

	assert.Equal(t, int64(1), failures.Load())
	assert.Equal(t, int64(2), sys.Stats().Failures)

	entry, ok := rec.find("error", "failure message processing failed")
	require.True(t, ok)
	assert.Equal(t, "a", entry.Actor)
	assert.Equal(t, "T5", entry.TrackingID)
}

func TestFailureToDeadSenderIsLogged(t *testing.T) {
	rec := &recordingLogger{}
	sys := newTestSystem(t, func(c *SystemConfig) { c.LoggerFactory = rec.factory })

	ref, err := sys.Spawn(&echoActor{}, "worker")
	require.NoError(t, err)

	inbox := sys.NewInbox("gone")
	inbox.Close()

	require.NoError(t, ref.Tell(&boomMsg{}, inbox.Ref()))
	stopAndWait(t, sys, ref)

	_, ok := rec.find("error", "failure report undeliverable")
	assert.True(t, ok)
}

func TestTrackingPropagatesThroughChain(t *testing.T) {
	sys := newTestSystem(t)

	// C 对 boomMsg 失败，对 seqMsg 回复 ack
	c, err := sys.Spawn(&echoActor{}, "C")
	require.NoError(t, err)

	// B 把请求转给 C，再把 C 的结果带着原 tracking id 回给请求方
	requesters := map[string]*Ref{}
	b, err := sys.FromType(func() Actor {
		return ActorFunc(func(ctx *Context, msg Message) error {
			switch m := msg.(type) {
			case *seqMsg:
				requesters[m.TrackingID()] = ctx.Sender()
				if m.N < 0 {
					return ctx.Tell(c, &boomMsg{Tracked: TrackFrom(m)})
				}
				return ctx.Tell(c, &seqMsg{Tracked: TrackFrom(m), N: m.N * 10})
			case *ackMsg:
				return requesters[m.TrackingID()].Tell(&ackMsg{Tracked: TrackFrom(m), N: m.N}, ctx.Myself())
			case *ActorFailure:
				return requesters[m.TrackingID()].Tell(m, ctx.Myself())
			}
			return nil
		})
	}, "B")
	require.NoError(t, err)

	inbox := sys.NewInbox("A")
	defer inbox.Close()

	ok := NewTrackingID()
	require.NoError(t, b.Tell(&seqMsg{Tracked: Track(ok), N: 4}, inbox.Ref()))
	ack := receiveAs[*ackMsg](t, inbox)
	assert.Equal(t, ok, ack.TrackingID())
	assert.Equal(t, 40, ack.N)

	bad := NewTrackingID()
	require.NoError(t, b.Tell(&seqMsg{Tracked: Track(bad), N: -1}, inbox.Ref()))
	failure := receiveAs[*ActorFailure](t, inbox)
	assert.Equal(t, bad, failure.TrackingID())
	assert.Equal(t, bad, TrackingOf(failure.Source()))
	assert.Equal(t, "C", failure.Actor)
}

func TestMaroonedDefaultLogsError(t *testing.T) {
	rec := &recordingLogger{}
	sys := newTestSystem(t, func(c *SystemConfig) { c.LoggerFactory = rec.factory })

	ref, err := sys.Spawn(&echoActor{}, "strict")
	require.NoError(t, err)

	require.NoError(t, ref.Tell(&unknownMsg{}, nil))
	stopAndWait(t, sys, ref)

	entry, ok := rec.find("error", "marooned message")
	require.True(t, ok)
	assert.Equal(t, "strict", entry.Actor)
	assert.Equal(t, int64(1), ref.Stats().Marooned)
	assert.Equal(t, int64(1), sys.Stats().Marooned)
}

type maroonedRecorder struct {
	BaseActor
	mu    sync.Mutex
	kinds []string
}

func (m *maroonedRecorder) NotifyMarooned(_ *Context, msg Message) {
	m.mu.Lock()
	m.kinds = append(m.kinds, msg.Kind())
	m.mu.Unlock()
}

func TestMaroonedCustomHandler(t *testing.T) {
	sys := newTestSystem(t)

	a := &maroonedRecorder{}
	ref, err := sys.Spawn(a, "custom")
	require.NoError(t, err)

	require.NoError(t, ref.Tell(&unknownMsg{}, nil))
	require.NoError(t, ref.Tell(&seqMsg{N: 1}, nil))
	stopAndWait(t, sys, ref)

	a.mu.Lock()
	defer a.mu.Unlock()
	// 生命周期消息不算无法识别
	assert.Equal(t, []string{"test.unknown", "test.seq"}, a.kinds)
}

func TestContextReplyWithoutSender(t *testing.T) {
	sys := newTestSystem(t)

	errs := make(chan error, 1)
	ref, err := sys.FromType(func() Actor {
		return ActorFunc(func(ctx *Context, msg Message) error {
			if _, ok := msg.(*seqMsg); ok {
				errs <- ctx.Reply(&ackMsg{})
			}
			return nil
		})
	}, "")
	require.NoError(t, err)

	require.NoError(t, ref.Tell(&seqMsg{}, nil))
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrNoSender)
	case <-time.After(time.Second):
		t.Fatal("no reply attempt")
	}
}

func TestStopSelf(t *testing.T) {
	sys := newTestSystem(t)

	ref, err := sys.FromType(func() Actor {
		return ActorFunc(func(ctx *Context, msg Message) error {
			if _, ok := msg.(*seqMsg); ok {
				return ctx.StopSelf()
			}
			return nil
		})
	}, "quitter")
	require.NoError(t, err)

	require.NoError(t, ref.Tell(&seqMsg{}, nil))
	require.NoError(t, sys.WaitFor(testContext(t), ref))
	assert.Equal(t, StatusTerminated, ref.Status())
}

func TestVariantOf(t *testing.T) {
	assert.Equal(t, VariantPlain, VariantOf(&unknownMsg{}))
	assert.Equal(t, VariantTraceable, VariantOf(&seqMsg{}))
	assert.Equal(t, VariantFailure, VariantOf(&ActorFailure{}))
	assert.Equal(t, VariantPoisonPill, VariantOf(&PoisonPill{}))
	assert.Equal(t, "poison_pill", VariantPoisonPill.String())
}

func TestNewFailureKeepsTracking(t *testing.T) {
	src := &seqMsg{Tracked: Track("T1"), N: 3}
	f := NewFailure(src, "disk full")

	assert.Equal(t, "T1", f.TrackingID())
	assert.Equal(t, src, f.Source())
	assert.Equal(t, "disk full", f.Reason())

	plain := NewFailure(&unknownMsg{}, "x")
	assert.Empty(t, plain.TrackingID())
}

func TestMessagesCompareByValue(t *testing.T) {
	assert.Equal(t, &seqMsg{Tracked: Track("T"), N: 1}, &seqMsg{Tracked: Track("T"), N: 1})
	assert.NotEqual(t, &seqMsg{Tracked: Track("T"), N: 1}, &seqMsg{Tracked: Track("U"), N: 1})
}

func waitStatus(ref *Ref, want Status) Status {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if st := ref.Status(); st == want {
			return st
		}
		time.Sleep(time.Millisecond)
	}
	return ref.Status()
}
