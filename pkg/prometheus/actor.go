package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// actorMetrics actor.Metrics 的 Prometheus 实现
type actorMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	maroonedTotal   *prometheus.CounterVec
	deadLetterTotal *prometheus.CounterVec
	mailboxDepth    *prometheus.GaugeVec
	actorsRunning   prometheus.Gauge
}

// NewActorMetrics 创建 actor.Metrics 并把收集器注册到 reg
// 注册失败时 panic
func NewActorMetrics(reg prometheus.Registerer) actor.Metrics {
	m := &actorMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "actor_message_duration_seconds",
			Help:      "Message handling time in seconds",
			Buckets:   defaultBuckets,
		}, []string{"kind"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "actor_messages_total",
			Help:      "Total number of messages dispatched to Receive",
		}, []string{"kind", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "actor_panics_total",
			Help:      "Total number of panics recovered from Receive",
		}, []string{"kind"}),

		maroonedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "actor_marooned_total",
			Help:      "Total number of messages an actor did not recognize",
		}, []string{"kind"}),

		deadLetterTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "actor_dead_letters_total",
			Help:      "Total number of undeliverable or dropped messages",
		}, []string{"kind"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "actor_mailbox_depth",
			Help:      "Mailbox queue depth observed after the last dequeue",
		}, []string{"actor_id"}),

		actorsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "actors_running",
			Help:      "Number of live actors",
		}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.maroonedTotal,
		m.deadLetterTotal,
		m.mailboxDepth,
		m.actorsRunning,
	)

	return m
}

func (m *actorMetrics) MessageDuration(kind string) actor.Timer {
	return newTimer(m.messageDuration.WithLabelValues(kind))
}

func (m *actorMetrics) MessageProcessed(kind string, success bool) {
	m.messagesTotal.WithLabelValues(kind, boolToStr(success)).Inc()
}

func (m *actorMetrics) MessagePanic(kind string) {
	m.panicTotal.WithLabelValues(kind).Inc()
}

func (m *actorMetrics) MessageMarooned(kind string) {
	m.maroonedTotal.WithLabelValues(kind).Inc()
}

func (m *actorMetrics) DeadLetter(kind string) {
	m.deadLetterTotal.WithLabelValues(kind).Inc()
}

func (m *actorMetrics) MailboxDepth(actorID string, depth int) {
	m.mailboxDepth.WithLabelValues(actorID).Set(float64(depth))
}

// ActorTerminated 删除已退出 Actor 的邮箱长度序列
func (m *actorMetrics) ActorTerminated(actorID string) {
	m.mailboxDepth.DeleteLabelValues(actorID)
}

func (m *actorMetrics) ActorsRunning(count int) {
	m.actorsRunning.Set(float64(count))
}

var _ actor.Metrics = (*actorMetrics)(nil)
