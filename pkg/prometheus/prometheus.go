// Package prometheus 基于 Prometheus 实现 actor.Metrics
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lwmacct/251220-go-pkg-tunesort/pkg/actor"
)

// Namespace 本包注册的指标名前缀
const Namespace = "tunesort"

// timer 用直方图实现 actor.Timer
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) actor.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// defaultBuckets 延迟直方图的默认分桶（秒）
var defaultBuckets = []float64{
	.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Handler 以 Prometheus 文本格式暴露 g 收集的指标
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
