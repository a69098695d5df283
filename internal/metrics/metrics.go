package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 进程级指标。注册到默认 registry，由 /metrics 暴露。
var (
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propguard_poll_cycles_total",
		Help: "Completed market data poll cycles.",
	})
	SymbolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propguard_symbol_errors_total",
		Help: "Per-symbol fetch/annotate failures, skipped without aborting the cycle.",
	}, []string{"symbol"})
	AICalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propguard_ai_calls_total",
		Help: "Advisory gateway outcomes by result.",
	}, []string{"result"})
	RiskBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propguard_risk_blocks_total",
		Help: "Risk gate rejections by reason.",
	}, []string{"reason"})
	WSSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propguard_ws_subscribers",
		Help: "Currently connected websocket subscribers.",
	})
)
