package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var autosaveFlushTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "careernav",
		Subsystem: "autosave",
		Name:      "flush_total",
		Help:      "草稿落库次数（按结果区分）。",
	},
	[]string{"result"},
)

// ObserveAutosaveFlush 记录一次草稿落库的结果。
func ObserveAutosaveFlush(success bool) {
	result := "ok"
	if !success {
		result = "error"
	}
	autosaveFlushTotal.WithLabelValues(result).Inc()
}
