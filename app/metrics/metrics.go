// Package metrics records terminal events as prometheus metrics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/workorder"
)

// Recorder counts terminal events. Implements workorder.EventHandler.
type Recorder struct {
	registry *prometheus.Registry

	Scans    *prometheus.CounterVec
	Started  prometheus.Counter
	Resumed  prometheus.Counter
	Paused   prometheus.Counter
	Finished prometheus.Counter
	Deleted  prometheus.Counter
}

// NewRecorder makes recorder with its own registry. Pending gauge reports the value of pendingFn
// on each scrape, nil pendingFn disables it.
func NewRecorder(pendingFn func() int) *Recorder {
	res := &Recorder{
		registry: prometheus.NewRegistry(),
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopfloor", Name: "scans_total", Help: "Scanned order numbers by result",
		}, []string{"result"}),
		Started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopfloor", Name: "orders_started_total", Help: "Orders started from the first step",
		}),
		Resumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopfloor", Name: "orders_resumed_total", Help: "Pending orders resumed",
		}),
		Paused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopfloor", Name: "orders_paused_total", Help: "Orders paused into pending",
		}),
		Finished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopfloor", Name: "orders_finished_total", Help: "Orders finished",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopfloor", Name: "orders_deleted_total", Help: "Orders removed from pending",
		}),
	}
	res.registry.MustRegister(res.Scans, res.Started, res.Resumed, res.Paused, res.Finished, res.Deleted)

	// all results visible from the start
	for _, r := range enums.ScanResultValues {
		res.Scans.WithLabelValues(r.String())
	}

	if pendingFn != nil {
		res.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "shopfloor", Name: "pending_orders", Help: "Orders waiting in pending list",
		}, func() float64 { return float64(pendingFn()) }))
	}
	return res
}

// Handler returns http handler exposing metrics of the recorder
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the registry used by recorder
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// OnScanned implements workorder.EventHandler
func (r *Recorder) OnScanned(_ string, result enums.ScanResult) {
	r.Scans.WithLabelValues(result.String()).Inc()
}

// OnStarted implements workorder.EventHandler
func (r *Recorder) OnStarted(workorder.Run) { r.Started.Inc() }

// OnResumed implements workorder.EventHandler
func (r *Recorder) OnResumed(workorder.Run) { r.Resumed.Inc() }

// OnPaused implements workorder.EventHandler
func (r *Recorder) OnPaused(progress.OrderProgress) { r.Paused.Inc() }

// OnFinished implements workorder.EventHandler
func (r *Recorder) OnFinished(workorder.Completion) { r.Finished.Inc() }

// OnDeleted implements workorder.EventHandler
func (r *Recorder) OnDeleted(string) { r.Deleted.Inc() }
