package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suxatcode/knowledge-graph-view/internal/controller"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	frames   prometheus.Counter
	pointer  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, ctrl *controller.Controller) *metrics {
	factory := promauto.With(reg)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kgview_sessions_open",
		Help: "Number of open viewer sessions",
	}, func() float64 { return float64(ctrl.Len()) })
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kgview_http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"route", "method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kgview_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"route", "method"}),
		frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "kgview_frames_encoded_total",
			Help: "Frames encoded as PNG",
		}),
		pointer: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kgview_pointer_events_total",
			Help: "Pointer events by type",
		}, []string{"type"}),
	}
}

func (m *metrics) instrument(route string, h http.HandlerFunc) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerCounter(
		m.requests.MustCurryWith(labels),
		promhttp.InstrumentHandlerDuration(m.duration.MustCurryWith(labels), h),
	)
}
