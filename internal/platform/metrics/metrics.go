package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kalium_review_backend_requests_total",
		Help: "Total number of calls made to the Kalium backend.",
	},
		[]string{"operation", "status"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kalium_review_backend_request_duration_seconds",
		Help:    "Latency of calls made to the Kalium backend.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"operation"},
	)

	ItemsReviewedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kalium_review_items_reviewed_total",
		Help: "Total number of item classifications accepted by the backend.",
	},
		[]string{"outcome"},
	)

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kalium_review_decisions_total",
		Help: "Total number of approve or reject decisions applied.",
	},
		[]string{"action"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kalium_review_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation", "kind"},
	)

	OpenReviewViews = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kalium_review_open_views",
		Help: "Current number of review views held in memory.",
	})
)

// BackendCalls feeds the backend client's call observer into the registry.
type BackendCalls struct{}

func (BackendCalls) ObserveCall(operation string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(operation, code).Inc()
	BackendRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
