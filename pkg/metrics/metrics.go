package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "training"

type collectors struct {
	importRows      *prometheus.CounterVec
	importCommits   *prometheus.CounterVec
	courseMutations *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

var collectorsSingleton = sync.OnceValue(func() *collectors {
	return &collectors{
		importRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Rows processed by the batch import pipeline.",
		}, []string{"result"}),
		importCommits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_commits_total",
			Help:      "Batch import commit attempts.",
		}, []string{"result"}),
		courseMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "course_mutations_total",
			Help:      "Course writes sent to the persistence backend.",
		}, []string{"op", "result"}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "status"}),
		httpLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
	}
})

func get() *collectors {
	return collectorsSingleton()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ImportRows records one parse outcome.
func ImportRows(accepted, rejected int) {
	get().importRows.WithLabelValues("accepted").Add(float64(accepted))
	get().importRows.WithLabelValues("rejected").Add(float64(rejected))
}

func ImportCommit(err error) {
	get().importCommits.WithLabelValues(result(err)).Inc()
}

// CourseMutation counts a write of kind op ("upsert", "delete", "batch_upsert", "batch_delete").
func CourseMutation(op string, err error) {
	get().courseMutations.WithLabelValues(op, result(err)).Inc()
}

func ObserveHTTP(method string, status int, elapsed time.Duration) {
	get().httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	get().httpLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
