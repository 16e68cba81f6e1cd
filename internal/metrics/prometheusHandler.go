package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var ingestionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "document_ingestion_total",
	Help: "Documents run through ingestion, labelled by outcome (processed, failed, rejected) and failure kind",
}, []string{"outcome", "kind"})

var embeddingRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "embedding_retries_total",
	Help: "Embedding calls retried after a retryable upstream failure",
}, []string{"kind"})

var ingestionPaused = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ingestion_queue_paused",
	Help: "1 while ingestion is paused after an upstream authentication failure",
})

var retrievalOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "retrieval_answers_total",
	Help: "Composed answers labelled by outcome (context, no_context, retrieval_failed, cache_hit)",
}, []string{"outcome"})

// HttpStatusRecorder remembers the status code written by a handler.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func IngestionOutcome(outcome, kind string) {
	ingestionOutcomes.WithLabelValues(outcome, kind).Inc()
}

func EmbeddingRetry(kind string) {
	embeddingRetries.WithLabelValues(kind).Inc()
}

func SetIngestionPaused(paused bool) {
	if paused {
		ingestionPaused.Set(1)
		return
	}
	ingestionPaused.Set(0)
}

func RetrievalOutcome(outcome string) {
	retrievalOutcomes.WithLabelValues(outcome).Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent in ProcessRequest.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
