package metrics

import (
	"net/http"
	"time"

	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess    = "success"
	OutcomeIncomplete = "incomplete"
	OutcomeConflict   = "conflict"
	OutcomeFailed     = "failed"
)

var (
	// Registry holds every collector the service exports. It's kept apart
	// from prometheus.DefaultRegisterer so tests can gather it directly.
	Registry = prometheus.NewRegistry()

	publishAttempts = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindlewood_publish_attempts_total",
			Help: "Publish requests partitioned by platform and outcome.",
		},
		[]string{"platform", "outcome"},
	)
	unpublishes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindlewood_unpublishes_total",
			Help: "Publications taken down, partitioned by platform.",
		},
		[]string{"platform"},
	)
	compilationSeconds = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kindlewood_audio_compilation_seconds",
			Help:    "Wall time spent compiling audiobooks.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
	compiledBytes = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kindlewood_compiled_audio_bytes_total",
			Help: "Bytes of compiled audiobook audio written to storage.",
		},
	)
	staleCompilations = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kindlewood_stale_compilations_total",
			Help: "Compilations failed by the reconciler after timing out.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func PublishAttempt(platform, outcome string) {
	publishAttempts.WithLabelValues(platform, outcome).Inc()
}

func Unpublished(platform string) {
	unpublishes.WithLabelValues(platform).Inc()
}

// Compiled records one successful compilation.
func Compiled(elapsed time.Duration, size int64) {
	compilationSeconds.Observe(elapsed.Seconds())
	compiledBytes.Add(float64(size))
}

func StaleCompilationsFailed(n int) {
	staleCompilations.Add(float64(n))
}

func RegisterRoutes(e *echo.Echo) {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	e.GET("/metrics", echo.WrapHandler(h))
}

// Outcome maps a publish error to the outcome label it's counted under.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch errcodes.HTTPCode(err) {
	case http.StatusBadRequest:
		return OutcomeIncomplete
	case http.StatusConflict:
		return OutcomeConflict
	}
	return OutcomeFailed
}
