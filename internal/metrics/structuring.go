package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/learnora/learnora/internal/domain"
)

// Retrieval and result-structuring metrics.
var (
	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "learnora",
			Name:      "retrieval_duration_seconds",
			Help:      "Query embedding plus KNN search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"status"},
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "learnora",
			Name:      "retrieval_results",
			Help:      "Number of resources returned per retrieval",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	FishboneLaneSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "learnora",
			Name:      "fishbone_lane_size",
			Help:      "Entries emitted per fishbone lane",
			Buckets:   []float64{0, 1, 2, 5, 10},
		},
		[]string{"lane"},
	)

	RoadmapSteps = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "learnora",
			Name:      "roadmap_steps",
			Help:      "Roadmap steps emitted per request, by origin",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 50},
		},
		[]string{"kind"}, // "group" / "padding"
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval and structuring metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalResults)
	prometheus.MustRegister(FishboneLaneSize)
	prometheus.MustRegister(RoadmapSteps)
	retrievalMetricsRegistered = true
}

// ObserveRetrieval records one retrieval round trip.
func ObserveRetrieval(start time.Time, results int, err error) {
	RetrievalDuration.WithLabelValues(retrievalStatus(err)).Observe(time.Since(start).Seconds())
	if err == nil {
		RetrievalResults.Observe(float64(results))
	}
}

// ObserveFishbone records emitted lane sizes.
func ObserveFishbone(articles, videos int) {
	FishboneLaneSize.WithLabelValues("articles").Observe(float64(articles))
	FishboneLaneSize.WithLabelValues("videos").Observe(float64(videos))
}

// ObserveRoadmap records how many steps came from groups and how many from padding.
func ObserveRoadmap(steps, padded int) {
	RoadmapSteps.WithLabelValues("group").Observe(float64(steps - padded))
	RoadmapSteps.WithLabelValues("padding").Observe(float64(padded))
}

func retrievalStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrIndexNotFound), errors.Is(err, domain.ErrResourceUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return "embedding_error"
	default:
		return "error"
	}
}
