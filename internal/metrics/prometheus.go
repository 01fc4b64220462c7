// Package metrics exposes extraction counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "squatprep_frames_decoded_total",
		Help: "Total number of frames decoded from raw videos",
	})

	FramesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "squatprep_frames_skipped_total",
		Help: "Total number of frames that failed to decode and were skipped",
	})

	ArtifactsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "squatprep_artifacts_written_total",
		Help: "Total number of images written, by partition",
	}, []string{"partition"})

	SegmentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "squatprep_segments_processed_total",
		Help: "Total number of repetitions extracted",
	})

	VideosFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "squatprep_videos_failed_total",
		Help: "Total number of videos abandoned because of an error",
	})

	SegmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "squatprep_segment_duration_seconds",
		Help:    "Duration of extracting one repetition",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "squatprep_active_workers",
		Help: "Number of videos currently being processed",
	})
)
