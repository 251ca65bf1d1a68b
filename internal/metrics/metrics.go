// Package metrics exposes the daemon's prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts recording activity. It satisfies recording.Metrics.
type Collector struct {
	sessionsStarted prometheus.Counter
	sessionsStopped *prometheus.CounterVec
	interruptions   *prometheus.CounterVec
	segmentsOpened  prometheus.Counter
	stitchDuration  prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "voicerec_sessions_started_total", Help: "Recording sessions started"},
		),
		sessionsStopped: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "voicerec_sessions_stopped_total", Help: "Recording sessions stopped, by outcome"},
			[]string{"outcome"},
		),
		interruptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "voicerec_interruptions_total", Help: "Interruptions acted on, by kind"},
			[]string{"kind"},
		),
		segmentsOpened: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "voicerec_segments_opened_total", Help: "Segment files opened"},
		),
		stitchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "voicerec_stitch_duration_seconds",
				Help:    "Time spent stitching segments",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}
	reg.MustRegister(c.sessionsStarted, c.sessionsStopped, c.interruptions, c.segmentsOpened, c.stitchDuration)
	return c
}

func (c *Collector) SessionStarted() { c.sessionsStarted.Inc() }

func (c *Collector) SessionStopped(outcome string) {
	c.sessionsStopped.WithLabelValues(outcome).Inc()
}

func (c *Collector) Interruption(kind string) {
	c.interruptions.WithLabelValues(kind).Inc()
}

func (c *Collector) SegmentOpened() { c.segmentsOpened.Inc() }

func (c *Collector) StitchDuration(d time.Duration) {
	c.stitchDuration.Observe(d.Seconds())
}
