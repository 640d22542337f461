// Package metrics exposes Prometheus counters for the event engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the engine's counters. A nil *Recorder is valid and
// records nothing, so tests can pass nil.
type Recorder struct {
	eventsGenerated    *prometheus.CounterVec
	eventsEmpty        prometheus.Counter
	cooldownRejections prometheus.Counter
	decisionsResolved  prometheus.Counter
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		eventsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifepath",
			Name:      "events_generated_total",
			Help:      "Event templates drawn, by category.",
		}, []string{"category"}),
		eventsEmpty: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lifepath",
			Name:      "events_empty_total",
			Help:      "Generation calls with no eligible template.",
		}),
		cooldownRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lifepath",
			Name:      "event_cooldown_rejections_total",
			Help:      "Generation calls declined by the cooldown gate.",
		}),
		decisionsResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lifepath",
			Name:      "decisions_resolved_total",
			Help:      "Decisions resolved and recorded.",
		}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifepath",
			Name:      "cache_hits_total",
			Help:      "Cache-aside hits, by key kind.",
		}, []string{"kind"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifepath",
			Name:      "cache_misses_total",
			Help:      "Cache-aside misses, by key kind.",
		}, []string{"kind"}),
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (r *Recorder) EventGenerated(category string) {
	if r == nil {
		return
	}
	r.eventsGenerated.WithLabelValues(category).Inc()
}

func (r *Recorder) NoEvent() {
	if r == nil {
		return
	}
	r.eventsEmpty.Inc()
}

func (r *Recorder) CooldownRejected() {
	if r == nil {
		return
	}
	r.cooldownRejections.Inc()
}

func (r *Recorder) DecisionResolved() {
	if r == nil {
		return
	}
	r.decisionsResolved.Inc()
}

func (r *Recorder) CacheHit(kind string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(kind).Inc()
}

func (r *Recorder) CacheMiss(kind string) {
	if r == nil {
		return
	}
	r.cacheMisses.WithLabelValues(kind).Inc()
}
