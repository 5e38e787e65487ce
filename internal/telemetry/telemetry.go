// Package telemetry exposes unit build outcomes and state changes as
// Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
)

// Build outcomes reported by the instance manager.
const (
	OutcomeOK = "ok"
)

// Collector receives runtime telemetry. Hooks run inline with unit builds
// and state changes, so implementations must be cheap.
type Collector interface {
	ObserveBuild(class, outcome string, d time.Duration)
	IncStateChange(class string, source automation.Source)
	SetActiveUnits(n int)
}

type noopCollector struct{}

// Noop returns a collector that discards everything.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) ObserveBuild(string, string, time.Duration) {}
func (noopCollector) IncStateChange(string, automation.Source)   {}
func (noopCollector) SetActiveUnits(int)                         {}

// PrometheusCollector implements Collector with Prometheus vectors.
type PrometheusCollector struct {
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	stateChanges  *prometheus.CounterVec
	activeUnits   prometheus.Gauge
}

// NewPrometheusCollector registers the metrics with reg (the default
// registerer when nil). Registering twice against the same registry reuses
// the existing collectors.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	builds, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graylogic_onoff",
		Name:      "unit_builds_total",
		Help:      "Automation unit build attempts by device class and outcome.",
	}, []string{"class", "outcome"}))
	if err != nil {
		return nil, err
	}

	buildDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "graylogic_onoff",
		Name:      "unit_build_duration_seconds",
		Help:      "Time spent validating fields, resolving ports and constructing units.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
	}, []string{"class"}))
	if err != nil {
		return nil, err
	}

	stateChanges, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graylogic_onoff",
		Name:      "state_changes_total",
		Help:      "Published unit state changes by device class and command source.",
	}, []string{"class", "source"}))
	if err != nil {
		return nil, err
	}

	activeUnits, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "graylogic_onoff",
		Name:      "active_units",
		Help:      "Automation units currently registered.",
	}))
	if err != nil {
		return nil, err
	}

	return &PrometheusCollector{
		builds:        builds,
		buildDuration: buildDuration,
		stateChanges:  stateChanges,
		activeUnits:   activeUnits,
	}, nil
}

// register adds c to reg, returning the already registered collector of
// the same type when one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, err
}

// ObserveBuild records one build attempt.
func (p *PrometheusCollector) ObserveBuild(class, outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.builds.WithLabelValues(class, outcome).Inc()
	p.buildDuration.WithLabelValues(class).Observe(d.Seconds())
}

// IncStateChange counts one published state change.
func (p *PrometheusCollector) IncStateChange(class string, source automation.Source) {
	if p == nil {
		return
	}
	p.stateChanges.WithLabelValues(class, string(source)).Inc()
}

// SetActiveUnits sets the live unit gauge.
func (p *PrometheusCollector) SetActiveUnits(n int) {
	if p == nil {
		return
	}
	p.activeUnits.Set(float64(n))
}

// EventHandler adapts a Collector to an event bus handler.
func EventHandler(c Collector) func(context.Context, automation.Event) error {
	return func(_ context.Context, ev automation.Event) error {
		c.IncStateChange(ev.Class, ev.Source)
		return nil
	}
}

type multi []Collector

// Multi fans every call out to each collector in order.
func Multi(collectors ...Collector) Collector {
	return multi(collectors)
}

func (m multi) ObserveBuild(class, outcome string, d time.Duration) {
	for _, c := range m {
		c.ObserveBuild(class, outcome, d)
	}
}

func (m multi) IncStateChange(class string, source automation.Source) {
	for _, c := range m {
		c.IncStateChange(class, source)
	}
}

func (m multi) SetActiveUnits(n int) {
	for _, c := range m {
		c.SetActiveUnits(n)
	}
}

// BuildHook is a Collector that forwards build observations to fn and
// ignores everything else.
type BuildHook func(class, outcome string, d time.Duration)

// ObserveBuild calls the hook.
func (h BuildHook) ObserveBuild(class, outcome string, d time.Duration) { h(class, outcome, d) }

// IncStateChange is a no-op.
func (BuildHook) IncStateChange(string, automation.Source) {}

// SetActiveUnits is a no-op.
func (BuildHook) SetActiveUnits(int) {}
