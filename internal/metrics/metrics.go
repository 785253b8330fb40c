// Copyright (c) 2025 The pfxset Authors
// SPDX-License-Identifier: MIT

// Package metrics records the size and timing of a pfxset run in a
// private prometheus registry, to be dumped for the node-exporter
// textfile collector.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pfxset"

type metricDefinition struct {
	Name   string
	Help   string
	Type   string
	Labels []string
}

var (
	prefixesDef = metricDefinition{
		Name:   "prefixes",
		Help:   "Number of prefixes per address family and set, after collapse unless set is raw.",
		Type:   "gauge",
		Labels: []string{"family", "set"},
	}
	durationDef = metricDefinition{
		Name:   "phase_duration_seconds",
		Help:   "Wall time of the last run per phase.",
		Type:   "gauge",
		Labels: []string{"phase"},
	}
	runsDef = metricDefinition{
		Name:   "runs_total",
		Help:   "Number of runs per command and result.",
		Type:   "counter",
		Labels: []string{"command", "result"},
	}

	definitions = []metricDefinition{prefixesDef, durationDef, runsDef}
)

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry
	prefixes *prometheus.GaugeVec
	duration *prometheus.GaugeVec
	runs     *prometheus.CounterVec
}

// New returns Metrics with a fresh private registry, nothing is
// registered with the global default registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		prefixes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      prefixesDef.Name,
			Help:      prefixesDef.Help,
		}, prefixesDef.Labels),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      durationDef.Name,
			Help:      durationDef.Help,
		}, durationDef.Labels),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      runsDef.Name,
			Help:      runsDef.Help,
		}, runsDef.Labels),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// SetPrefixes records the size of a set.
func (m *Metrics) SetPrefixes(family, set string, n int) {
	m.prefixes.WithLabelValues(family, set).Set(float64(n))
}

// ObservePhase records the duration of a phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.duration.WithLabelValues(phase).Set(d.Seconds())
}

// CountRun counts a finished run, result is "ok" if err is nil, else "error".
func (m *Metrics) CountRun(command string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(command, result).Inc()
}

// WriteTextfile writes all metrics in the text exposition format to
// path, atomically via a temp file and rename.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}

// Documentation returns a markdown table per metric.
func Documentation() string {
	var sb strings.Builder
	for _, def := range definitions {
		fmt.Fprintf(&sb, `
### %s_%s
| **Name** | %s_%s |
|:---|:---|
| **Description** | %s |
| **Type** | %s |
| **Labels** | %s |
`,
			namespace, def.Name,
			namespace, def.Name,
			def.Help,
			def.Type,
			strings.Join(def.Labels, ", "),
		)
	}
	return sb.String()
}
