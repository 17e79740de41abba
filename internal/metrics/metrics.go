// Package metrics exposes Prometheus counters for staging activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives staging events.
type Recorder interface {
	ObserveExtract(entries int, bytes int64)
	ObserveStage(paths int, bytes int64)
	ObserveInstall(result string)
}

// Install results.
const (
	ResultInstalled = "installed"
	ResultSkipped   = "skipped"
	ResultLocked    = "locked"
	ResultFailed    = "failed"
)

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) ObserveExtract(int, int64) {}
func (Noop) ObserveStage(int, int64)   {}
func (Noop) ObserveInstall(string)     {}

// Prom implements Recorder backed by Prometheus counters.
type Prom struct {
	extractedEntries prometheus.Counter
	extractedBytes   prometheus.Counter
	stagedPaths      prometheus.Counter
	stagedBytes      prometheus.Counter
	installs         *prometheus.CounterVec
}

// NewProm creates the counters and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewProm(namespace string, reg prometheus.Registerer) (*Prom, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prom{
		extractedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_entries_total",
			Help:      "Archive entries materialized on the local filesystem",
		}),
		extractedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_bytes_total",
			Help:      "Bytes written while extracting archives",
		}),
		stagedPaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staged_paths_total",
			Help:      "Files and directories staged into the distributed filesystem",
		}),
		stagedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staged_bytes_total",
			Help:      "Bytes staged into the distributed filesystem",
		}),
		installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installs_total",
			Help:      "Environment installs by result",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{
		p.extractedEntries, p.extractedBytes, p.stagedPaths, p.stagedBytes, p.installs,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prom) ObserveExtract(entries int, bytes int64) {
	p.extractedEntries.Add(float64(entries))
	p.extractedBytes.Add(float64(bytes))
}

func (p *Prom) ObserveStage(paths int, bytes int64) {
	p.stagedPaths.Add(float64(paths))
	p.stagedBytes.Add(float64(bytes))
}

func (p *Prom) ObserveInstall(result string) {
	p.installs.WithLabelValues(result).Inc()
}

var _ Recorder = (*Prom)(nil)
