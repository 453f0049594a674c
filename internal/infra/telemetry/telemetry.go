package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bert0h-dev/menvitta-backend/internal/infra/config"
)

// Provider holds the Prometheus collectors shared across the service.
type Provider struct {
	auditRecorded      prometheus.Counter
	auditDropped       prometheus.Counter
	auditWriteFailures prometheus.Counter
}

// Attach registers the service-level collectors and returns a provider handle.
func Attach(cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &Provider{
		auditRecorded: newCounter(prometheus.CounterOpts{
			Namespace: "menvitta",
			Subsystem: "audit",
			Name:      "records_total",
			Help:      "Audit records accepted for asynchronous persistence",
		}),
		auditDropped: newCounter(prometheus.CounterOpts{
			Namespace: "menvitta",
			Subsystem: "audit",
			Name:      "dropped_total",
			Help:      "Audit records dropped because the queue was full",
		}),
		auditWriteFailures: newCounter(prometheus.CounterOpts{
			Namespace: "menvitta",
			Subsystem: "audit",
			Name:      "write_failures_total",
			Help:      "Audit records that failed to persist",
		}),
	}, nil
}

// Repeated Attach calls (tests) reuse the already registered collector.
func newCounter(opts prometheus.CounterOpts) prometheus.Counter {
	counter := prometheus.NewCounter(opts)
	if err := prometheus.Register(counter); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
	}
	return counter
}

// AuditRecorded counts audit entries accepted by the recorder.
func (p *Provider) AuditRecorded() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.auditRecorded
}

// AuditDropped counts audit entries rejected by a full queue.
func (p *Provider) AuditDropped() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.auditDropped
}

// AuditWriteFailures counts audit entries that failed to persist.
func (p *Provider) AuditWriteFailures() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.auditWriteFailures
}
