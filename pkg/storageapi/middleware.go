// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Middleware runs around the transport. Pre may rewrite or replace the
// request, Post the response. Either may be nil.
type Middleware struct {
	Name string
	Pre  func(ctx context.Context, req *Request) (*Request, error)
	Post func(ctx context.Context, resp *Response) (*Response, error)
}

// PipelineMetrics are the prometheus collectors a Pipeline reports to
type PipelineMetrics struct {
	stepCount    *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	errorCount   *prometheus.CounterVec
	abortedCount *prometheus.CounterVec
}

func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		stepCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storageclient_pipeline_step_count",
			Help: "Number of pipeline steps run",
		}, []string{"stage", "step"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storageclient_pipeline_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storageclient_pipeline_error_count",
			Help: "Number of errors returned by pipeline steps",
		}, []string{"stage", "step"}),
		abortedCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storageclient_pipeline_aborted_count",
			Help: "Number of pipelines aborted because the context ended",
		}, []string{"stage", "error"}),
	}
}

// Collectors returns every collector so callers can register them
func (m *PipelineMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.stepCount, m.stepDuration, m.errorCount, m.abortedCount}
}

// Register adds the collectors to reg
func (m *PipelineMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *PipelineMetrics) observe(stage, step string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.stepCount.WithLabelValues(stage, step).Inc()
	m.stepDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errorCount.WithLabelValues(stage, step).Inc()
	}
}

func (m *PipelineMetrics) aborted(stage string, err error) {
	if m == nil {
		return
	}
	m.abortedCount.WithLabelValues(stage, err.Error()).Inc()
}

// Pipeline runs pre steps in declared order, the transport, then post steps
// in declared order. The context is checked before every step.
type Pipeline struct {
	middleware []Middleware
	transport  Transport
	metrics    *PipelineMetrics
}

// NewPipeline returns a Pipeline. metrics may be nil.
func NewPipeline(transport Transport, metrics *PipelineMetrics, middleware ...Middleware) *Pipeline {
	return &Pipeline{
		middleware: middleware,
		transport:  transport,
		metrics:    metrics,
	}
}

func (p *Pipeline) abort(stage, step string, err error) error {
	p.metrics.aborted(stage, err)
	return &AbortedError{Stage: stage, Middleware: step, Err: err}
}

// Execute sends req and returns the response after all post steps. On error
// any received response has been closed.
func (p *Pipeline) Execute(ctx context.Context, req *Request) (*Response, error) {
	var err error
	for _, m := range p.middleware {
		if m.Pre == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, p.abort("pre", m.Name, ctxErr)
		}
		t := time.Now()
		req, err = m.Pre(ctx, req)
		p.metrics.observe("pre", m.Name, t, err)
		if err != nil {
			return nil, fmt.Errorf("middleware %s pre: %w", m.Name, err)
		}
		if req == nil {
			return nil, fmt.Errorf("middleware %s pre: returned no request", m.Name)
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, p.abort("send", "", ctxErr)
	}
	t := time.Now()
	resp, err := p.transport.Send(ctx, req)
	p.metrics.observe("send", "transport", t, err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, p.abort("send", "", ctxErr)
		}
		return nil, err
	}

	for _, m := range p.middleware {
		if m.Post == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			resp.Close()
			return nil, p.abort("post", m.Name, ctxErr)
		}
		t := time.Now()
		next, err := m.Post(ctx, resp)
		p.metrics.observe("post", m.Name, t, err)
		if err != nil {
			resp.Close()
			if next != nil {
				next.Close()
			}
			return nil, fmt.Errorf("middleware %s post: %w", m.Name, err)
		}
		if next == nil {
			resp.Close()
			return nil, fmt.Errorf("middleware %s post: returned no response", m.Name)
		}
		resp = next
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		resp.Close()
		return nil, p.abort("post", "", ctxErr)
	}
	return resp, nil
}
