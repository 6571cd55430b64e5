// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingMiddleware(name string, trace *[]string) Middleware {
	return Middleware{
		Name: name,
		Pre: func(_ context.Context, req *Request) (*Request, error) {
			*trace = append(*trace, "pre:"+name)
			req.Header.Add("X-Trace", name)
			return req, nil
		},
		Post: func(_ context.Context, resp *Response) (*Response, error) {
			*trace = append(*trace, "post:"+name)
			return resp, nil
		},
	}
}

func TestPipelineOrder(t *testing.T) {
	t.Parallel()

	var trace []string
	tr := TransportFunc(func(_ context.Context, req *Request) (*Response, error) {
		trace = append(trace, "send")
		assert.Equal(t, []string{"a", "b"}, req.Header.Values("X-Trace"))
		resp, _ := newTestResponse(http.StatusOK, "", "")
		return resp, nil
	})

	p := NewPipeline(tr, nil, recordingMiddleware("a", &trace), Middleware{Name: "noop"}, recordingMiddleware("b", &trace))
	resp, err := p.Execute(context.Background(), newRequest(testServerURL, "/files", http.MethodGet))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, []string{"pre:a", "pre:b", "send", "post:a", "post:b"}, trace)
}

func TestPipelineCancelledBeforeSend(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var trace []string
	cancelling := Middleware{
		Name: "cancel",
		Pre: func(_ context.Context, req *Request) (*Request, error) {
			trace = append(trace, "pre:cancel")
			cancel()
			return req, nil
		},
	}
	tr := &countingTransport{}

	p := NewPipeline(tr, nil, cancelling, recordingMiddleware("after", &trace))
	resp, err := p.Execute(ctx, newRequest(testServerURL, "/files", http.MethodGet))
	require.Error(t, err)
	assert.Nil(t, resp)

	var aborted *AbortedError
	require.True(t, errors.As(err, &aborted))
	assert.Equal(t, "pre", aborted.Stage)
	assert.Equal(t, "after", aborted.Middleware)
	assert.True(t, errors.Is(err, ErrAborted))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"pre:cancel"}, trace)
	assert.Zero(t, tr.calls.Load())
}

func TestPipelineCancelledAfterSendClosesBody(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var body *trackingBody
	tr := TransportFunc(func(context.Context, *Request) (*Response, error) {
		var resp *Response
		resp, body = newTestResponse(http.StatusOK, MediaTypeJSON, `{}`)
		cancel()
		return resp, nil
	})
	var trace []string

	p := NewPipeline(tr, nil, recordingMiddleware("m", &trace))
	_, err := p.Execute(ctx, newRequest(testServerURL, "/files", http.MethodGet))

	var aborted *AbortedError
	require.True(t, errors.As(err, &aborted))
	assert.Equal(t, "post", aborted.Stage)
	assert.Equal(t, []string{"pre:m"}, trace)
	assert.True(t, body.closed)
}

func TestPipelineStepErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	t.Run("pre", func(t *testing.T) {
		t.Parallel()
		tr := &countingTransport{}
		p := NewPipeline(tr, nil, Middleware{
			Name: "bad",
			Pre:  func(context.Context, *Request) (*Request, error) { return nil, boom },
		})
		_, err := p.Execute(context.Background(), newRequest(testServerURL, "/", http.MethodGet))
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, tr.calls.Load())
	})

	t.Run("post", func(t *testing.T) {
		t.Parallel()
		var body *trackingBody
		tr := TransportFunc(func(context.Context, *Request) (*Response, error) {
			var resp *Response
			resp, body = newTestResponse(http.StatusOK, "", "x")
			return resp, nil
		})
		p := NewPipeline(tr, nil, Middleware{
			Name: "bad",
			Post: func(context.Context, *Response) (*Response, error) { return nil, boom },
		})
		_, err := p.Execute(context.Background(), newRequest(testServerURL, "/", http.MethodGet))
		assert.ErrorIs(t, err, boom)
		assert.True(t, body.closed)
	})

	t.Run("transport", func(t *testing.T) {
		t.Parallel()
		tr := TransportFunc(func(context.Context, *Request) (*Response, error) { return nil, boom })
		p := NewPipeline(tr, nil)
		_, err := p.Execute(context.Background(), newRequest(testServerURL, "/", http.MethodGet))
		assert.ErrorIs(t, err, boom)
		var aborted *AbortedError
		assert.False(t, errors.As(err, &aborted))
	})
}

func TestPipelineMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := NewPipelineMetrics()
	require.NoError(t, metrics.Register(reg))

	var trace []string
	p := NewPipeline(&countingTransport{}, metrics, recordingMiddleware("a", &trace))
	for i := 0; i < 3; i++ {
		_, err := p.Execute(context.Background(), newRequest(testServerURL, "/", http.MethodGet))
		require.NoError(t, err)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "storageclient_pipeline_step_count" {
			continue
		}
		for _, m := range fam.GetMetric() {
			var stage, step string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "stage":
					stage = l.GetValue()
				case "step":
					step = l.GetValue()
				}
			}
			counts[stage+"/"+step] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"pre/a": 3, "send/transport": 3, "post/a": 3}, counts)
}

func TestBuiltinMiddleware(t *testing.T) {
	t.Parallel()

	tr := &countingTransport{}
	p := NewPipeline(tr, nil, RequestIDMiddleware(), UserAgentMiddleware("storageclient/test"), LoggingMiddleware())

	_, err := p.Execute(context.Background(), newRequest(testServerURL, "/", http.MethodGet))
	require.NoError(t, err)
	first := tr.last.Load()
	assert.Len(t, first.Header.Get(HeaderRequestID), 36)
	assert.Equal(t, "storageclient/test", first.Header.Get(HeaderUserAgent))

	req := newRequest(testServerURL, "/", http.MethodGet)
	req.SetHeaderParam(HeaderRequestID, "fixed")
	req.SetHeaderParam(HeaderUserAgent, "custom")
	_, err = p.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fixed", tr.last.Load().Header.Get(HeaderRequestID))
	assert.Equal(t, "custom", tr.last.Load().Header.Get(HeaderUserAgent))
}
