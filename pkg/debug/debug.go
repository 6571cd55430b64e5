// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package debug exposes client metrics and pprof over HTTP while a long
// transfer runs.
package debug

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeeDigitalWorks/storageclient/pkg/logger"
)

var (
	customHandlersMu sync.RWMutex
	customHandlers   = make(map[string]http.Handler)

	globalRegistry = newRegistry()
)

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RegisterHandler adds a handler to muxes built after the call
func RegisterHandler(pattern string, handler http.Handler) {
	customHandlersMu.Lock()
	defer customHandlersMu.Unlock()
	customHandlers[pattern] = handler
}

// Registry is where client packages register their metrics
func Registry() prometheus.Registerer {
	return globalRegistry
}

// Gatherer returns the registry for reading metrics back
func Gatherer() prometheus.Gatherer {
	return globalRegistry
}

func GetMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(globalRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	customHandlersMu.RLock()
	defer customHandlersMu.RUnlock()
	for pattern, handler := range customHandlers {
		mux.Handle(pattern, handler)
	}
	return mux
}

// Serve listens on addr until ctx ends. The returned channel yields the
// server's exit error once it has shut down.
func Serve(ctx context.Context, addr string) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	srv := &http.Server{
		Handler:           GetMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("debug server shutdown")
		}
	}()

	logger.Debug().Str("addr", ln.Addr().String()).Msg("debug server listening")
	return ln.Addr(), done, nil
}
