package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/ctxlog"
	"github.com/vk/godi/internal/report"
)

// healthHandler answers liveness probes.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// componentsHandler serves the components currently held by reg as a JSON dump.
func componentsHandler(runID, source string, reg *component.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dump := &report.Dump{RunID: runID, Sources: []report.Source{report.Snapshot(source, reg)}}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(dump); err != nil {
			ctxlog.FromContext(r.Context()).Error("Failed to encode components.", "error", err)
		}
	}
}

// newMux wires the inspection endpoints. Every request context carries the
// app logger.
func (a *App) newMux(runID, source string, reg *component.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/components", componentsHandler(runID, source, reg))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(ctxlog.WithLogger(r.Context(), a.logger)))
	})
}

// startHealthcheckServer runs the inspection server in the background. A
// port of zero disables it and returns nil.
func (a *App) startHealthcheckServer(port int, handler http.Handler) *http.Server {
	if port <= 0 {
		a.logger.Debug("Health check server not started: disabled")
		return nil
	}

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return srv
}

func (a *App) closeHealthcheckServer(srv *http.Server) error {
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down health check server...")
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	return nil
}
