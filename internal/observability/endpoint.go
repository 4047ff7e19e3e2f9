package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrisense/cropsentry-go/internal/logging"
)

// Endpoint serves the pipeline metrics over HTTP for debugging. On a
// deployed node this stays disabled to save power.
type Endpoint struct {
	server *http.Server
}

// NewEndpoint creates a metrics endpoint on the given listen address.
func NewEndpoint(listen string, metrics *Metrics) *Endpoint {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	return &Endpoint{
		server: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start runs the endpoint until the context is cancelled.
func (e *Endpoint) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.server.Shutdown(shutdownCtx)
	}()

	go func() {
		logging.Info("metrics endpoint listening", "address", e.server.Addr)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics endpoint failed", "error", err)
		}
	}()
}
