// Package server — служебный HTTP: healthcheck и метрики Prometheus.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Pinger — зависимость, которую проверяет /healthz (пул БД).
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status    string `json:"status"`
	Storage   string `json:"storage"`
	Timestamp string `json:"timestamp"`
}

// NewRouter собирает роутер. pinger может быть nil (STORAGE_DRIVER=memory).
func NewRouter(pinger Pinger, gatherer prometheus.Gatherer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		resp := healthResponse{Status: "ok", Storage: "memory", Timestamp: time.Now().UTC().Format(time.RFC3339)}
		status := http.StatusOK
		if pinger != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			resp.Storage = "ok"
			if err := pinger.Ping(ctx); err != nil {
				log.WithError(err).Warn("healthcheck: хранилище недоступно")
				resp.Status, resp.Storage = "degraded", "unavailable"
				status = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// Server — http.Server с остановкой по контексту.
type Server struct {
	srv *http.Server
}

// New создаёт сервер на addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run слушает addr до отмены ctx, затем корректно останавливается.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.srv.Addr).Info("HTTP сервер запущен")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("HTTP сервер остановлен")
	return nil
}
