// Package health exposes liveness and metrics endpoints for the bot process.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported for the pipeline.
const ServiceName = "onyx.Pipeline"

type Server struct {
	httpAddr string
	grpcAddr string
	log      *slog.Logger

	http   *http.Server
	grpc   *grpc.Server
	health *grpchealth.Server
	bound  string

	wg sync.WaitGroup
}

// New builds a Server. An empty grpcAddr disables the gRPC health service.
func New(httpAddr, grpcAddr string, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		httpAddr: httpAddr,
		grpcAddr: grpcAddr,
		log:      log.With("component", "health"),
		health:   grpchealth.NewServer(),
	}
	s.http = &http.Server{
		Addr:              httpAddr,
		Handler:           Handler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler serves "GET /" as a liveness probe and "/metrics" from gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start binds the listeners and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	li, err := lc.Listen(ctx, "tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", s.httpAddr, err)
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info("http health server listening", "addr", li.Addr().String())
		if err := s.http.Serve(li); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http health server failed", "err", err)
		}
	}()

	if s.grpcAddr == "" {
		return nil
	}
	gli, err := lc.Listen(ctx, "tcp", s.grpcAddr)
	if err != nil {
		_ = s.http.Close()
		return fmt.Errorf("listen grpc %s: %w", s.grpcAddr, err)
	}
	s.bound = gli.Addr().String()
	s.grpc = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetServing(true)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info("grpc health server listening", "addr", gli.Addr().String())
		if err := s.grpc.Serve(gli); err != nil {
			s.log.Error("grpc health server failed", "err", err)
		}
	}()
	return nil
}

// GRPCAddr is the bound gRPC address after Start, empty when gRPC is disabled.
func (s *Server) GRPCAddr() string { return s.bound }

// SetServing flips the gRPC health status for the pipeline and the server as a whole.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Shutdown stops both servers and waits for them to return.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()
	err := s.http.Shutdown(ctx)
	if s.grpc != nil {
		stopped := make(chan struct{})
		go func() {
			s.grpc.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.grpc.Stop()
		}
	}
	s.wg.Wait()
	return err
}
