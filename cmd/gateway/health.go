package main

import (
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// engineService is the health service name that tracks whether ffmpeg has loaded.
const engineService = "verbatim.Engine"

// healthServer exposes the standard gRPC health protocol. The overall service is SERVING
// from startup since the engine loads lazily on the first video; engineService reports
// whether that load has happened.
type healthServer struct {
	srv    *grpc.Server
	health *health.Server
	log    *logrus.Entry
}

func newHealthServer(logger *logrus.Logger) *healthServer {
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(engineService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &healthServer{srv: srv, health: hs, log: logger.WithField("component", "grpc")}
}

func (h *healthServer) reportEngine(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(engineService, status)
}

func (h *healthServer) serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return h.srv.Serve(lis)
}

func (h *healthServer) stop() {
	h.health.Shutdown()
	h.srv.GracefulStop()
	h.log.Info("gRPC health service stopped")
}
