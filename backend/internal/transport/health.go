// Package transport exposes the gRPC health service of the server.
package transport

import (
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported by the server
const ServiceName = "orrery.BodyLoader"

// HealthServer reports NOT_SERVING until the first load session has drained
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	logger   *log.Logger
}

func NewHealthServer(logger *log.Logger) *HealthServer {
	if logger == nil {
		logger = log.Default()
	}
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	return &HealthServer{server: server, health: hs, logger: logger}
}

// Start listens on addr and serves in the background
func (h *HealthServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	h.listener = lis
	h.logger.Printf("[Health] gRPC health service listening on %s", lis.Addr())

	go func() {
		if err := h.server.Serve(lis); err != nil {
			h.logger.Printf("[Health] ERROR: gRPC server stopped: %v", err)
		}
	}()
	return nil
}

// Addr is the bound address, nil before Start
func (h *HealthServer) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

// SetServing flips both the overall and the loader status
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(ServiceName, status)
	h.health.SetServingStatus("", status)
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
