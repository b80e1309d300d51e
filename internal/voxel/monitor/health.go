package monitor

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/banshee-data/voxel.paint/internal/voxel/pipeline"
)

// HealthServiceName is the gRPC health service name reported by HealthServer.
const HealthServiceName = "voxelscan.Sampling"

// HealthServer publishes the standard gRPC health protocol for the
// sampling session. The sampling service reports NOT_SERVING until the
// camera frame first becomes ready, then SERVING. It implements
// pipeline.TickObserver.
type HealthServer struct {
	addr   string
	health *health.Server
	ready  atomic.Bool

	mu       sync.Mutex
	server   *grpc.Server
	listener net.Listener
	wg       sync.WaitGroup
}

var _ pipeline.TickObserver = (*HealthServer)(nil)

// NewHealthServer creates a health server for addr. Nothing listens until
// Start is called.
func NewHealthServer(addr string) *HealthServer {
	hs := &HealthServer{addr: addr, health: health.NewServer()}
	hs.health.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

// ObserveTick flips the service to SERVING the first time a report shows
// the image source ready.
func (hs *HealthServer) ObserveTick(r pipeline.TickReport) {
	if !r.ImageReady || hs.ready.Swap(true) {
		return
	}
	hs.health.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)
	diagf("health: %s serving", HealthServiceName)
}

// Register adds the health service to an existing gRPC server.
func (hs *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, hs.health)
}

// Start listens on the configured address and serves in the background.
func (hs *HealthServer) Start() error {
	lis, err := net.Listen("tcp", hs.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	hs.Serve(lis)
	return nil
}

// Serve serves on lis in the background.
func (hs *HealthServer) Serve(lis net.Listener) {
	s := grpc.NewServer()
	hs.Register(s)

	hs.mu.Lock()
	hs.server = s
	hs.listener = lis
	hs.mu.Unlock()

	hs.wg.Add(1)
	go func() {
		defer hs.wg.Done()
		opsf("gRPC health server listening on %s", lis.Addr())
		if err := s.Serve(lis); err != nil {
			opsf("gRPC health server error: %v", err)
		}
	}()
}

// Stop marks every service NOT_SERVING and stops the server gracefully.
func (hs *HealthServer) Stop() {
	hs.health.Shutdown()

	hs.mu.Lock()
	s := hs.server
	hs.server = nil
	hs.mu.Unlock()

	if s != nil {
		s.GracefulStop()
	}
	hs.wg.Wait()
	diagf("gRPC health server stopped")
}
