// Command healthcheck queries the gRPC health service of the notes service and
// exits non-zero unless it reports SERVING. The target may be a plain address
// or a Consul URL such as consul://127.0.0.1:8500/notes-service?healthy=true.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/mbobakov/grpc-consul-resolver"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	target := flag.String("target", "localhost:50051", "gRPC address or consul:// URL")
	service := flag.String("service", "notes-service", "service name to check, empty for the whole server")
	timeout := flag.Duration("timeout", 3*time.Second, "overall deadline")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status, err := check(ctx, *target, *service)
	if err != nil {
		fmt.Fprintln(os.Stderr, "health check failed:", err)
		cancel()
		os.Exit(1)
	}

	fmt.Println(status)
	if status != grpc_health_v1.HealthCheckResponse_SERVING {
		cancel()
		os.Exit(1)
	}
}

func check(
	ctx context.Context,
	target, service string,
) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy":"round_robin"}`),
	)
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	defer conn.Close()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}

	return resp.GetStatus(), nil
}
