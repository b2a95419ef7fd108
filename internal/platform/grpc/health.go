package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const healthProbeTimeout = time.Second

// WaitForHealth blocks until the gRPC health check reports SERVING or ctx ends.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	healthClient := grpc_health_v1.NewHealthClient(conn)
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second

	check := func() (struct{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		defer cancel()
		resp, err := healthClient.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		if err != nil {
			return struct{}{}, err
		}
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			return struct{}{}, fmt.Errorf("status %s", resp.GetStatus())
		}
		return struct{}{}, nil
	}
	notify := func(err error, next time.Duration) {
		if logf != nil {
			logf("waiting for gRPC health (retry in %s): %v", next, err)
		}
	}

	if _, err := backoff.Retry(ctx, check,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait for gRPC health: %w", ctxErr)
		}
		return fmt.Errorf("wait for gRPC health: %w", err)
	}
	if logf != nil {
		logf("gRPC health check is SERVING")
	}
	return nil
}
