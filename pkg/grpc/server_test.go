package grpc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/shashiranjanraj/kashvi-crm/pkg/grpc"
)

func healthStatus(t *testing.T, check grpc.Checker) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	srv, err := grpc.Start("127.0.0.1:0", check)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Stop(context.Background()) })

	conn, err := grpclib.NewClient(srv.Addr(), grpclib.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_Serving(t *testing.T) {
	got := healthStatus(t, func(context.Context) error { return nil })
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, got)
}

func TestHealth_NotServingWhenCheckFails(t *testing.T) {
	got := healthStatus(t, func(context.Context) error { return errors.New("db down") })
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, got)
}
