package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-crm/config"
	"github.com/shashiranjanraj/kashvi-crm/internal/server"
	"github.com/shashiranjanraj/kashvi-crm/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-crm/pkg/reqid"
)

func boot(t *testing.T) *server.App {
	t.Helper()
	dir := t.TempDir()
	config.Set("DB_DRIVER", "sqlite")
	config.Set("DATABASE_DSN", filepath.Join(dir, "crm.db"))
	config.Set("REDIS_ADDR", "127.0.0.1:1")
	config.Set("QUEUE_DRIVER", "memory")
	config.Set("STORAGE_LOCAL_ROOT", filepath.Join(dir, "storage"))
	config.Set("API_AUTH", "false")

	a, err := server.Boot(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestBoot(t *testing.T) {
	a := boot(t)

	require.NotNil(t, a.DB)
	require.NotNil(t, a.Queue)
	assert.Nil(t, a.Remote)

	names := make([]string, 0, len(a.Scheduler.Entries()))
	for _, e := range a.Scheduler.Entries() {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"heartbeat", "low-stock", "order-reminders", "report"}, names)

	_, ok := a.Job("low-stock")
	assert.True(t, ok)
	_, ok = a.Job("missing")
	assert.False(t, ok)
}

func TestHandler(t *testing.T) {
	a := boot(t)
	srv := httptest.NewServer(a.Handler(middleware.NewRateLimiter(2, time.Minute)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(reqid.Header))

	resp, err = http.Post(srv.URL+"/graphql", "application/json", strings.NewReader(`{"query":"{ hello }"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
