package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/app/routes"
	"github.com/shashiranjanraj/kashvi-crm/app/schema"
	"github.com/shashiranjanraj/kashvi-crm/app/services"
	"github.com/shashiranjanraj/kashvi-crm/config"
	"github.com/shashiranjanraj/kashvi-crm/pkg/auth"
	"github.com/shashiranjanraj/kashvi-crm/pkg/database"
	"github.com/shashiranjanraj/kashvi-crm/pkg/router"
	"github.com/shashiranjanraj/kashvi-crm/pkg/testkit"
)

func newServer(t *testing.T, requireAuth bool) (*httptest.Server, *gorm.DB) {
	t.Helper()
	db := testkit.NewDB(t)
	s, err := schema.New(services.NewCRM(repositories.NewGormStore(db)), 100)
	require.NoError(t, err)

	r := router.New()
	routes.Register(r, routes.Deps{Schema: s, DB: db, RequireAuth: requireAuth})
	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	srv, db := newServer(t, false)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{
		"status": float64(200),
		"data":   map[string]interface{}{"database": "ok"},
	}, decode(t, resp))

	require.NoError(t, database.Close(db))
	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, map[string]interface{}{"database": "unavailable"}, body["data"])
}

func TestGraphQL(t *testing.T) {
	srv, _ := newServer(t, false)

	resp, err := http.Post(srv.URL+"/graphql", "application/json", strings.NewReader(`{"query":"{ hello }"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"hello": "Hello, GraphQL!"}, decode(t, resp)["data"])

	resp, err = http.Get(srv.URL + "/graphql?query=%7B%20hello%20%7D")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestGraphQL_RequiresToken(t *testing.T) {
	config.Set("JWT_SECRET", "routes-secret")
	srv, _ := newServer(t, true)

	resp, err := http.Post(srv.URL+"/graphql", "application/json", strings.NewReader(`{"query":"{ hello }"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	token, err := auth.IssueToken("reporting", "graphql", time.Hour)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// health stays open
	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestMetrics(t *testing.T) {
	srv, _ := newServer(t, false)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
