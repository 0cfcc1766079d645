package bind_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-crm/config"
	"github.com/shashiranjanraj/kashvi-crm/pkg/bind"
)

type graphqlBody struct {
	Query     string                 `json:"query" validate:"required"`
	Variables map[string]interface{} `json:"variables"`
}

func TestJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ hello }","variables":{"first":2}}`))
	var body graphqlBody

	errs, err := bind.JSON(httptest.NewRecorder(), r, &body)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, "{ hello }", body.Query)
	assert.EqualValues(t, 2, body.Variables["first"])
}

func TestJSON_ValidationErrors(t *testing.T) {
	r := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"variables":{}}`))

	errs, err := bind.JSON(httptest.NewRecorder(), r, &graphqlBody{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"query": "query is required"}, errs)
}

func TestJSON_Malformed(t *testing.T) {
	r := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":`))

	_, err := bind.JSON(httptest.NewRecorder(), r, &graphqlBody{})
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestJSON_TooLarge(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	r := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ allCustomers { totalCount } }"}`))
	_, err := bind.JSON(httptest.NewRecorder(), r, &graphqlBody{})
	assert.ErrorContains(t, err, "too large (max 16 bytes)")
}
