package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/kashvi-crm/pkg/bind"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/response"
)

// Handler serves GraphQL over HTTP: POST with a JSON body, or GET with
// query, variables and operationName in the URL.
func Handler(schema graphql.Schema) http.HandlerFunc {
	client := NewLocalClient(schema)

	return func(w http.ResponseWriter, r *http.Request) {
		var req Request

		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			req.Query = q.Get("query")
			req.OperationName = q.Get("operationName")
			if v := q.Get("variables"); v != "" {
				if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
					response.Error(w, http.StatusBadRequest, "invalid variables: "+err.Error())
					return
				}
			}
			if req.Query == "" {
				response.ValidationError(w, map[string]string{"query": "query is required"})
				return
			}
		case http.MethodPost:
			errs, err := bind.JSON(w, r, &req)
			if err != nil {
				response.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			if errs != nil {
				response.ValidationError(w, errs)
				return
			}
		default:
			w.Header().Set("Allow", "GET, POST")
			response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		res := client.do(r.Context(), req)
		if res.HasErrors() {
			logger.WithCtx(r.Context()).Debug("graphql: errors", "operation", req.OperationName, "errors", len(res.Errors))
		}
		response.JSON(w, http.StatusOK, res)
	}
}
