package routes

import (
	"net/http"

	gql "github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-crm/pkg/database"
	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
	"github.com/shashiranjanraj/kashvi-crm/pkg/metrics"
	"github.com/shashiranjanraj/kashvi-crm/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-crm/pkg/response"
	"github.com/shashiranjanraj/kashvi-crm/pkg/router"
)

// Deps carries what the HTTP routes serve.
type Deps struct {
	Schema gql.Schema
	DB     *gorm.DB

	// RequireAuth guards /graphql with a bearer API token.
	RequireAuth bool
}

// Register mounts the CRM's HTTP surface on r.
func Register(r *router.Router, d Deps) {
	var guards []router.Middleware
	if d.RequireAuth {
		guards = append(guards, middleware.RequireToken)
	}

	r.Handle("/graphql", "graphql", graphql.Handler(d.Schema), guards...)
	r.Get("/health", "health", Health(d.DB))
	r.Get("/metrics", "metrics", metrics.Handler())
}

// Health reports database reachability; an unreachable database answers 503.
func Health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(db); err != nil {
			logger.WithCtx(r.Context()).Error("health: database ping failed", "error", err)
			response.ErrorWithData(w, http.StatusServiceUnavailable, "database unavailable",
				map[string]string{"database": "unavailable"})
			return
		}
		response.Success(w, map[string]string{"database": "ok"})
	}
}
