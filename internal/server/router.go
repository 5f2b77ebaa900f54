// Package server exposes the ledger and relay pipeline over HTTP.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chaintab/chaintab/internal/auth"
	"github.com/chaintab/chaintab/internal/ledger"
	"github.com/chaintab/chaintab/internal/relay"
)

// Deps carries everything the router needs.
type Deps struct {
	Ledger        *ledger.Ledger
	Relay         *relay.Pipeline
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	AllowOrigins  []string
}

// New builds the gin engine with all routes and middleware attached.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), Metrics())

	if len(deps.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	attachRoutes(r, deps)
	return r
}

func attachRoutes(r *gin.Engine, deps Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := NewAuthHandlers(deps.Authenticator, deps.JWT)
	groupH := NewGroupHandlers(deps.Ledger)
	relayH := NewRelayHandlers(deps.Relay)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", authH.Register)
		v1.POST("/auth/login", authH.Login)

		v1.GET("/groups/:id", groupH.Get)
		v1.GET("/groups/:id/items", groupH.Items)

		// Relay is deliberately unauthenticated: anyone holding a valid
		// attested message may submit it; the authority is the gatekeeper.
		v1.POST("/relay", relayH.Relay)

		secured := v1.Group("", JWTMiddleware(deps.JWT))
		secured.POST("/groups", groupH.Create)
		secured.PUT("/groups/:id", groupH.Edit)
		secured.POST("/groups/:id/pay", groupH.Pay)
	}
}
