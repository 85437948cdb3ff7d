package api

import (
	"time" // CORS max age

	"networth/internal/metrics"    // Prometheus collectors
	"networth/internal/middleware" // Custom middleware

	"github.com/gin-contrib/cors" // CORS middleware
	"github.com/gin-gonic/gin"    // Gin web framework
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	CORSOrigins  []string               // Allowed origins, empty disables CORS
	HealthChecks map[string]HealthCheck // Dependencies checked by /healthz
}

// NewRouter builds the HTTP surface of the service
func NewRouter(svc Service, auth middleware.Authenticator, opts RouterOptions) *gin.Engine {
	r := gin.Default() // Gin router instance with logger and recovery

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", middleware.APIKeyHeader, middleware.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(middleware.RequestID(), middleware.HTTPMetrics())

	metrics.Init()
	r.GET("/metrics", gin.WrapH(metrics.Handler())) // Prometheus endpoint
	r.GET("/healthz", HealthHandler(opts.HealthChecks))

	requireKey := middleware.RequireAPIKey()
	pathUser := middleware.UserFromPath(auth, newErrorResponse)

	// User routes
	r.POST("/users/", CreateUserHandler(svc))                                     // Registration endpoint
	r.PUT("/users/", requireKey, RenameUserHandler(svc))                          // Rename endpoint
	r.DELETE("/users/:name", requireKey, pathUser, DeleteUserHandler(svc))        // Delete endpoint
	r.GET("/users/:name/networth", requireKey, pathUser, GetNetWorthHandler(svc)) // Net worth endpoint
	r.GET("/users/:name/balances", requireKey, pathUser, GetBalancesHandler(svc)) // Balances endpoint

	// Balance routes
	r.POST("/balances/", requireKey, UpdateBalanceHandler(svc)) // Balance update endpoint

	return r
}
