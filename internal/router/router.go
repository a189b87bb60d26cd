package router

import (
	"fmt"
	"strings"

	"github.com/atelier-next/internal/cache"
	"github.com/atelier-next/internal/config"
	adminhandlers "github.com/atelier-next/internal/http/handlers/admin"
	portalhandlers "github.com/atelier-next/internal/http/handlers/portal"
	"github.com/atelier-next/internal/logger"
	"github.com/atelier-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires middleware and the route table.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	portalHandler := portalhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "at"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")), portalHandler.Login)
		}

		// Staff routes. RBAC policies are keyed on the path below
		// /api/v1, so /me stays outside the policy check.
		authed := apiV1.Group("")
		authed.Use(StaffJWTAuthMiddleware(cfg.JWT.SecretKey, c.StaffRepo))
		authed.GET("/me", portalHandler.Me)

		staff := authed.Group("")
		staff.Use(StaffRBACMiddleware(c.AuthzService))
		{
			staff.POST("/profiles", portalHandler.CreateProfile)
			staff.GET("/profiles", portalHandler.ListProfiles)
			staff.GET("/profiles/:id", portalHandler.GetProfile)

			staff.POST("/orders", portalHandler.CreateOrder)
			staff.GET("/orders", portalHandler.ListOrders)
			staff.GET("/orders/by-order-no/:order_no", portalHandler.GetOrderByOrderNo)
			staff.GET("/orders/:id", portalHandler.GetOrder)
			staff.PUT("/orders/:id", portalHandler.EditOrder)
			staff.GET("/orders/:id/permissions", portalHandler.GetOrderPermissions)
			staff.POST("/orders/:id/cancel", portalHandler.CancelOrder)
			staff.POST("/orders/:id/exchange", portalHandler.ExchangeOrder)
			staff.POST("/orders/:id/return", portalHandler.ReturnOrder)
			staff.POST("/orders/:id/refund", portalHandler.RefundOrder)
			staff.POST("/orders/:id/deliver", portalHandler.DeliverOrder)

			admin := staff.Group("/admin")
			{
				admin.GET("/dashboard/overview", adminHandler.GetDashboardOverview)
				admin.POST("/orders/:id/revoke", adminHandler.RevokeOrder)

				admin.POST("/staff", adminHandler.CreateStaff)
				admin.GET("/staff", adminHandler.ListStaff)
				admin.GET("/staff/:id/roles", adminHandler.GetStaffRoles)
				admin.PUT("/staff/:id/roles", adminHandler.SetStaffRoles)
				admin.GET("/roles", adminHandler.ListRoles)
				admin.GET("/roles/:role/policies", adminHandler.GetRolePolicies)
				admin.POST("/policies", adminHandler.GrantRolePolicy)
				admin.DELETE("/policies", adminHandler.RevokeRolePolicy)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
