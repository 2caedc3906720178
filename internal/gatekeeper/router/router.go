// Package router wires the gatekeeper HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/biz"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/handler"
	gkmw "github.com/kart-io/gatekeeper/internal/gatekeeper/middleware"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/store"
	"github.com/kart-io/gatekeeper/pkg/middleware"
)

// Config carries the services and settings the router needs.
type Config struct {
	Access       *biz.AccessService
	Restrictions *biz.RestrictionService
	Audits       store.AuditStore
	JWTSecret    string

	// AdminRoles are the roles allowed to manage restrictions and read audits.
	AdminRoles []string
}

// New builds the gin engine with all gatekeeper routes registered.
func New(cfg Config) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminRoles := cfg.AdminRoles
	if len(adminRoles) == 0 {
		adminRoles = []string{"admin"}
	}

	accessHandler := handler.NewAccessHandler(cfg.Access)
	restrictionHandler := handler.NewRestrictionHandler(cfg.Restrictions)
	auditHandler := handler.NewAuditHandler(cfg.Audits)

	v1 := engine.Group("/v1")
	v1.Use(gkmw.Identity(cfg.JWTSecret))
	{
		access := v1.Group("/access")
		{
			access.POST("/check", accessHandler.Check)
			access.POST("/check-batch", accessHandler.CheckBatch)
			access.POST("/navigation", accessHandler.Navigation)
			access.POST("/content-check", accessHandler.ContentCheck)
			access.POST("/content-filter", accessHandler.ContentFilter)
		}

		restrictions := v1.Group("/restrictions")
		restrictions.Use(gkmw.RequireRole(adminRoles...))
		{
			restrictions.POST("/pages", restrictionHandler.CreatePage)
			restrictions.GET("/pages", restrictionHandler.ListPages)
			restrictions.GET("/pages/:id", restrictionHandler.GetPage)
			restrictions.PUT("/pages/:id", restrictionHandler.UpdatePage)
			restrictions.DELETE("/pages/:id", restrictionHandler.DeletePage)

			restrictions.POST("/content", restrictionHandler.CreateContent)
			restrictions.GET("/content", restrictionHandler.ListContent)
			restrictions.GET("/content/:id", restrictionHandler.GetContent)
			restrictions.PUT("/content/:id", restrictionHandler.UpdateContent)
			restrictions.DELETE("/content/:id", restrictionHandler.DeleteContent)
		}

		audits := v1.Group("/audits")
		audits.Use(gkmw.RequireRole(adminRoles...))
		{
			audits.GET("", auditHandler.List)
		}
	}

	logger.Info("HTTP routes registered")
	return engine
}
