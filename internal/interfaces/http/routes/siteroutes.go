package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/interfaces/http/handlers"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/marketing"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

// SiteRouteConfig holds dependencies for the public marketing site.
type SiteRouteConfig struct {
	PageHandler   *marketing.PageHandler
	HealthHandler *handlers.HealthHandler
}

// SetupSiteRoutes configures the health check, the marketing pages and the 404 fallback.
func SetupSiteRoutes(engine *gin.Engine, cfg *SiteRouteConfig) {
	engine.GET("/health", cfg.HealthHandler.Check)

	engine.GET("/", cfg.PageHandler.Home)
	engine.GET("/about", cfg.PageHandler.About)
	engine.GET("/courses", cfg.PageHandler.Courses)
	engine.GET("/courses/:slug", cfg.PageHandler.Course)

	engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			utils.ErrorResponse(c, http.StatusNotFound, "route not found")
			return
		}
		cfg.PageHandler.NotFound(c)
	})
}
