package spotify

import (
	"github.com/kindlewood/studio/pkg/auth"
	"github.com/kindlewood/studio/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the Spotify publish routes on the /projects group
// and the public podcast feed.
func RegisterRoutes(e *echo.Echo, projectsGroup *echo.Group, db *bun.DB, cfg *config.Config, compiler Compiler, authMiddleware *auth.Middleware) {
	h := &handler{
		spotifyService:    NewService(db, cfg, compiler),
		estimatedLiveTime: cfg.EstimatedLiveTime,
	}

	projectsGroup.POST("/:id/publish-spotify", h.publish, authMiddleware.Authenticate)
	projectsGroup.DELETE("/:id/publish-spotify", h.unpublish, authMiddleware.Authenticate)
	projectsGroup.POST("/:id/spotify-live", h.markLive, authMiddleware.Authenticate)
	// Polled by the companion app, so no auth.
	projectsGroup.GET("/:id/spotify-status", h.status)

	e.GET(feedPath, h.feed)
}
