package quiz

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the public quiz route. The mobile and
// Kids App clients read it cross-origin, so it's the only route with CORS.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		quizService: NewService(db),
	}

	cors := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	})

	g.GET("/:id/quiz", h.retrieve, cors)
	g.OPTIONS("/:id/quiz", h.preflight, cors)
}
