package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kindlewood/studio/pkg/audiocompile"
	"github.com/kindlewood/studio/pkg/auth"
	"github.com/kindlewood/studio/pkg/binder"
	"github.com/kindlewood/studio/pkg/blobstore"
	"github.com/kindlewood/studio/pkg/childprofiles"
	"github.com/kindlewood/studio/pkg/config"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/kidsapp"
	"github.com/kindlewood/studio/pkg/metrics"
	"github.com/kindlewood/studio/pkg/projects"
	"github.com/kindlewood/studio/pkg/quiz"
	"github.com/kindlewood/studio/pkg/spotify"
	"github.com/kindlewood/studio/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, store *blobstore.FilesystemStore) (*http.Server, error) {
	e, err := newEcho(cfg, db, store)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, store *blobstore.FilesystemStore) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())

	health.RegisterRoutes(e)
	metrics.RegisterRoutes(e)

	// Compiled audiobooks and narration are served from the blob store.
	e.Static("/media", store.Root())

	authMiddleware := auth.RegisterRoutes(e, db, cfg.JWTSecret)

	childProfilesGroup := e.Group("/child-profiles")
	childprofiles.RegisterRoutesWithGroup(childProfilesGroup, db, authMiddleware)

	// Project routes authenticate per route: the publish status and quiz
	// reads are public for the companion apps.
	projectsGroup := e.Group("/projects")
	projects.RegisterRoutesWithGroup(projectsGroup, db, authMiddleware)
	quiz.RegisterRoutesWithGroup(projectsGroup, db)
	kidsapp.RegisterRoutesWithGroup(projectsGroup, db, authMiddleware)

	compiler := audiocompile.NewCompiler(db, store, audiocompile.NewFetcher(store, cfg.SegmentFetchTimeout))
	spotify.RegisterRoutes(e, projectsGroup, db, cfg, compiler, authMiddleware)

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db, cfg.JWTSecret)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
