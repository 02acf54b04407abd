package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/kindlewood/studio/pkg/blobstore"
	"github.com/kindlewood/studio/pkg/config"
	"github.com/kindlewood/studio/pkg/database"
	"github.com/kindlewood/studio/pkg/migrations"
	"github.com/kindlewood/studio/pkg/server"
	"github.com/kindlewood/studio/pkg/version"
	"github.com/kindlewood/studio/pkg/worker"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

// shutdownTimeout bounds how long in-flight requests (including a running
// compilation) get to finish.
const shutdownTimeout = 30 * time.Second

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting kindlewood studio", logger.Data{"version": version.String()})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	store, err := blobstore.NewFilesystemStore(cfg.StorageDir, cfg.PublicBaseURL+"/media")
	if err != nil {
		log.Err(err).Fatal("storage directory error")
	}
	log.Info("storage directory initialized", logger.Data{"path": store.Root()})

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	wrkr := worker.New(cfg, db)

	srv, err := server.New(cfg, db, store)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start()
	log.Info("worker started", logger.Data{"reconcile_interval": cfg.ReconcileInterval.String()})

	<-graceful
	log.Info("starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
