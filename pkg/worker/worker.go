package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kindlewood/studio/pkg/config"
	"github.com/kindlewood/studio/pkg/metrics"
	"github.com/kindlewood/studio/pkg/publications"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Worker runs the background upkeep the request path can't do itself. For
// now that's failing compilations left stuck in compiling by a request that
// died or timed out, so their owners can retry.
type Worker struct {
	config *config.Config
	log    logger.Logger

	publicationService *publications.Service

	shutdown chan struct{}
	done     chan struct{}
}

func New(cfg *config.Config, db *bun.DB) *Worker {
	return &Worker{
		config: cfg,
		log:    logger.New(),

		publicationService: publications.NewService(db),

		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start() {
	go w.reconcileLoop()
}

func (w *Worker) reconcileLoop() {
	timer := time.NewTimer(w.config.ReconcileInterval)

	for {
		select {
		case <-w.shutdown:
			timer.Stop()
			w.done <- struct{}{}
			return
		case <-timer.C:
			w.reconcile()
			timer.Reset(w.config.ReconcileInterval)
		}
	}
}

// reconcile runs one pass. Errors are logged and the next tick tries again.
func (w *Worker) reconcile() int {
	id, err := uuid.NewRandom()
	if err != nil {
		w.log.Err(err).Error("new uuid error")
		return 0
	}
	log := w.log.ID(id.String()).Root(logger.Data{"task": "reconcile_stale_compilations"})
	ctx := log.WithContext(context.Background())

	n, err := w.publicationService.ReconcileStale(ctx, w.config.StaleCompileAfter)
	if err != nil {
		log.Err(err).Error("reconcile error")
		return 0
	}
	if n > 0 {
		metrics.StaleCompilationsFailed(n)
		log.Info("reconciled stale compilations", logger.Data{"count": n})
	}
	return n
}

func (w *Worker) Shutdown() {
	close(w.shutdown)
	<-w.done
}
