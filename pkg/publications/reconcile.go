package publications

import (
	"context"
	"time"

	"github.com/kindlewood/studio/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const staleCompilationMessage = "Audio compilation timed out. Please try publishing again."

// ReconcileStale fails Spotify publications that have been compiling for
// longer than olderThan. A process that dies mid-compilation leaves its row
// compiling, which would otherwise block retries forever.
func (svc *Service) ReconcileStale(ctx context.Context, olderThan time.Duration) (int, error) {
	log := logger.FromContext(ctx)

	pubs := make([]*models.Publication, 0)
	err := svc.db.NewSelect().
		Model(&pubs).
		Where("pub.platform = ?", models.PlatformSpotify).
		Where("pub.status = ?", models.PublicationStatusCompiling).
		Scan(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	failed := 0
	for _, pub := range pubs {
		started := pub.UpdatedAt
		if pub.PublishRequestedAt != nil {
			started = *pub.PublishRequestedAt
		}
		if started.After(cutoff) {
			continue
		}
		if err := svc.MarkFailed(ctx, pub.ID, staleCompilationMessage); err != nil {
			// It finished or failed on its own since the select.
			log.Warn("stale publication changed before reconcile", logger.Data{"publication_id": pub.ID, "error": err.Error()})
			continue
		}
		log.Info("failed stale compilation", logger.Data{"publication_id": pub.ID, "project_id": pub.ProjectID})
		failed++
	}
	return failed, nil
}
