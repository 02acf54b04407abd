package publications

import (
	"context"
	"time"

	"github.com/kindlewood/studio/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// upsertTargets activates one child profile target per id. Existing rows are
// reactivated in place so their added_at survives.
func upsertTargets(ctx context.Context, idb bun.IDB, publicationID int, childProfileIDs []int, now time.Time) error {
	ids := dedupeIDs(childProfileIDs)
	if len(ids) == 0 {
		return nil
	}

	targets := make([]*models.PublicationTarget, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, &models.PublicationTarget{
			PublicationID: publicationID,
			TargetType:    models.TargetTypeChildProfile,
			TargetID:      id,
			IsActive:      true,
			AddedAt:       now,
		})
	}

	_, err := idb.NewInsert().
		Model(&targets).
		On("CONFLICT (publication_id, target_type, target_id) DO UPDATE").
		Set("is_active = TRUE").
		Set("removed_at = NULL").
		Returning("NULL").
		Exec(ctx)
	return errors.WithStack(err)
}

func deactivateTargets(ctx context.Context, idb bun.IDB, publicationID int, now time.Time) (int, error) {
	res, err := idb.NewUpdate().
		Model((*models.PublicationTarget)(nil)).
		Set("is_active = FALSE").
		Set("removed_at = ?", now).
		Where("publication_id = ?", publicationID).
		Where("is_active = TRUE").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	return int(n), errors.WithStack(err)
}

func (svc *Service) ListActiveTargets(ctx context.Context, publicationID int) ([]*models.PublicationTarget, error) {
	targets := make([]*models.PublicationTarget, 0)
	err := svc.db.NewSelect().
		Model(&targets).
		Where("pt.publication_id = ?", publicationID).
		Where("pt.is_active = TRUE").
		Order("pt.added_at ASC", "pt.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return targets, nil
}
