package publications

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/kindlewood/studio/pkg/projects"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// ownedProject restricts a publications query to projects owned by the bound
// user id. It's part of every write so that ownership and the write are one
// statement.
const ownedProject = "project_id IN (SELECT id FROM projects WHERE user_id = ?)"

type Service struct {
	db             *bun.DB
	projectService *projects.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:             db,
		projectService: projects.NewService(db),
	}
}

func retrieve(ctx context.Context, idb bun.IDB, where func(*bun.SelectQuery) *bun.SelectQuery) (*models.Publication, error) {
	pub := &models.Publication{}
	err := where(idb.NewSelect().Model(pub)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Publication")
		}
		return nil, errors.WithStack(err)
	}
	return pub, nil
}

func (svc *Service) RetrieveByID(ctx context.Context, id int) (*models.Publication, error) {
	return retrieve(ctx, svc.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pub.id = ?", id)
	})
}

// Retrieve returns the project's publication on platform. It doesn't check
// ownership; the status endpoints that use it are public.
func (svc *Service) Retrieve(ctx context.Context, projectID int, platform string) (*models.Publication, error) {
	return retrieve(ctx, svc.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pub.project_id = ?", projectID).Where("pub.platform = ?", platform)
	})
}

func conflictDetails(pub *models.Publication) map[string]interface{} {
	return map[string]interface{}{
		"publication_id":     pub.ID,
		"status":             pub.Status,
		"guid":               pub.GUID,
		"external_url":       pub.ExternalURL,
		"compiled_audio_url": pub.CompiledAudioURL,
	}
}

// BeginCompilation claims the project's Spotify publication for a new
// compilation and returns it in the compiling state.
//
// A first publish inserts the row; the (project_id, platform) unique index
// lets only one of two racing inserts through. A retry of a failed row flips
// it back to compiling with an UPDATE guarded by the status that was read, so
// two racing retries can't both win. The row keeps its id and guid across
// retries; the previous attempt's compiled audio is cleared. Rows that are
// compiling, published, live or unpublished are rejected with a conflict.
func (svc *Service) BeginCompilation(ctx context.Context, principal models.Principal, projectID int) (*models.Publication, error) {
	project, err := svc.projectService.RetrieveOwnedProject(ctx, principal, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	now := time.Now().UTC()
	pub := &models.Publication{
		CreatedAt:          now,
		UpdatedAt:          now,
		ProjectID:          project.ID,
		Platform:           models.PlatformSpotify,
		GUID:               uuid.NewString(),
		Status:             models.PublicationStatusCompiling,
		Title:              project.Title,
		Description:        project.Description,
		CoverImageURL:      project.CoverImageURL,
		PublishRequestedAt: &now,
	}
	res, err := svc.db.NewInsert().
		Model(pub).
		On("CONFLICT (project_id, platform) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, errors.WithStack(err)
	} else if n == 1 {
		return svc.Retrieve(ctx, project.ID, models.PlatformSpotify)
	}

	existing, err := svc.Retrieve(ctx, project.ID, models.PlatformSpotify)
	if err != nil {
		return nil, err
	}

	switch existing.Status {
	case models.PublicationStatusCompiling:
		return nil, errcodes.ConflictWithDetails("Publishing is already in progress for this story.", conflictDetails(existing))
	case models.PublicationStatusPublished, models.PublicationStatusLive:
		return nil, errcodes.ConflictWithDetails("This story is already published to Spotify.", conflictDetails(existing))
	case models.PublicationStatusUnpublished:
		return nil, errcodes.ConflictWithDetails("This story was removed from Spotify and can't be published again.", conflictDetails(existing))
	}
	if !CanTransition(models.PlatformSpotify, existing.Status, models.PublicationStatusCompiling) {
		return nil, errcodes.ConflictWithDetails("This story can't be published right now.", conflictDetails(existing))
	}

	res, err = svc.db.NewUpdate().
		Model((*models.Publication)(nil)).
		Set("status = ?", models.PublicationStatusCompiling).
		Set("error_message = NULL").
		Set("compiled_audio_url = NULL").
		Set("compiled_audio_duration_seconds = NULL").
		Set("compiled_audio_file_size = NULL").
		Set("compiled_at = NULL").
		Set("title = ?", project.Title).
		Set("description = ?", project.Description).
		Set("cover_image_url = ?", project.CoverImageURL).
		Set("publish_requested_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", existing.ID).
		Where("status = ?", existing.Status).
		Where(ownedProject, principal.UserID).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := expectOne(res, "Publishing is already in progress for this story."); err != nil {
		return nil, err
	}

	return svc.RetrieveByID(ctx, existing.ID)
}

func expectOne(res sql.Result, conflictMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errcodes.Conflict(conflictMsg)
	}
	return nil
}

// RecordCompilation stores the compiled audiobook on a compiling
// publication.
func (svc *Service) RecordCompilation(ctx context.Context, id int, audioURL string, duration time.Duration, size int64) error {
	now := time.Now().UTC()
	seconds := duration.Seconds()
	res, err := svc.db.NewUpdate().
		Model((*models.Publication)(nil)).
		Set("compiled_audio_url = ?", audioURL).
		Set("compiled_audio_duration_seconds = ?", seconds).
		Set("compiled_audio_file_size = ?", size).
		Set("compiled_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", models.PublicationStatusCompiling).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	return expectOne(res, "Publication is no longer compiling.")
}

// MarkPublished moves a compiled publication into the feed.
func (svc *Service) MarkPublished(ctx context.Context, id int) error {
	now := time.Now().UTC()
	res, err := svc.db.NewUpdate().
		Model((*models.Publication)(nil)).
		Set("status = ?", models.PublicationStatusPublished).
		Set("error_message = NULL").
		Set("published_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status IN (?)", bun.In(sourcesOf(models.PlatformSpotify, models.PublicationStatusPublished))).
		Where("compiled_audio_url IS NOT NULL").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	return expectOne(res, "Publication is no longer compiling.")
}

// MarkFailed records why a compilation failed. The message is shown to the
// user by the status endpoint.
func (svc *Service) MarkFailed(ctx context.Context, id int, message string) error {
	now := time.Now().UTC()
	res, err := svc.db.NewUpdate().
		Model((*models.Publication)(nil)).
		Set("status = ?", models.PublicationStatusFailed).
		Set("error_message = ?", message).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status IN (?)", bun.In(sourcesOf(models.PlatformSpotify, models.PublicationStatusFailed))).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	return expectOne(res, "Publication is no longer compiling.")
}

// MarkLive records that Spotify has picked the episode up. externalURL, when
// given, replaces the stored episode URL.
func (svc *Service) MarkLive(ctx context.Context, principal models.Principal, projectID int, externalURL *string) (*models.Publication, error) {
	now := time.Now().UTC()
	q := svc.db.NewUpdate().
		Model((*models.Publication)(nil)).
		Set("status = ?", models.PublicationStatusLive).
		Set("live_at = ?", now).
		Set("updated_at = ?", now)
	if externalURL != nil {
		q = q.Set("external_url = ?", *externalURL)
	}
	res, err := q.
		Where("project_id = ?", projectID).
		Where("platform = ?", models.PlatformSpotify).
		Where("status IN (?)", bun.In(sourcesOf(models.PlatformSpotify, models.PublicationStatusLive))).
		Where(ownedProject, principal.UserID).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pub, err := svc.retrieveOwned(ctx, svc.db, principal, projectID, models.PlatformSpotify)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, errors.WithStack(err)
	} else if n == 0 {
		return nil, errcodes.ConflictWithDetails("Only stories in the Spotify feed can be marked live.", conflictDetails(pub))
	}
	return pub, nil
}

func (svc *Service) retrieveOwned(ctx context.Context, idb bun.IDB, principal models.Principal, projectID int, platform string) (*models.Publication, error) {
	return retrieve(ctx, idb, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("pub.project_id = ?", projectID).
			Where("pub.platform = ?", platform).
			Where("pub."+ownedProject, principal.UserID)
	})
}

// Unpublish takes a published or live publication down. Rows are kept; the
// Kids App publication's targets are deactivated in the same transaction.
func (svc *Service) Unpublish(ctx context.Context, principal models.Principal, projectID int, platform string) (*models.Publication, error) {
	var id int
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		pub, err := svc.retrieveOwned(ctx, tx, principal, projectID, platform)
		if err != nil {
			return err
		}
		id = pub.ID

		if !CanTransition(platform, pub.Status, models.PublicationStatusUnpublished) {
			return errcodes.ConflictWithDetails("This story is not currently published.", conflictDetails(pub))
		}

		now := time.Now().UTC()
		res, err := tx.NewUpdate().
			Model((*models.Publication)(nil)).
			Set("status = ?", models.PublicationStatusUnpublished).
			Set("unpublished_at = ?", now).
			Set("updated_at = ?", now).
			Where("id = ?", pub.ID).
			Where("status = ?", pub.Status).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := expectOne(res, "This story's publication changed. Please try again."); err != nil {
			return err
		}

		_, err = deactivateTargets(ctx, tx, pub.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveByID(ctx, id)
}

type KidsAppOptions struct {
	Category        *string
	ChildProfileIDs []int
}

// UpsertKidsAppPublication upserts the project's Kids App publication as live and
// upserts one target per child profile. Re-publishing updates the same row
// and reactivates targets that were removed. Targets not named this time are
// left alone. Child profile ownership is the caller's to verify.
func (svc *Service) UpsertKidsAppPublication(ctx context.Context, principal models.Principal, projectID int, opts KidsAppOptions) (*models.Publication, []*models.PublicationTarget, error) {
	project, err := svc.projectService.RetrieveOwnedProject(ctx, principal, projectID)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	var pubID int
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		pub := &models.Publication{
			CreatedAt:     now,
			UpdatedAt:     now,
			ProjectID:     project.ID,
			Platform:      models.PlatformKindlewoodApp,
			GUID:          uuid.NewString(),
			Status:        models.PublicationStatusLive,
			Category:      opts.Category,
			Title:         project.Title,
			Description:   project.Description,
			CoverImageURL: project.CoverImageURL,
			PublishedAt:   &now,
			LiveAt:        &now,
		}
		res, err := tx.NewInsert().
			Model(pub).
			On("CONFLICT (project_id, platform) DO UPDATE").
			Set("status = EXCLUDED.status").
			Set("category = EXCLUDED.category").
			Set("title = EXCLUDED.title").
			Set("description = EXCLUDED.description").
			Set("cover_image_url = EXCLUDED.cover_image_url").
			Set("error_message = NULL").
			Set("published_at = EXCLUDED.published_at").
			Set("live_at = EXCLUDED.live_at").
			Set("unpublished_at = NULL").
			Set("updated_at = EXCLUDED.updated_at").
			Where("status IN (?)", bun.In(sourcesOf(models.PlatformKindlewoodApp, models.PublicationStatusLive))).
			Returning("NULL").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := expectOne(res, "This story can't be published to the Kids App right now."); err != nil {
			return err
		}

		stored, err := retrieve(ctx, tx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("pub.project_id = ?", project.ID).Where("pub.platform = ?", models.PlatformKindlewoodApp)
		})
		if err != nil {
			return err
		}
		pubID = stored.ID

		return upsertTargets(ctx, tx, stored.ID, opts.ChildProfileIDs, now)
	})
	if err != nil {
		return nil, nil, err
	}

	pub, err := svc.RetrieveByID(ctx, pubID)
	if err != nil {
		return nil, nil, err
	}
	targets, err := svc.ListActiveTargets(ctx, pubID)
	if err != nil {
		return nil, nil, err
	}
	return pub, targets, nil
}

// ListFeedPublications returns the Spotify publications that belong in the
// RSS feed, newest first.
func (svc *Service) ListFeedPublications(ctx context.Context) ([]*models.Publication, error) {
	pubs := make([]*models.Publication, 0)
	err := svc.db.NewSelect().
		Model(&pubs).
		Where("pub.platform = ?", models.PlatformSpotify).
		Where("pub.status IN (?)", bun.In([]string{models.PublicationStatusPublished, models.PublicationStatusLive})).
		Where("pub.compiled_audio_url IS NOT NULL").
		Order("pub.published_at DESC", "pub.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return pubs, nil
}
